package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/paw/x/vaults/types"
)

// msgServer wraps Keeper with the vaults module's message handlers. There is
// no generated gRPC MsgServer interface to implement here (no .proto/.pb.go
// in this tree, see keeper/codec.go); handlers are plain methods dispatched
// from the module's message router, mirroring x/dex/keeper/msg_server.go's
// validate-parse-delegate shape without the generated interface.
type msgServer struct {
	Keeper
}

// NewMsgServerImpl returns the vaults message-handler set.
func NewMsgServerImpl(keeper Keeper) *msgServer {
	return &msgServer{Keeper: keeper}
}

func toVaultKey(ref types.MsgVaultKeyRef) (types.VaultKey, error) {
	account, err := sdk.AccAddressFromBech32(ref.Account)
	if err != nil {
		return types.VaultKey{}, err
	}
	return types.VaultKey{Index: ref.Index, Account: account, Denomination: ref.Denomination}, nil
}

func toVaultKeyRefPtr(ref *types.MsgVaultKeyRef) (*types.VaultKey, error) {
	if ref == nil {
		return nil, nil
	}
	key, err := toVaultKey(*ref)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// NewVault handles MsgNewVault.
func (ms msgServer) NewVault(goCtx context.Context, msg *types.MsgNewVault) error {
	if err := msg.ValidateBasic(); err != nil {
		return fmt.Errorf("NewVault: validate: %w", err)
	}
	caller, err := sdk.AccAddressFromBech32(msg.Caller)
	if err != nil {
		return fmt.Errorf("NewVault: invalid caller: %w", err)
	}
	prevKey, err := toVaultKeyRefPtr(msg.PrevKey)
	if err != nil {
		return fmt.Errorf("NewVault: invalid prev_key: %w", err)
	}
	if err := ms.Keeper.NewVault(goCtx, caller, msg.Denomination, prevKey, msg.InitialDebt, msg.CollateralAmount); err != nil {
		return fmt.Errorf("NewVault: %w", err)
	}
	return nil
}

// IncreaseCollateral handles MsgIncreaseCollateral.
func (ms msgServer) IncreaseCollateral(goCtx context.Context, msg *types.MsgIncreaseCollateral) error {
	if err := msg.ValidateBasic(); err != nil {
		return fmt.Errorf("IncreaseCollateral: validate: %w", err)
	}
	vaultKey, err := toVaultKey(msg.VaultKey)
	if err != nil {
		return fmt.Errorf("IncreaseCollateral: invalid vault_key: %w", err)
	}
	prevKey, err := toVaultKeyRefPtr(msg.PrevKey)
	if err != nil {
		return fmt.Errorf("IncreaseCollateral: invalid prev_key: %w", err)
	}
	newPrevKey, err := toVaultKeyRefPtr(msg.NewPrevKey)
	if err != nil {
		return fmt.Errorf("IncreaseCollateral: invalid new_prev_key: %w", err)
	}
	if err := ms.Keeper.IncreaseCollateral(goCtx, vaultKey, prevKey, newPrevKey, msg.Amount); err != nil {
		return fmt.Errorf("IncreaseCollateral: %w", err)
	}
	return nil
}

// WithdrawCollateral handles MsgWithdrawCollateral.
func (ms msgServer) WithdrawCollateral(goCtx context.Context, msg *types.MsgWithdrawCollateral) error {
	if err := msg.ValidateBasic(); err != nil {
		return fmt.Errorf("WithdrawCollateral: validate: %w", err)
	}
	vaultKey, err := toVaultKey(msg.VaultKey)
	if err != nil {
		return fmt.Errorf("WithdrawCollateral: invalid vault_key: %w", err)
	}
	prevKey, err := toVaultKeyRefPtr(msg.PrevKey)
	if err != nil {
		return fmt.Errorf("WithdrawCollateral: invalid prev_key: %w", err)
	}
	newPrevKey, err := toVaultKeyRefPtr(msg.NewPrevKey)
	if err != nil {
		return fmt.Errorf("WithdrawCollateral: invalid new_prev_key: %w", err)
	}
	if err := ms.Keeper.WithdrawCollateral(goCtx, vaultKey, prevKey, newPrevKey, msg.Amount); err != nil {
		return fmt.Errorf("WithdrawCollateral: %w", err)
	}
	return nil
}

// IncreaseDebt handles MsgIncreaseDebt.
func (ms msgServer) IncreaseDebt(goCtx context.Context, msg *types.MsgIncreaseDebt) error {
	if err := msg.ValidateBasic(); err != nil {
		return fmt.Errorf("IncreaseDebt: validate: %w", err)
	}
	vaultKey, err := toVaultKey(msg.VaultKey)
	if err != nil {
		return fmt.Errorf("IncreaseDebt: invalid vault_key: %w", err)
	}
	prevKey, err := toVaultKeyRefPtr(msg.PrevKey)
	if err != nil {
		return fmt.Errorf("IncreaseDebt: invalid prev_key: %w", err)
	}
	newPrevKey, err := toVaultKeyRefPtr(msg.NewPrevKey)
	if err != nil {
		return fmt.Errorf("IncreaseDebt: invalid new_prev_key: %w", err)
	}
	if err := ms.Keeper.IncreaseDebt(goCtx, vaultKey, prevKey, newPrevKey, msg.Amount); err != nil {
		return fmt.Errorf("IncreaseDebt: %w", err)
	}
	return nil
}

// PayDebt handles MsgPayDebt.
func (ms msgServer) PayDebt(goCtx context.Context, msg *types.MsgPayDebt) error {
	if err := msg.ValidateBasic(); err != nil {
		return fmt.Errorf("PayDebt: validate: %w", err)
	}
	vaultKey, err := toVaultKey(msg.VaultKey)
	if err != nil {
		return fmt.Errorf("PayDebt: invalid vault_key: %w", err)
	}
	prevKey, err := toVaultKeyRefPtr(msg.PrevKey)
	if err != nil {
		return fmt.Errorf("PayDebt: invalid prev_key: %w", err)
	}
	newPrevKey, err := toVaultKeyRefPtr(msg.NewPrevKey)
	if err != nil {
		return fmt.Errorf("PayDebt: invalid new_prev_key: %w", err)
	}
	if err := ms.Keeper.PayDebt(goCtx, vaultKey, prevKey, newPrevKey, msg.Amount); err != nil {
		return fmt.Errorf("PayDebt: %w", err)
	}
	return nil
}

// TransferDebt handles MsgTransferDebt.
func (ms msgServer) TransferDebt(goCtx context.Context, msg *types.MsgTransferDebt) error {
	if err := msg.ValidateBasic(); err != nil {
		return fmt.Errorf("TransferDebt: validate: %w", err)
	}
	vaultKey, err := toVaultKey(msg.VaultKey)
	if err != nil {
		return fmt.Errorf("TransferDebt: invalid vault_key: %w", err)
	}
	prevKey, err := toVaultKeyRefPtr(msg.PrevKey)
	if err != nil {
		return fmt.Errorf("TransferDebt: invalid prev_key: %w", err)
	}
	destination, err := sdk.AccAddressFromBech32(msg.Destination)
	if err != nil {
		return fmt.Errorf("TransferDebt: invalid destination: %w", err)
	}
	if err := ms.Keeper.TransferDebt(goCtx, vaultKey, prevKey, destination); err != nil {
		return fmt.Errorf("TransferDebt: %w", err)
	}
	return nil
}

// Liquidate handles MsgLiquidate.
func (ms msgServer) Liquidate(goCtx context.Context, msg *types.MsgLiquidate) error {
	if err := msg.ValidateBasic(); err != nil {
		return fmt.Errorf("Liquidate: validate: %w", err)
	}
	liquidator, err := sdk.AccAddressFromBech32(msg.Liquidator)
	if err != nil {
		return fmt.Errorf("Liquidate: invalid liquidator: %w", err)
	}
	if err := ms.Keeper.Liquidate(goCtx, liquidator, msg.Denomination, msg.TotalVaultsToLiquidate); err != nil {
		return fmt.Errorf("Liquidate: %w", err)
	}
	return nil
}

// CreateCurrency handles MsgCreateCurrency.
func (ms msgServer) CreateCurrency(goCtx context.Context, msg *types.MsgCreateCurrency) error {
	if err := msg.ValidateBasic(); err != nil {
		return fmt.Errorf("CreateCurrency: validate: %w", err)
	}
	if err := ms.Keeper.CreateCurrency(goCtx, msg.ProtocolManager, msg.Denomination, msg.Contract); err != nil {
		return fmt.Errorf("CreateCurrency: %w", err)
	}
	return nil
}

// ToggleCurrency handles MsgToggleCurrency.
func (ms msgServer) ToggleCurrency(goCtx context.Context, msg *types.MsgToggleCurrency) error {
	if err := msg.ValidateBasic(); err != nil {
		return fmt.Errorf("ToggleCurrency: validate: %w", err)
	}
	if err := ms.Keeper.ToggleCurrency(goCtx, msg.Admin, msg.Denomination, msg.Active); err != nil {
		return fmt.Errorf("ToggleCurrency: %w", err)
	}
	return nil
}

// SetVaultConditions handles MsgSetVaultConditions.
func (ms msgServer) SetVaultConditions(goCtx context.Context, msg *types.MsgSetVaultConditions) error {
	if err := msg.ValidateBasic(); err != nil {
		return fmt.Errorf("SetVaultConditions: validate: %w", err)
	}
	if err := ms.Keeper.SetVaultConditions(goCtx, msg.Admin, msg.Denomination, msg.MinColRate, msg.MinDebtCreation, msg.OpeningColRate); err != nil {
		return fmt.Errorf("SetVaultConditions: %w", err)
	}
	return nil
}

// SetPanic handles MsgSetPanic.
func (ms msgServer) SetPanic(goCtx context.Context, msg *types.MsgSetPanic) error {
	if err := msg.ValidateBasic(); err != nil {
		return fmt.Errorf("SetPanic: validate: %w", err)
	}
	if err := ms.Keeper.SetPanic(goCtx, msg.ProtocolManager, msg.Status); err != nil {
		return fmt.Errorf("SetPanic: %w", err)
	}
	return nil
}

// SetAddress handles MsgSetAddress.
func (ms msgServer) SetAddress(goCtx context.Context, msg *types.MsgSetAddress) error {
	if err := msg.ValidateBasic(); err != nil {
		return fmt.Errorf("SetAddress: validate: %w", err)
	}
	if err := ms.Keeper.SetAddress(goCtx, msg.Signer, msg.Typ, msg.Address); err != nil {
		return fmt.Errorf("SetAddress: %w", err)
	}
	return nil
}

// SetFee handles MsgSetFee.
func (ms msgServer) SetFee(goCtx context.Context, msg *types.MsgSetFee) error {
	if err := msg.ValidateBasic(); err != nil {
		return fmt.Errorf("SetFee: validate: %w", err)
	}
	if err := ms.Keeper.SetFee(goCtx, msg.Admin, msg.NewFee); err != nil {
		return fmt.Errorf("SetFee: %w", err)
	}
	return nil
}

// SetNextKey handles MsgSetNextKey.
func (ms msgServer) SetNextKey(goCtx context.Context, msg *types.MsgSetNextKey) error {
	if err := msg.ValidateBasic(); err != nil {
		return fmt.Errorf("SetNextKey: validate: %w", err)
	}
	target, err := toVaultKey(msg.Target)
	if err != nil {
		return fmt.Errorf("SetNextKey: invalid target: %w", err)
	}
	next, err := toVaultKeyRefPtr(msg.Next)
	if err != nil {
		return fmt.Errorf("SetNextKey: invalid next: %w", err)
	}
	if err := ms.Keeper.SetNextKey(goCtx, msg.ProtocolManager, target, next); err != nil {
		return fmt.Errorf("SetNextKey: %w", err)
	}
	return nil
}

// Upgrade handles MsgUpgrade.
func (ms msgServer) Upgrade(goCtx context.Context, msg *types.MsgUpgrade) error {
	if err := msg.ValidateBasic(); err != nil {
		return fmt.Errorf("Upgrade: validate: %w", err)
	}
	if err := ms.Keeper.Upgrade(goCtx, msg.Admin, msg.Hash); err != nil {
		return fmt.Errorf("Upgrade: %w", err)
	}
	return nil
}
