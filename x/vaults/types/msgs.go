package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// MsgVaultKeyRef is the wire representation of a VaultKey used by messages
// to reference caller-supplied list positions (prev_key / new_prev_key /
// vault_key in spec.md §4.1 and §6.1). A nil *MsgVaultKeyRef means "None".
type MsgVaultKeyRef struct {
	Index        math.Int
	Account      string
	Denomination string
}

func validateVaultKeyRef(ref *MsgVaultKeyRef) error {
	if ref == nil {
		return nil
	}
	if ref.Index.IsNil() || ref.Index.IsNegative() {
		return ErrInvalidPrevVaultIndex.Wrap("index must be a non-negative integer")
	}
	if _, err := sdk.AccAddressFromBech32(ref.Account); err != nil {
		return ErrInvalidAddress.Wrapf("invalid account in vault key reference: %v", err)
	}
	return ValidateDenomination(ref.Denomination)
}

// MsgNewVault opens a new vault. See spec.md §4.3 new_vault.
type MsgNewVault struct {
	Caller            string
	PrevKey           *MsgVaultKeyRef
	InitialDebt       math.Int
	CollateralAmount  math.Int
	Denomination      string
}

func (msg MsgNewVault) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Caller); err != nil {
		return ErrInvalidAddress.Wrapf("invalid caller: %v", err)
	}
	if msg.InitialDebt.IsNil() || !msg.InitialDebt.IsPositive() {
		return ErrInvalidMinDebtAmount.Wrap("initial debt must be positive")
	}
	if msg.CollateralAmount.IsNil() || !msg.CollateralAmount.IsPositive() {
		return ErrInvalidMinCollateralAmount.Wrap("collateral amount must be positive")
	}
	if err := ValidateDenomination(msg.Denomination); err != nil {
		return err
	}
	return validateVaultKeyRef(msg.PrevKey)
}

func (msg MsgNewVault) GetSigners() []sdk.AccAddress {
	caller, err := sdk.AccAddressFromBech32(msg.Caller)
	if err != nil {
		panic(err)
	}
	return []sdk.AccAddress{caller}
}

// MsgIncreaseCollateral deposits additional collateral into an existing vault.
type MsgIncreaseCollateral struct {
	PrevKey    *MsgVaultKeyRef
	VaultKey   MsgVaultKeyRef
	NewPrevKey *MsgVaultKeyRef
	Amount     math.Int
}

func (msg MsgIncreaseCollateral) ValidateBasic() error {
	if msg.Amount.IsNil() || !msg.Amount.IsPositive() {
		return ErrInvalidMinCollateralAmount.Wrap("amount must be positive")
	}
	if err := validateVaultKeyRef(&msg.VaultKey); err != nil {
		return err
	}
	if err := validateVaultKeyRef(msg.PrevKey); err != nil {
		return err
	}
	return validateVaultKeyRef(msg.NewPrevKey)
}

func (msg MsgIncreaseCollateral) GetSigners() []sdk.AccAddress {
	addr, err := sdk.AccAddressFromBech32(msg.VaultKey.Account)
	if err != nil {
		panic(err)
	}
	return []sdk.AccAddress{addr}
}

// MsgWithdrawCollateral withdraws collateral from an existing vault.
type MsgWithdrawCollateral struct {
	PrevKey    *MsgVaultKeyRef
	VaultKey   MsgVaultKeyRef
	NewPrevKey *MsgVaultKeyRef
	Amount     math.Int
}

func (msg MsgWithdrawCollateral) ValidateBasic() error {
	if msg.Amount.IsNil() || !msg.Amount.IsPositive() {
		return ErrInvalidMinCollateralAmount.Wrap("amount must be positive")
	}
	if err := validateVaultKeyRef(&msg.VaultKey); err != nil {
		return err
	}
	if err := validateVaultKeyRef(msg.PrevKey); err != nil {
		return err
	}
	return validateVaultKeyRef(msg.NewPrevKey)
}

func (msg MsgWithdrawCollateral) GetSigners() []sdk.AccAddress {
	addr, err := sdk.AccAddressFromBech32(msg.VaultKey.Account)
	if err != nil {
		panic(err)
	}
	return []sdk.AccAddress{addr}
}

// MsgIncreaseDebt mints additional stable tokens against an existing vault.
type MsgIncreaseDebt struct {
	PrevKey    *MsgVaultKeyRef
	VaultKey   MsgVaultKeyRef
	NewPrevKey *MsgVaultKeyRef
	Amount     math.Int
}

func (msg MsgIncreaseDebt) ValidateBasic() error {
	if msg.Amount.IsNil() || !msg.Amount.IsPositive() {
		return ErrInvalidMinDebtAmount.Wrap("amount must be positive")
	}
	if err := validateVaultKeyRef(&msg.VaultKey); err != nil {
		return err
	}
	if err := validateVaultKeyRef(msg.PrevKey); err != nil {
		return err
	}
	return validateVaultKeyRef(msg.NewPrevKey)
}

func (msg MsgIncreaseDebt) GetSigners() []sdk.AccAddress {
	addr, err := sdk.AccAddressFromBech32(msg.VaultKey.Account)
	if err != nil {
		panic(err)
	}
	return []sdk.AccAddress{addr}
}

// MsgPayDebt burns stable tokens to repay (fully or partially) a vault's debt.
type MsgPayDebt struct {
	PrevKey    *MsgVaultKeyRef
	VaultKey   MsgVaultKeyRef
	NewPrevKey *MsgVaultKeyRef
	Amount     math.Int
}

func (msg MsgPayDebt) ValidateBasic() error {
	if msg.Amount.IsNil() || !msg.Amount.IsPositive() {
		return ErrDepositAmountIsMoreThanTotalDebt.Wrap("amount must be positive")
	}
	if err := validateVaultKeyRef(&msg.VaultKey); err != nil {
		return err
	}
	if err := validateVaultKeyRef(msg.PrevKey); err != nil {
		return err
	}
	return validateVaultKeyRef(msg.NewPrevKey)
}

func (msg MsgPayDebt) GetSigners() []sdk.AccAddress {
	addr, err := sdk.AccAddressFromBech32(msg.VaultKey.Account)
	if err != nil {
		panic(err)
	}
	return []sdk.AccAddress{addr}
}

// MsgTransferDebt re-accounts a vault to a new owner account.
type MsgTransferDebt struct {
	PrevKey     *MsgVaultKeyRef
	VaultKey    MsgVaultKeyRef
	Destination string
}

func (msg MsgTransferDebt) ValidateBasic() error {
	if err := validateVaultKeyRef(&msg.VaultKey); err != nil {
		return err
	}
	if err := validateVaultKeyRef(msg.PrevKey); err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(msg.Destination); err != nil {
		return ErrInvalidAddress.Wrapf("invalid destination: %v", err)
	}
	return nil
}

func (msg MsgTransferDebt) GetSigners() []sdk.AccAddress {
	addr, err := sdk.AccAddressFromBech32(msg.VaultKey.Account)
	if err != nil {
		panic(err)
	}
	return []sdk.AccAddress{addr}
}

// MsgLiquidate liquidates the lowest eligible consecutive vaults.
type MsgLiquidate struct {
	Liquidator          string
	Denomination        string
	TotalVaultsToLiquidate uint32
}

func (msg MsgLiquidate) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Liquidator); err != nil {
		return ErrInvalidAddress.Wrapf("invalid liquidator: %v", err)
	}
	if err := ValidateDenomination(msg.Denomination); err != nil {
		return err
	}
	if msg.TotalVaultsToLiquidate == 0 {
		return ErrNotEnoughVaultsToLiquidate.Wrap("must request at least one vault")
	}
	return nil
}

func (msg MsgLiquidate) GetSigners() []sdk.AccAddress {
	addr, err := sdk.AccAddressFromBech32(msg.Liquidator)
	if err != nil {
		panic(err)
	}
	return []sdk.AccAddress{addr}
}

// --- Admin / protocol-manager operations (spec.md §6.1) ---

type MsgCreateCurrency struct {
	ProtocolManager string
	Denomination    string
	Contract        string
}

func (msg MsgCreateCurrency) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.ProtocolManager); err != nil {
		return ErrInvalidAddress.Wrapf("invalid protocol manager: %v", err)
	}
	return ValidateDenomination(msg.Denomination)
}

func (msg MsgCreateCurrency) GetSigners() []sdk.AccAddress {
	addr, err := sdk.AccAddressFromBech32(msg.ProtocolManager)
	if err != nil {
		panic(err)
	}
	return []sdk.AccAddress{addr}
}

type MsgToggleCurrency struct {
	Admin        string
	Denomination string
	Active       bool
}

func (msg MsgToggleCurrency) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Admin); err != nil {
		return ErrInvalidAddress.Wrapf("invalid admin: %v", err)
	}
	return ValidateDenomination(msg.Denomination)
}

func (msg MsgToggleCurrency) GetSigners() []sdk.AccAddress {
	addr, err := sdk.AccAddressFromBech32(msg.Admin)
	if err != nil {
		panic(err)
	}
	return []sdk.AccAddress{addr}
}

type MsgSetVaultConditions struct {
	Admin           string
	Denomination    string
	MinColRate      math.Int
	MinDebtCreation math.Int
	OpeningColRate  math.Int
}

func (msg MsgSetVaultConditions) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Admin); err != nil {
		return ErrInvalidAddress.Wrapf("invalid admin: %v", err)
	}
	if err := ValidateDenomination(msg.Denomination); err != nil {
		return err
	}
	if msg.MinDebtCreation.IsNil() || !msg.MinDebtCreation.IsPositive() {
		return ErrInvalidMinDebtAmount.Wrap("min_debt_creation must be positive")
	}
	vi := VaultsInfo{MinColRate: msg.MinColRate, OpeningColRate: msg.OpeningColRate}
	return vi.ValidateConditions()
}

func (msg MsgSetVaultConditions) GetSigners() []sdk.AccAddress {
	addr, err := sdk.AccAddressFromBech32(msg.Admin)
	if err != nil {
		panic(err)
	}
	return []sdk.AccAddress{addr}
}

type MsgSetPanic struct {
	ProtocolManager string
	Status          bool
}

func (msg MsgSetPanic) ValidateBasic() error {
	_, err := sdk.AccAddressFromBech32(msg.ProtocolManager)
	if err != nil {
		return ErrInvalidAddress.Wrapf("invalid protocol manager: %v", err)
	}
	return nil
}

func (msg MsgSetPanic) GetSigners() []sdk.AccAddress {
	addr, err := sdk.AccAddressFromBech32(msg.ProtocolManager)
	if err != nil {
		panic(err)
	}
	return []sdk.AccAddress{addr}
}

// AddressType selects which CoreState address set_address rotates, per
// spec.md §6.1 ("typ ∈ {0,1,2}": 0=admin, 1=protocol_manager, 2=treasury).
type AddressType uint8

const (
	AddressTypeAdmin           AddressType = 0
	AddressTypeProtocolManager AddressType = 1
	AddressTypeTreasury        AddressType = 2
)

type MsgSetAddress struct {
	Signer  string
	Typ     AddressType
	Address string
}

func (msg MsgSetAddress) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Signer); err != nil {
		return ErrInvalidAddress.Wrapf("invalid signer: %v", err)
	}
	if msg.Typ > AddressTypeTreasury {
		return ErrInvalidParams.Wrapf("invalid address type %d", msg.Typ)
	}
	if _, err := sdk.AccAddressFromBech32(msg.Address); err != nil {
		return ErrInvalidAddress.Wrapf("invalid target address: %v", err)
	}
	return nil
}

func (msg MsgSetAddress) GetSigners() []sdk.AccAddress {
	addr, err := sdk.AccAddressFromBech32(msg.Signer)
	if err != nil {
		panic(err)
	}
	return []sdk.AccAddress{addr}
}

type MsgSetFee struct {
	Admin  string
	NewFee math.Int
}

func (msg MsgSetFee) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Admin); err != nil {
		return ErrInvalidAddress.Wrapf("invalid admin: %v", err)
	}
	return ValidateFee(msg.NewFee)
}

func (msg MsgSetFee) GetSigners() []sdk.AccAddress {
	addr, err := sdk.AccAddressFromBech32(msg.Admin)
	if err != nil {
		panic(err)
	}
	return []sdk.AccAddress{addr}
}

// MsgSetNextKey is the protocol-manager escape hatch from spec.md §4.1 used
// to repair topology after a bug. It writes next_key directly after light
// validation that the target vault exists.
type MsgSetNextKey struct {
	ProtocolManager string
	Target          MsgVaultKeyRef
	Next            *MsgVaultKeyRef
}

func (msg MsgSetNextKey) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.ProtocolManager); err != nil {
		return ErrInvalidAddress.Wrapf("invalid protocol manager: %v", err)
	}
	if err := validateVaultKeyRef(&msg.Target); err != nil {
		return err
	}
	return validateVaultKeyRef(msg.Next)
}

func (msg MsgSetNextKey) GetSigners() []sdk.AccAddress {
	addr, err := sdk.AccAddressFromBech32(msg.ProtocolManager)
	if err != nil {
		panic(err)
	}
	return []sdk.AccAddress{addr}
}

// MsgUpgrade is a stub: code upgrade is a host-ledger concept (the CLI/node
// binary swap), not something with state-machine semantics at the Go level.
// Kept only as an authority-gated marker event, mirroring how this repo's
// x/upgrade plans are scheduled rather than executed in-process.
type MsgUpgrade struct {
	Admin string
	Hash  string
}

func (msg MsgUpgrade) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Admin); err != nil {
		return ErrInvalidAddress.Wrapf("invalid admin: %v", err)
	}
	if msg.Hash == "" {
		return ErrInvalidParams.Wrap("hash cannot be empty")
	}
	return nil
}

func (msg MsgUpgrade) GetSigners() []sdk.AccAddress {
	addr, err := sdk.AccAddressFromBech32(msg.Admin)
	if err != nil {
		panic(err)
	}
	return []sdk.AccAddress{addr}
}
