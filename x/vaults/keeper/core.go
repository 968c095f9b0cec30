package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/paw/x/vaults/types"
)

// GetCoreState returns the singleton CoreState record.
func (k Keeper) GetCoreState(ctx context.Context) (types.CoreState, error) {
	store := k.getStore(ctx)
	bz := store.Get(types.CoreStateKey)
	if bz == nil {
		return types.CoreState{}, types.ErrVaultsInfoHasNotStarted.Wrap("core state not initialized")
	}
	return decodeCoreState(bz)
}

// SetCoreState persists the singleton CoreState record.
func (k Keeper) SetCoreState(ctx context.Context, cs types.CoreState) {
	store := k.getStore(ctx)
	store.Set(types.CoreStateKey, encodeCoreState(cs))
}

func (k Keeper) hasCoreState(ctx context.Context) bool {
	return k.getStore(ctx).Has(types.CoreStateKey)
}

// Init performs spec.md §6.1's `init` entry point: sets CoreState exactly
// once. Open to any caller the first time only.
func (k Keeper) Init(ctx context.Context, cs types.CoreState) error {
	if k.hasCoreState(ctx) {
		return types.ErrCoreAlreadySet
	}
	if err := types.ValidateFee(cs.Fee); err != nil {
		return err
	}
	k.SetCoreState(ctx, cs)
	return nil
}

// SetAddress rotates one of the three CoreState principal addresses,
// spec.md §6.1's set_address(typ, addr). typ=0 requires admin auth;
// typ∈{1,2} require protocol_manager auth.
func (k Keeper) SetAddress(ctx context.Context, signer string, typ types.AddressType, address string) error {
	cs, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}

	switch typ {
	case types.AddressTypeAdmin:
		if signer != cs.Admin {
			return types.ErrUnauthorized.Wrap("only admin may rotate the admin address")
		}
		cs.Admin = address
	case types.AddressTypeProtocolManager:
		if signer != cs.ProtocolManager {
			return types.ErrUnauthorized.Wrap("only protocol_manager may rotate the protocol_manager address")
		}
		cs.ProtocolManager = address
	case types.AddressTypeTreasury:
		if signer != cs.ProtocolManager {
			return types.ErrUnauthorized.Wrap("only protocol_manager may rotate the treasury address")
		}
		cs.Treasury = address
	default:
		return types.ErrInvalidParams.Wrapf("invalid address type %d", typ)
	}

	k.SetCoreState(ctx, cs)
	emitEvent(ctx, types.EventTypeVaultsAddressSet,
		sdk.NewAttribute(types.AttributeKeyTarget, address),
	)
	return nil
}

// SetFee updates CoreState.Fee, spec.md §6.1's set_fee(new_fee). Admin-only.
func (k Keeper) SetFee(ctx context.Context, admin string, newFee math.Int) error {
	cs, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}
	if admin != cs.Admin {
		return types.ErrUnauthorized.Wrap("only admin may set the fee")
	}
	if err := types.ValidateFee(newFee); err != nil {
		return err
	}
	cs.Fee = newFee
	k.SetCoreState(ctx, cs)
	emitEvent(ctx, types.EventTypeVaultsFeeSet,
		sdk.NewAttribute(types.AttributeKeyNewFee, newFee.String()),
	)
	return nil
}

// SetPanic flips CoreState.PanicMode, spec.md §6.1's set_panic(status).
// protocol_manager-only.
func (k Keeper) SetPanic(ctx context.Context, protocolManager string, status bool) error {
	cs, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}
	if protocolManager != cs.ProtocolManager {
		return types.ErrUnauthorized.Wrap("only protocol_manager may set panic mode")
	}
	cs.PanicMode = status
	k.SetCoreState(ctx, cs)
	emitEvent(ctx, types.EventTypeVaultsPanicSet,
		sdk.NewAttribute(types.AttributeKeyPanicMode, boolStr(status)),
	)
	return nil
}

// Upgrade is an authority-gated marker event; code upgrade has no Go-level
// state machine body (see types.MsgUpgrade doc comment).
func (k Keeper) Upgrade(ctx context.Context, admin string, hash string) error {
	cs, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}
	if admin != cs.Admin {
		return types.ErrUnauthorized.Wrap("only admin may upgrade")
	}
	k.Logger(ctx).Info("upgrade requested", "hash", hash)
	return nil
}

// riskDisabled implements spec.md §4.4/§9's combined predicate:
// core.panic_mode OR rate.timestamp < now - staleness_window.
func riskDisabled(panicMode bool, rateTimestamp, now, stalenessWindowSeconds int64) bool {
	return panicMode || rateTimestamp < now-stalenessWindowSeconds
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
