package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/paw/x/vaults/types"
)

// GetCurrency returns the Currency record for a denomination.
func (k Keeper) GetCurrency(ctx context.Context, denomination string) (types.Currency, error) {
	store := k.getStore(ctx)
	bz := store.Get(types.GetCurrencyKey(denomination))
	if bz == nil {
		return types.Currency{}, types.ErrCurrencyDoesntExist.Wrapf("denomination %q", denomination)
	}
	return decodeCurrency(bz)
}

func (k Keeper) hasCurrency(ctx context.Context, denomination string) bool {
	return k.getStore(ctx).Has(types.GetCurrencyKey(denomination))
}

func (k Keeper) setCurrency(ctx context.Context, c types.Currency) {
	k.getStore(ctx).Set(types.GetCurrencyKey(c.Denomination), encodeCurrency(c))
}

// CreateCurrency registers a new denomination, inactive by default.
// protocol_manager-only (spec.md §6.1).
func (k Keeper) CreateCurrency(ctx context.Context, protocolManager, denomination, contract string) error {
	cs, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}
	if protocolManager != cs.ProtocolManager {
		return types.ErrUnauthorized.Wrap("only protocol_manager may create a currency")
	}
	if err := types.ValidateDenomination(denomination); err != nil {
		return err
	}
	if k.hasCurrency(ctx, denomination) {
		return types.ErrCurrencyAlreadyAdded.Wrapf("denomination %q", denomination)
	}

	k.setCurrency(ctx, types.Currency{Denomination: denomination, Active: false, Contract: contract})
	emitEvent(ctx, types.EventTypeVaultsCurrencyCreated,
		sdk.NewAttribute(types.AttributeKeyDenomination, denomination),
	)
	return nil
}

// ToggleCurrency flips Currency.Active. Admin-only (spec.md §6.1).
func (k Keeper) ToggleCurrency(ctx context.Context, admin, denomination string, active bool) error {
	cs, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}
	if admin != cs.Admin {
		return types.ErrUnauthorized.Wrap("only admin may toggle a currency")
	}

	c, err := k.GetCurrency(ctx, denomination)
	if err != nil {
		return err
	}
	c.Active = active
	k.setCurrency(ctx, c)
	emitEvent(ctx, types.EventTypeVaultsCurrencyToggled,
		sdk.NewAttribute(types.AttributeKeyDenomination, denomination),
		sdk.NewAttribute("active", boolStr(active)),
	)
	return nil
}

// requireActiveCurrency loads the Currency and fails unless it is active,
// the precondition every mutating vault operation in spec.md §4.3 shares.
func (k Keeper) requireActiveCurrency(ctx context.Context, denomination string) error {
	c, err := k.GetCurrency(ctx, denomination)
	if err != nil {
		return err
	}
	if !c.Active {
		return types.ErrCurrencyIsInactive.Wrapf("denomination %q", denomination)
	}
	return nil
}
