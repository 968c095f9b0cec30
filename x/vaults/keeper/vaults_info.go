package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/paw/x/vaults/types"
)

// GetVaultsInfo returns the per-denomination aggregate.
func (k Keeper) GetVaultsInfo(ctx context.Context, denomination string) (types.VaultsInfo, error) {
	store := k.getStore(ctx)
	bz := store.Get(types.GetVaultsInfoKey(denomination))
	if bz == nil {
		return types.VaultsInfo{}, types.ErrVaultsInfoHasNotStarted.Wrapf("denomination %q", denomination)
	}
	return decodeVaultsInfo(bz)
}

func (k Keeper) hasVaultsInfo(ctx context.Context, denomination string) bool {
	return k.getStore(ctx).Has(types.GetVaultsInfoKey(denomination))
}

// SetVaultsInfo persists the per-denomination aggregate.
func (k Keeper) SetVaultsInfo(ctx context.Context, vi types.VaultsInfo) {
	k.getStore(ctx).Set(types.GetVaultsInfoKey(vi.Denomination), encodeVaultsInfo(vi))
}

// SetVaultConditions creates or updates a denomination's VaultsInfo
// conditions, spec.md §6.1's set_vault_conditions. Admin-only. If the
// VaultsInfo does not exist yet it is created empty (totals zero, no
// lowest_key), otherwise only the condition fields are overwritten.
func (k Keeper) SetVaultConditions(ctx context.Context, admin, denomination string, minColRate, minDebtCreation, openingColRate math.Int) error {
	cs, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}
	if admin != cs.Admin {
		return types.ErrUnauthorized.Wrap("only admin may set vault conditions")
	}

	vi := types.VaultsInfo{
		Denomination:    denomination,
		MinColRate:      minColRate,
		MinDebtCreation: minDebtCreation,
		OpeningColRate:  openingColRate,
		TotalVaults:     0,
		TotalCollateral: math.ZeroInt(),
		TotalDebt:       math.ZeroInt(),
	}
	if k.hasVaultsInfo(ctx, denomination) {
		existing, err := k.GetVaultsInfo(ctx, denomination)
		if err != nil {
			return err
		}
		vi.TotalVaults = existing.TotalVaults
		vi.TotalCollateral = existing.TotalCollateral
		vi.TotalDebt = existing.TotalDebt
		vi.LowestKey = existing.LowestKey
	}
	if err := vi.ValidateConditions(); err != nil {
		return err
	}

	k.SetVaultsInfo(ctx, vi)
	emitEvent(ctx, types.EventTypeVaultsConditionsSet,
		sdk.NewAttribute(types.AttributeKeyDenomination, denomination),
	)
	return nil
}
