package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/paw/x/vaults/types"
)

// Liquidate implements spec.md §4.3/§6.1 liquidate: walks the sorted list
// from lowest_key, collecting up to total_vaults_to_liquidate consecutive
// vaults that are below min_col_rate, and liquidates them atomically in one
// call. The list is sorted ascending by collateral/debt, so the first
// ineligible vault encountered ends the walk — everything past it carries
// an equal or higher ratio. Unlike the risk-increasing operations,
// liquidation reads the oracle rate without the panic-mode/staleness gate:
// it only ever reduces risk, and gating it would leave undercollateralized
// vaults unliquidatable exactly when the protocol needs liquidation most.
func (k Keeper) Liquidate(ctx context.Context, liquidator sdk.AccAddress, denomination string, totalVaultsToLiquidate uint32) error {
	cs, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}
	vi, err := k.GetVaultsInfo(ctx, denomination)
	if err != nil {
		return err
	}
	if !vi.HasVaults() {
		return types.ErrThereAreNoVaults
	}

	rate, err := k.oracleRate(ctx, denomination)
	if err != nil {
		return err
	}

	var collected []types.Vault
	key := vi.LowestKey
	for uint32(len(collected)) < totalVaultsToLiquidate && key != nil {
		v, err := k.GetVault(ctx, *key)
		if err != nil {
			return err
		}
		if !types.CanBeLiquidated(rate, v, vi.MinColRate) {
			break
		}
		collected = append(collected, v)
		key = v.NextKey
	}
	if uint32(len(collected)) < totalVaultsToLiquidate {
		return types.ErrNotEnoughVaultsToLiquidate
	}

	totalDebt := math.ZeroInt()
	totalCollateral := math.ZeroInt()
	for _, v := range collected {
		totalDebt = totalDebt.Add(v.TotalDebt)
		totalCollateral = totalCollateral.Add(v.TotalCollateral)
		k.deleteVault(ctx, v.Key())
		k.deleteVaultIndexKey(ctx, v.Account, v.Denomination)
	}
	vi.LowestKey = key
	vi.TotalVaults -= uint32(len(collected))
	vi.TotalDebt = vi.TotalDebt.Sub(totalDebt)
	vi.TotalCollateral = vi.TotalCollateral.Sub(totalCollateral)
	k.SetVaultsInfo(ctx, vi)

	if err := k.burnStableFrom(ctx, liquidator, denomination, totalDebt); err != nil {
		return err
	}

	fee := types.CeilFee(totalCollateral, cs.Fee)
	payout := totalCollateral.Sub(fee)
	if payout.IsPositive() {
		if err := k.collateral.SendCoinsFromModuleToAccount(ctx, types.ModuleName, liquidator, sdk.NewCoins(sdk.NewCoin(cs.ColTokenDenom, payout))); err != nil {
			return types.ErrFundsWithdrawFailed.Wrap(err.Error())
		}
	}
	if fee.IsPositive() {
		treasury, err := sdk.AccAddressFromBech32(cs.Treasury)
		if err != nil {
			return types.ErrInvalidAddress.Wrap(err.Error())
		}
		if err := k.collateral.SendCoinsFromModuleToAccount(ctx, types.ModuleName, treasury, sdk.NewCoins(sdk.NewCoin(cs.ColTokenDenom, fee))); err != nil {
			return types.ErrFundsWithdrawFailed.Wrap(err.Error())
		}
	}

	emitEvent(ctx, types.EventTypeVaultsLiquidation,
		sdk.NewAttribute(types.AttributeKeyLiquidator, liquidator.String()),
		sdk.NewAttribute(types.AttributeKeyDenomination, denomination),
		sdk.NewAttribute(types.AttributeKeyVaultsCount, sdk.NewInt(int64(len(collected))).String()),
		sdk.NewAttribute(types.AttributeKeyTotalDebt, totalDebt.String()),
		sdk.NewAttribute(types.AttributeKeyTotalCollateral, totalCollateral.String()),
		sdk.NewAttribute(types.AttributeKeyFeeAmount, fee.String()),
	)
	return nil
}
