package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/paw/x/vaults/types"
)

// checkRiskGate implements spec.md §4.4's guard: every operation that
// increases a vault's risk (withdrawing collateral, minting more debt,
// opening a new position) must be blocked while core.panic_mode is set or
// the oracle's last report is stale. Returns the rate to use for the
// caller's ratio check.
func (k Keeper) checkRiskGate(ctx context.Context, cs types.CoreState, denomination string) (math.Int, error) {
	rate, timestamp, err := k.oracle.LastPrice(ctx, denomination)
	if err != nil {
		return math.Int{}, err
	}
	now := sdk.UnwrapSDKContext(ctx).BlockTime().Unix()
	if riskDisabled(cs.PanicMode, timestamp, now, types.DefaultStalenessWindowSeconds) {
		return math.Int{}, types.ErrPanicModeEnabled
	}
	return rate, nil
}

// oracleRate reads the oracle's rate without the panic/staleness gate, for
// operations that only ever reduce a vault's risk (pay_debt, transfer_debt).
func (k Keeper) oracleRate(ctx context.Context, denomination string) (math.Int, error) {
	rate, _, err := k.oracle.LastPrice(ctx, denomination)
	return rate, err
}

// NewVault implements spec.md §4.3 new_vault: opens a fresh position for
// caller in denomination, inserted at prev_key.
func (k Keeper) NewVault(ctx context.Context, caller sdk.AccAddress, denomination string, prevKey *types.VaultKey, initialDebt, collateralAmount math.Int) error {
	if err := k.requireActiveCurrency(ctx, denomination); err != nil {
		return err
	}
	cs, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}
	vi, err := k.GetVaultsInfo(ctx, denomination)
	if err != nil {
		return err
	}
	if initialDebt.LT(vi.MinDebtCreation) {
		return types.ErrInvalidMinDebtAmount
	}
	if k.hasVaultIndexKey(ctx, caller, denomination) {
		return types.ErrUserAlreadyHasDenominationVault
	}

	rate, err := k.checkRiskGate(ctx, cs, denomination)
	if err != nil {
		return err
	}

	fee := types.CeilFee(collateralAmount, cs.Fee)
	vaultCol := collateralAmount.Sub(fee)

	if types.DepositRatio(rate, vaultCol, initialDebt).LT(vi.OpeningColRate) {
		return types.ErrInvalidOpeningCollateralRatio
	}

	index := types.ComputeIndex(vaultCol, initialDebt)
	if err := k.validateNewPrevKey(ctx, prevKey, index, denomination); err != nil {
		return err
	}

	if err := k.collateral.SendCoinsFromAccountToModule(ctx, caller, types.ModuleName, sdk.NewCoins(sdk.NewCoin(cs.ColTokenDenom, collateralAmount))); err != nil {
		return types.ErrFundsDepositFailed.Wrap(err.Error())
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
	if err := k.mintStableTo(ctx, caller, denomination, initialDebt); err != nil {
		return err
	}

	now := sdk.UnwrapSDKContext(ctx).BlockTime().Unix()
	v := types.Vault{
		Account:         caller,
		Denomination:    denomination,
		TotalDebt:       initialDebt,
		TotalCollateral: vaultCol,
		Index:           index,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	k.insert(ctx, prevKey, v, &vi)
	vi.TotalVaults++
	vi.TotalCollateral = vi.TotalCollateral.Add(vaultCol)
	vi.TotalDebt = vi.TotalDebt.Add(initialDebt)
	k.SetVaultsInfo(ctx, vi)

	emitEvent(ctx, types.EventTypeVaultsNewVault,
		sdk.NewAttribute(types.AttributeKeyAccount, caller.String()),
		sdk.NewAttribute(types.AttributeKeyDenomination, denomination),
		sdk.NewAttribute(types.AttributeKeyTotalDebt, initialDebt.String()),
		sdk.NewAttribute(types.AttributeKeyTotalCollateral, vaultCol.String()),
		sdk.NewAttribute(types.AttributeKeyFeeAmount, fee.String()),
		sdk.NewAttribute(types.AttributeKeyIndex, index.String()),
	)
	return nil
}

// mintStableTo mints amount of denomination's stable asset and sends it to
// recipient. The stable token module account mints to itself first, the
// pattern x/bank's MintCoins/SendCoinsFromModuleToAccount pair requires.
func (k Keeper) mintStableTo(ctx context.Context, recipient sdk.AccAddress, denomination string, amount math.Int) error {
	coins := sdk.NewCoins(sdk.NewCoin(denomination, amount))
	if err := k.stable.MintCoins(ctx, types.ModuleName, coins); err != nil {
		return types.ErrMintFailed.Wrap(err.Error())
	}
	if err := k.stable.SendCoinsFromModuleToAccount(ctx, types.ModuleName, recipient, coins); err != nil {
		return types.ErrMintFailed.Wrap(err.Error())
	}
	return nil
}

// burnStableFrom collects amount of denomination's stable asset from payer
// and burns it.
func (k Keeper) burnStableFrom(ctx context.Context, payer sdk.AccAddress, denomination string, amount math.Int) error {
	coins := sdk.NewCoins(sdk.NewCoin(denomination, amount))
	if err := k.stable.SendCoinsFromAccountToModule(ctx, payer, types.ModuleName, coins); err != nil {
		return types.ErrBurnFailed.Wrap(err.Error())
	}
	if err := k.stable.BurnCoins(ctx, types.ModuleName, coins); err != nil {
		return types.ErrBurnFailed.Wrap(err.Error())
	}
	return nil
}

// loadOwnedVault resolves vaultKey.Account's current vault and checks the
// caller-supplied index still matches the persisted one (spec.md §4.1's
// identity row), common to every operation keyed off an existing vault.
func (k Keeper) loadOwnedVault(ctx context.Context, vaultKey types.VaultKey) (types.Vault, types.VaultsInfo, error) {
	current, err := k.GetVaultByAccount(ctx, vaultKey.Account, vaultKey.Denomination)
	if err != nil {
		return types.Vault{}, types.VaultsInfo{}, err
	}
	if err := validateVaultKeyIdentity(vaultKey, current); err != nil {
		return types.Vault{}, types.VaultsInfo{}, err
	}
	vi, err := k.GetVaultsInfo(ctx, vaultKey.Denomination)
	if err != nil {
		return types.Vault{}, types.VaultsInfo{}, err
	}
	return current, vi, nil
}

// IncreaseCollateral implements spec.md §4.3 increase_collateral. Permitted
// regardless of panic mode or oracle staleness: it can only improve the
// vault's ratio.
func (k Keeper) IncreaseCollateral(ctx context.Context, vaultKey types.VaultKey, prevKey, newPrevKey *types.VaultKey, amount math.Int) error {
	if err := k.requireActiveCurrency(ctx, vaultKey.Denomination); err != nil {
		return err
	}
	current, vi, err := k.loadOwnedVault(ctx, vaultKey)
	if err != nil {
		return err
	}
	cs, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}

	fee := types.CeilFee(amount, cs.Fee)
	netAmount := amount.Sub(fee)

	newCollateral := current.TotalCollateral.Add(netAmount)
	updated := current
	updated.TotalCollateral = newCollateral
	updated.Index = types.ComputeIndex(newCollateral, current.TotalDebt)
	updated.UpdatedAt = sdk.UnwrapSDKContext(ctx).BlockTime().Unix()

	if err := k.reposition(ctx, prevKey, current, newPrevKey, updated, &vi); err != nil {
		return err
	}
	vi.TotalCollateral = vi.TotalCollateral.Add(netAmount)
	k.SetVaultsInfo(ctx, vi)

	if err := k.collateral.SendCoinsFromAccountToModule(ctx, vaultKey.Account, types.ModuleName, sdk.NewCoins(sdk.NewCoin(cs.ColTokenDenom, amount))); err != nil {
		return types.ErrFundsDepositFailed.Wrap(err.Error())
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

	emitEvent(ctx, types.EventTypeVaultsIncreaseCollateral,
		sdk.NewAttribute(types.AttributeKeyAccount, vaultKey.Account.String()),
		sdk.NewAttribute(types.AttributeKeyAmountDeposited, netAmount.String()),
		sdk.NewAttribute(types.AttributeKeyFeeAmount, fee.String()),
		sdk.NewAttribute(types.AttributeKeyIndex, updated.Index.String()),
	)
	return nil
}

// WithdrawCollateral implements spec.md §4.3 withdraw_collateral. Gated by
// panic mode / oracle staleness and by the opening collateral ratio: a
// withdrawal may never bring the vault below the denomination's
// opening_col_rate.
func (k Keeper) WithdrawCollateral(ctx context.Context, vaultKey types.VaultKey, prevKey, newPrevKey *types.VaultKey, amount math.Int) error {
	if err := k.requireActiveCurrency(ctx, vaultKey.Denomination); err != nil {
		return err
	}
	current, vi, err := k.loadOwnedVault(ctx, vaultKey)
	if err != nil {
		return err
	}
	if amount.GT(current.TotalCollateral) {
		return types.ErrInvalidMinCollateralAmount.Wrap("amount exceeds the vault's collateral")
	}
	cs, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}
	rate, err := k.checkRiskGate(ctx, cs, vaultKey.Denomination)
	if err != nil {
		return err
	}

	newCollateral := current.TotalCollateral.Sub(amount)
	if types.DepositRatio(rate, newCollateral, current.TotalDebt).LT(vi.OpeningColRate) {
		return types.ErrCollateralRateUnderMinimum
	}

	updated := current
	updated.TotalCollateral = newCollateral
	updated.Index = types.ComputeIndex(newCollateral, current.TotalDebt)
	updated.UpdatedAt = sdk.UnwrapSDKContext(ctx).BlockTime().Unix()

	if err := k.reposition(ctx, prevKey, current, newPrevKey, updated, &vi); err != nil {
		return err
	}
	vi.TotalCollateral = vi.TotalCollateral.Sub(amount)
	k.SetVaultsInfo(ctx, vi)

	if err := k.collateral.SendCoinsFromModuleToAccount(ctx, types.ModuleName, vaultKey.Account, sdk.NewCoins(sdk.NewCoin(cs.ColTokenDenom, amount))); err != nil {
		return types.ErrFundsWithdrawFailed.Wrap(err.Error())
	}

	emitEvent(ctx, types.EventTypeVaultsWithdrawCollateral,
		sdk.NewAttribute(types.AttributeKeyAccount, vaultKey.Account.String()),
		sdk.NewAttribute(types.AttributeKeyCollateralWithdrawn, amount.String()),
		sdk.NewAttribute(types.AttributeKeyIndex, updated.Index.String()),
	)
	return nil
}

// IncreaseDebt implements spec.md §4.3 increase_debt. Gated the same way as
// withdraw_collateral: minting more debt only ever raises risk.
func (k Keeper) IncreaseDebt(ctx context.Context, vaultKey types.VaultKey, prevKey, newPrevKey *types.VaultKey, amount math.Int) error {
	if err := k.requireActiveCurrency(ctx, vaultKey.Denomination); err != nil {
		return err
	}
	current, vi, err := k.loadOwnedVault(ctx, vaultKey)
	if err != nil {
		return err
	}
	cs, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}
	rate, err := k.checkRiskGate(ctx, cs, vaultKey.Denomination)
	if err != nil {
		return err
	}

	newDebt := current.TotalDebt.Add(amount)
	if types.DepositRatio(rate, current.TotalCollateral, newDebt).LT(vi.OpeningColRate) {
		return types.ErrInvalidOpeningCollateralRatio
	}

	updated := current
	updated.TotalDebt = newDebt
	updated.Index = types.ComputeIndex(current.TotalCollateral, newDebt)
	updated.UpdatedAt = sdk.UnwrapSDKContext(ctx).BlockTime().Unix()

	if err := k.reposition(ctx, prevKey, current, newPrevKey, updated, &vi); err != nil {
		return err
	}
	vi.TotalDebt = vi.TotalDebt.Add(amount)
	k.SetVaultsInfo(ctx, vi)

	if err := k.mintStableTo(ctx, vaultKey.Account, vaultKey.Denomination, amount); err != nil {
		return err
	}

	emitEvent(ctx, types.EventTypeVaultsIncreaseDebt,
		sdk.NewAttribute(types.AttributeKeyAccount, vaultKey.Account.String()),
		sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
		sdk.NewAttribute(types.AttributeKeyIndex, updated.Index.String()),
	)
	return nil
}

// PayDebt implements spec.md §4.3 pay_debt, both the partial-repayment path
// (reposition in place at the lower index) and the full-payoff path (the
// vault is removed from the list and a closure fee is retained to
// treasury).
func (k Keeper) PayDebt(ctx context.Context, vaultKey types.VaultKey, prevKey, newPrevKey *types.VaultKey, amount math.Int) error {
	if err := k.requireActiveCurrency(ctx, vaultKey.Denomination); err != nil {
		return err
	}
	current, vi, err := k.loadOwnedVault(ctx, vaultKey)
	if err != nil {
		return err
	}
	if amount.GT(current.TotalDebt) {
		return types.ErrDepositAmountIsMoreThanTotalDebt
	}
	cs, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}

	if amount.Equal(current.TotalDebt) {
		return k.payOffAndClose(ctx, cs, vaultKey, prevKey, newPrevKey, current, vi)
	}

	newDebt := current.TotalDebt.Sub(amount)
	if newDebt.LT(vi.MinDebtCreation) {
		return types.ErrInvalidMinDebtAmount.Wrap("remaining debt would fall below the minimum debt creation amount")
	}

	updated := current
	updated.TotalDebt = newDebt
	updated.Index = types.ComputeIndex(current.TotalCollateral, newDebt)
	updated.UpdatedAt = sdk.UnwrapSDKContext(ctx).BlockTime().Unix()

	if err := k.reposition(ctx, prevKey, current, newPrevKey, updated, &vi); err != nil {
		return err
	}
	vi.TotalDebt = vi.TotalDebt.Sub(amount)
	k.SetVaultsInfo(ctx, vi)

	if err := k.burnStableFrom(ctx, vaultKey.Account, vaultKey.Denomination, amount); err != nil {
		return err
	}

	emitEvent(ctx, types.EventTypeVaultsPayDebt,
		sdk.NewAttribute(types.AttributeKeyAccount, vaultKey.Account.String()),
		sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
		sdk.NewAttribute(types.AttributeKeyIndex, updated.Index.String()),
	)
	return nil
}

// payOffAndClose implements the full-payoff branch of pay_debt: the vault
// leaves the sorted list entirely, a closure fee (core.fee, spec.md §3) is
// withheld from the returned collateral to treasury, and the remainder is
// released to the owner.
func (k Keeper) payOffAndClose(ctx context.Context, cs types.CoreState, vaultKey types.VaultKey, prevKey, newPrevKey *types.VaultKey, current types.Vault, vi types.VaultsInfo) error {
	if err := k.removeFromList(ctx, prevKey, newPrevKey, current, &vi); err != nil {
		return err
	}
	vi.TotalVaults--
	vi.TotalDebt = vi.TotalDebt.Sub(current.TotalDebt)
	vi.TotalCollateral = vi.TotalCollateral.Sub(current.TotalCollateral)
	k.SetVaultsInfo(ctx, vi)

	if err := k.burnStableFrom(ctx, vaultKey.Account, vaultKey.Denomination, current.TotalDebt); err != nil {
		return err
	}

	fee := types.CeilFee(current.TotalCollateral, cs.Fee)
	payout := current.TotalCollateral.Sub(fee)

	if payout.IsPositive() {
		if err := k.collateral.SendCoinsFromModuleToAccount(ctx, types.ModuleName, vaultKey.Account, sdk.NewCoins(sdk.NewCoin(cs.ColTokenDenom, payout))); err != nil {
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

	emitEvent(ctx, types.EventTypeVaultsVaultClosed,
		sdk.NewAttribute(types.AttributeKeyAccount, vaultKey.Account.String()),
		sdk.NewAttribute(types.AttributeKeyCollateralWithdrawn, payout.String()),
		sdk.NewAttribute(types.AttributeKeyFeeAmount, fee.String()),
	)
	return nil
}

// TransferDebt implements spec.md §4.3 transfer_debt: re-accounts a vault
// to a new owner without changing its index, since the destination must not
// already hold a vault in the denomination and the position in the sorted
// list (by index) does not move.
func (k Keeper) TransferDebt(ctx context.Context, vaultKey types.VaultKey, prevKey *types.VaultKey, destination sdk.AccAddress) error {
	current, vi, err := k.loadOwnedVault(ctx, vaultKey)
	if err != nil {
		return err
	}
	if k.hasVaultIndexKey(ctx, destination, vaultKey.Denomination) {
		return types.ErrUserAlreadyHasDenominationVault
	}

	if err := k.validatePrevKey(ctx, prevKey, current, vi); err != nil {
		return err
	}
	if err := k.validateNewPrevKey(ctx, prevKey, current.Index, current.Denomination); err != nil {
		return err
	}
	if err := k.detach(ctx, prevKey, current, &vi); err != nil {
		return err
	}
	k.deleteVaultIndexKey(ctx, current.Account, current.Denomination)

	updated := current
	updated.Account = destination
	updated.UpdatedAt = sdk.UnwrapSDKContext(ctx).BlockTime().Unix()
	k.insert(ctx, prevKey, updated, &vi)
	k.SetVaultsInfo(ctx, vi)

	emitEvent(ctx, types.EventTypeVaultsTransferDebt,
		sdk.NewAttribute(types.AttributeKeyAccount, vaultKey.Account.String()),
		sdk.NewAttribute(types.AttributeKeyDestination, destination.String()),
	)
	return nil
}
