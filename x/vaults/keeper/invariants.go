package keeper

import (
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/paw/x/vaults/types"
)

// RegisterInvariants registers all vaults invariants, mirroring
// x/dex/keeper/invariants.go's route set.
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "list-well-formed", ListWellFormedInvariant(k))
	ir.RegisterRoute(types.ModuleName, "totals-consistent", TotalsConsistentInvariant(k))
	ir.RegisterRoute(types.ModuleName, "secondary-index-agreement", SecondaryIndexAgreementInvariant(k))
	ir.RegisterRoute(types.ModuleName, "module-account-balance", ModuleAccountBalanceInvariant(k))
}

// AllInvariants runs every vaults invariant in sequence.
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		if res, stop := ListWellFormedInvariant(k)(ctx); stop {
			return res, stop
		}
		if res, stop := TotalsConsistentInvariant(k)(ctx); stop {
			return res, stop
		}
		if res, stop := SecondaryIndexAgreementInvariant(k)(ctx); stop {
			return res, stop
		}
		return ModuleAccountBalanceInvariant(k)(ctx)
	}
}

// allVaultsInfo iterates every registered VaultsInfo.
func (k Keeper) allVaultsInfo(ctx sdk.Context) []types.VaultsInfo {
	store := k.getStore(ctx)
	iter := storetypes.KVStorePrefixIterator(store, types.VaultsInfoKeyPrefix)
	defer iter.Close()

	var infos []types.VaultsInfo
	for ; iter.Valid(); iter.Next() {
		vi, err := decodeVaultsInfo(iter.Value())
		if err != nil {
			panic(err)
		}
		infos = append(infos, vi)
	}
	return infos
}

// walkList walks a denomination's sorted list from LowestKey, visiting each
// vault once. It stops (rather than looping forever) after visiting more
// vaults than TotalVaults claims, so a cycle is reported as a broken
// invariant instead of hanging the node.
func (k Keeper) walkList(ctx sdk.Context, vi types.VaultsInfo, visit func(types.Vault)) (visited int, cycle bool) {
	key := vi.LowestKey
	limit := int(vi.TotalVaults) + 1
	for key != nil {
		if visited >= limit {
			return visited, true
		}
		v, err := k.GetVault(ctx, *key)
		if err != nil {
			return visited, false
		}
		visit(v)
		visited++
		key = v.NextKey
	}
	return visited, false
}

// ListWellFormedInvariant checks that each denomination's sorted list is
// acyclic, has exactly TotalVaults entries, and is non-decreasing by Index
// (spec.md §8's sort-order invariant).
func ListWellFormedInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var msg string
		count := 0

		for _, vi := range k.allVaultsInfo(ctx) {
			var prevIndex *math.Int
			visited, cycle := k.walkList(ctx, vi, func(v types.Vault) {
				if prevIndex != nil && v.Index.LT(*prevIndex) {
					count++
					msg += fmt.Sprintf("denomination %s: list not sorted ascending at account %s\n", vi.Denomination, v.Account)
				}
				idx := v.Index
				prevIndex = &idx
			})
			if cycle {
				count++
				msg += fmt.Sprintf("denomination %s: next_key chain cycles or exceeds total_vaults\n", vi.Denomination)
			}
			if visited != int(vi.TotalVaults) {
				count++
				msg += fmt.Sprintf("denomination %s: walked %d vaults, total_vaults says %d\n", vi.Denomination, visited, vi.TotalVaults)
			}
			if vi.TotalVaults == 0 && vi.LowestKey != nil {
				count++
				msg += fmt.Sprintf("denomination %s: total_vaults is 0 but lowest_key is set\n", vi.Denomination)
			}
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "list-well-formed",
			fmt.Sprintf("found %d list well-formedness violations\n%s", count, msg),
		), broken
	}
}

// TotalsConsistentInvariant checks that VaultsInfo.TotalCollateral/TotalDebt
// match the sum over the vaults actually reachable from LowestKey.
func TotalsConsistentInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var msg string
		count := 0

		for _, vi := range k.allVaultsInfo(ctx) {
			sumCollateral := math.ZeroInt()
			sumDebt := math.ZeroInt()
			k.walkList(ctx, vi, func(v types.Vault) {
				sumCollateral = sumCollateral.Add(v.TotalCollateral)
				sumDebt = sumDebt.Add(v.TotalDebt)
			})

			if !sumCollateral.Equal(vi.TotalCollateral) {
				count++
				msg += fmt.Sprintf("denomination %s: total_collateral %s != sum over vaults %s\n", vi.Denomination, vi.TotalCollateral, sumCollateral)
			}
			if !sumDebt.Equal(vi.TotalDebt) {
				count++
				msg += fmt.Sprintf("denomination %s: total_debt %s != sum over vaults %s\n", vi.Denomination, vi.TotalDebt, sumDebt)
			}
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "totals-consistent",
			fmt.Sprintf("found %d total mismatches\n%s", count, msg),
		), broken
	}
}

// SecondaryIndexAgreementInvariant checks that every vault reachable from a
// denomination's sorted list has a secondary (account, denomination) ->
// VaultKey entry pointing back at it, and vice versa is implied since the
// walk only ever visits primary records the secondary index was built from.
func SecondaryIndexAgreementInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var msg string
		count := 0

		for _, vi := range k.allVaultsInfo(ctx) {
			k.walkList(ctx, vi, func(v types.Vault) {
				indexed, err := k.GetVaultIndexKey(ctx, v.Account, v.Denomination)
				if err != nil {
					count++
					msg += fmt.Sprintf("denomination %s: vault for %s has no secondary index entry\n", vi.Denomination, v.Account)
					return
				}
				if !indexed.Equal(v.Key()) {
					count++
					msg += fmt.Sprintf("denomination %s: secondary index for %s points at a different key\n", vi.Denomination, v.Account)
				}
			})
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "secondary-index-agreement",
			fmt.Sprintf("found %d secondary index mismatches\n%s", count, msg),
		), broken
	}
}

// ModuleAccountBalanceInvariant checks that the module account's collateral
// balance is at least the sum of TotalCollateral across every denomination
// (it may exceed it transiently, e.g. collateral awaiting a liquidation
// payout within the same block's remaining handlers).
func ModuleAccountBalanceInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		cs, err := k.GetCoreState(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "module-account-balance", "core state not initialized, skipping"), false
		}

		sumCollateral := math.ZeroInt()
		for _, vi := range k.allVaultsInfo(ctx) {
			sumCollateral = sumCollateral.Add(vi.TotalCollateral)
		}

		balance := k.collateral.GetBalance(ctx, k.GetModuleAddress(), cs.ColTokenDenom)
		broken := balance.Amount.LT(sumCollateral)

		return sdk.FormatInvariant(
			types.ModuleName, "module-account-balance",
			fmt.Sprintf("module balance %s < sum of total_collateral %s", balance.Amount, sumCollateral),
		), broken
	}
}
