package keeper

import (
	"context"

	storetypes "cosmossdk.io/store/types"

	"github.com/paw-chain/paw/x/vaults/types"
)

// InitGenesis loads the genesis CoreState, Currency registry, and VaultsInfo
// conditions. Vaults themselves are never part of genesis state (see
// types.GenesisState's doc comment).
func (k Keeper) InitGenesis(ctx context.Context, gs types.GenesisState) {
	if gs.CoreState != nil {
		k.SetCoreState(ctx, *gs.CoreState)
	}
	for _, c := range gs.Currencies {
		k.setCurrency(ctx, c)
	}
	for _, vi := range gs.VaultsInfos {
		k.SetVaultsInfo(ctx, vi)
	}
}

// ExportGenesis dumps the current CoreState, Currency registry, and
// VaultsInfo conditions for every denomination currently registered.
func (k Keeper) ExportGenesis(ctx context.Context) *types.GenesisState {
	gs := &types.GenesisState{}

	if k.hasCoreState(ctx) {
		cs, err := k.GetCoreState(ctx)
		if err != nil {
			panic(err)
		}
		gs.CoreState = &cs
	}

	store := k.getStore(ctx)

	currencyIter := storetypes.KVStorePrefixIterator(store, types.CurrencyKeyPrefix)
	defer currencyIter.Close()
	for ; currencyIter.Valid(); currencyIter.Next() {
		c, err := decodeCurrency(currencyIter.Value())
		if err != nil {
			panic(err)
		}
		gs.Currencies = append(gs.Currencies, c)
	}

	infoIter := storetypes.KVStorePrefixIterator(store, types.VaultsInfoKeyPrefix)
	defer infoIter.Close()
	for ; infoIter.Valid(); infoIter.Next() {
		vi, err := decodeVaultsInfo(infoIter.Value())
		if err != nil {
			panic(err)
		}
		gs.VaultsInfos = append(gs.VaultsInfos, vi)
	}

	return gs
}
