package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/paw/x/vaults/types"
)

// queryServer wraps Keeper with the read-only Get* entry points spec.md
// §6.1 names in passing and SPEC_FULL.md §7 makes concrete, mirroring
// x/dex/keeper/query.go's plain-method query server (no generated gRPC
// service here either, same reason as msg_server.go).
type queryServer struct {
	Keeper
}

// NewQueryServerImpl returns the vaults read-only query handler set.
func NewQueryServerImpl(keeper Keeper) *queryServer {
	return &queryServer{Keeper: keeper}
}

// QueryVault returns the vault owned by account in denomination.
func (qs queryServer) QueryVault(ctx context.Context, account sdk.AccAddress, denomination string) (types.Vault, error) {
	return qs.Keeper.GetVaultByAccount(ctx, account, denomination)
}

// QueryVaultsInfo returns the per-denomination aggregate.
func (qs queryServer) QueryVaultsInfo(ctx context.Context, denomination string) (types.VaultsInfo, error) {
	return qs.Keeper.GetVaultsInfo(ctx, denomination)
}

// QueryCoreState returns the singleton CoreState record.
func (qs queryServer) QueryCoreState(ctx context.Context) (types.CoreState, error) {
	return qs.Keeper.GetCoreState(ctx)
}

// QueryCurrency returns the Currency registry entry for a denomination.
func (qs queryServer) QueryCurrency(ctx context.Context, denomination string) (types.Currency, error) {
	return qs.Keeper.GetCurrency(ctx, denomination)
}
