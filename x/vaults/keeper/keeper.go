package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/paw-chain/paw/x/vaults/types"
)

// Keeper holds the persistent store and sibling-contract handles for the
// Vaults Engine. Modeled after x/dex/keeper.Keeper: a store key, a codec,
// and injected expected-keeper dependencies rather than concrete sibling
// module keepers.
type Keeper struct {
	storeKey   storetypes.StoreKey
	cdc        codec.BinaryCodec
	collateral types.CollateralKeeper
	stable     types.StableTokenKeeper
	oracle     types.OracleKeeper

	moduleAddressCache sdk.AccAddress
}

// NewKeeper creates a new vaults Keeper instance.
func NewKeeper(
	cdc codec.BinaryCodec,
	key storetypes.StoreKey,
	collateral types.CollateralKeeper,
	stable types.StableTokenKeeper,
	oracle types.OracleKeeper,
) *Keeper {
	return &Keeper{
		storeKey:           key,
		cdc:                cdc,
		collateral:         collateral,
		stable:             stable,
		oracle:             oracle,
		moduleAddressCache: authtypes.NewModuleAddress(types.ModuleName),
	}
}

// kvStoreProvider lets getStore work with both sdk.Context and a direct
// store provider, the same defensive pattern x/dex/keeper.Keeper.getStore
// uses.
type kvStoreProvider interface {
	KVStore(key storetypes.StoreKey) storetypes.KVStore
}

func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	if provider, ok := ctx.(kvStoreProvider); ok {
		return provider.KVStore(k.storeKey)
	}
	return sdk.UnwrapSDKContext(ctx).KVStore(k.storeKey)
}

// GetModuleAddress returns the module account address used as the
// collateral escrow and fee-retention account.
func (k Keeper) GetModuleAddress() sdk.AccAddress {
	return k.moduleAddressCache
}

// Logger returns a module-scoped logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", fmt.Sprintf("x/%s", types.ModuleName))
}
