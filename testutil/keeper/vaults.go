package keeper

import (
	"context"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/paw/x/vaults/keeper"
	"github.com/paw-chain/paw/x/vaults/types"
)

// TestBlockTime is the fixed block time every VaultsKeeper test context
// starts at, so oracle-staleness arithmetic (spec.md §4.4) has a stable
// reference point instead of the zero time.
var TestBlockTime = time.Unix(1_700_000_000, 0).UTC()

// mockCollateralKeeper is an in-memory stand-in for the single collateral
// asset's bank-style transfer surface, mirroring testutil/keeper/dex.go's
// mockBankKeeper.
type mockCollateralKeeper struct {
	balances map[string]sdk.Coins
}

func newMockCollateralKeeper() *mockCollateralKeeper {
	return &mockCollateralKeeper{balances: make(map[string]sdk.Coins)}
}

func (m *mockCollateralKeeper) SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error {
	key := senderAddr.String()
	if !m.balances[key].IsAllGTE(amt) {
		return errInsufficientFunds
	}
	m.balances[key] = m.balances[key].Sub(amt...)
	m.balances[recipientModule] = m.balances[recipientModule].Add(amt...)
	return nil
}

func (m *mockCollateralKeeper) SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error {
	if !m.balances[senderModule].IsAllGTE(amt) {
		return errInsufficientFunds
	}
	m.balances[senderModule] = m.balances[senderModule].Sub(amt...)
	key := recipientAddr.String()
	m.balances[key] = m.balances[key].Add(amt...)
	return nil
}

func (m *mockCollateralKeeper) SendCoinsFromModuleToModule(ctx context.Context, senderModule, recipientModule string, amt sdk.Coins) error {
	if !m.balances[senderModule].IsAllGTE(amt) {
		return errInsufficientFunds
	}
	m.balances[senderModule] = m.balances[senderModule].Sub(amt...)
	m.balances[recipientModule] = m.balances[recipientModule].Add(amt...)
	return nil
}

func (m *mockCollateralKeeper) GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin {
	return sdk.NewCoin(denom, m.balances[addr.String()].AmountOf(denom))
}

// Fund credits addr's collateral balance directly, the test-setup
// equivalent of an external deposit into the account.
func (m *mockCollateralKeeper) Fund(addr sdk.AccAddress, amt sdk.Coins) {
	m.balances[addr.String()] = m.balances[addr.String()].Add(amt...)
}

// ModuleBalance returns the module escrow account's balance of denom, for
// assertions against VaultsInfo totals.
func (m *mockCollateralKeeper) ModuleBalance(denom string) math.Int {
	return m.balances[types.ModuleName].AmountOf(denom)
}

// mockStableTokenKeeper is an in-memory stand-in for the per-denomination
// stable token mint/burn surface.
type mockStableTokenKeeper struct {
	balances map[string]sdk.Coins
	supply   sdk.Coins
}

func newMockStableTokenKeeper() *mockStableTokenKeeper {
	return &mockStableTokenKeeper{balances: make(map[string]sdk.Coins)}
}

func (m *mockStableTokenKeeper) MintCoins(ctx context.Context, moduleName string, amt sdk.Coins) error {
	m.balances[moduleName] = m.balances[moduleName].Add(amt...)
	m.supply = m.supply.Add(amt...)
	return nil
}

func (m *mockStableTokenKeeper) BurnCoins(ctx context.Context, moduleName string, amt sdk.Coins) error {
	if !m.balances[moduleName].IsAllGTE(amt) {
		return errInsufficientFunds
	}
	m.balances[moduleName] = m.balances[moduleName].Sub(amt...)
	m.supply = m.supply.Sub(amt...)
	return nil
}

func (m *mockStableTokenKeeper) SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error {
	if !m.balances[senderModule].IsAllGTE(amt) {
		return errInsufficientFunds
	}
	m.balances[senderModule] = m.balances[senderModule].Sub(amt...)
	key := recipientAddr.String()
	m.balances[key] = m.balances[key].Add(amt...)
	return nil
}

func (m *mockStableTokenKeeper) SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error {
	key := senderAddr.String()
	if !m.balances[key].IsAllGTE(amt) {
		return errInsufficientFunds
	}
	m.balances[key] = m.balances[key].Sub(amt...)
	m.balances[recipientModule] = m.balances[recipientModule].Add(amt...)
	return nil
}

// Fund credits addr's stable-token balance directly, for tests that need a
// liquidator to already be holding the stable asset it will burn.
func (m *mockStableTokenKeeper) Fund(addr sdk.AccAddress, amt sdk.Coins) {
	m.balances[addr.String()] = m.balances[addr.String()].Add(amt...)
}

// Balance returns addr's stable-token balance of denom.
func (m *mockStableTokenKeeper) Balance(addr sdk.AccAddress, denom string) math.Int {
	return m.balances[addr.String()].AmountOf(denom)
}

// mockOracleKeeper is an in-memory stand-in for the oracle's price feed,
// with one settable rate/timestamp pair per denomination.
type mockOracleKeeper struct {
	rates      map[string]math.Int
	timestamps map[string]int64
}

func newMockOracleKeeper() *mockOracleKeeper {
	return &mockOracleKeeper{rates: make(map[string]math.Int), timestamps: make(map[string]int64)}
}

func (m *mockOracleKeeper) LastPrice(ctx context.Context, denomination string) (math.Int, int64, error) {
	rate, ok := m.rates[denomination]
	if !ok {
		return math.Int{}, 0, errNoPrice
	}
	return rate, m.timestamps[denomination], nil
}

func (m *mockOracleKeeper) SetPrice(denomination string, rate math.Int, timestamp int64) {
	m.rates[denomination] = rate
	m.timestamps[denomination] = timestamp
}

var errInsufficientFunds = &mockError{"insufficient funds"}
var errNoPrice = &mockError{"no price reported"}

type mockError struct{ msg string }

func (e *mockError) Error() string { return e.msg }

// VaultsKeeper creates a test keeper for the vaults module with mock
// collateral/stable/oracle dependencies, mirroring testutil/keeper/dex.go's
// DexKeeper harness.
func VaultsKeeper(t testing.TB) (keeper.Keeper, sdk.Context, *mockCollateralKeeper, *mockStableTokenKeeper, *mockOracleKeeper) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	memStoreKey := storetypes.NewMemoryStoreKey(types.MemStoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(memStoreKey, storetypes.StoreTypeMemory, nil)
	require.NoError(t, stateStore.LoadLatestVersion())

	registry := codectypes.NewInterfaceRegistry()
	cdc := codec.NewProtoCodec(registry)

	collateral := newMockCollateralKeeper()
	stable := newMockStableTokenKeeper()
	oracle := newMockOracleKeeper()

	k := keeper.NewKeeper(cdc, storeKey, collateral, stable, oracle)

	ctx := sdk.NewContext(stateStore, cmtproto.Header{Time: TestBlockTime}, false, log.NewNopLogger())
	k.InitGenesis(ctx, *types.DefaultGenesis())

	return *k, ctx, collateral, stable, oracle
}
