package types

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// OracleKeeper is the interface the Vaults Engine consumes to read a
// denomination's rate. Grounded on x/oracle/keeper/price.go's GetPrice, but
// narrowed to the raw fields spec.md §4.2/§6.2 actually needs: a 7-decimal
// collateral-per-denomination-unit rate and the unix timestamp it was
// reported at. The oracle module itself is out of scope (spec.md §1); only
// this consumed interface is specified.
type OracleKeeper interface {
	// LastPrice returns the most recent reported rate for denomination and
	// the unix timestamp of that report.
	LastPrice(ctx context.Context, denomination string) (rate math.Int, timestamp int64, err error)
}

// CollateralKeeper is the interface the engine uses to move the single
// collateral asset, filling the role of the Soroban collateral-token
// contract's transfer/balance calls (spec.md §6.2). Modeled after
// x/dex/types/expected_keepers.go's BankKeeper subset.
type CollateralKeeper interface {
	SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
	SendCoinsFromModuleToModule(ctx context.Context, senderModule, recipientModule string, amt sdk.Coins) error
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
}

// StableTokenKeeper is the interface the engine uses to mint/burn the
// per-denomination stable asset it is configured as admin of (spec.md
// §6.2). The engine mints on debt creation and burns on repayment /
// liquidation.
type StableTokenKeeper interface {
	MintCoins(ctx context.Context, moduleName string, amt sdk.Coins) error
	BurnCoins(ctx context.Context, moduleName string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
	SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error
}
