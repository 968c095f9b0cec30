package app

import (
	"context"
	"fmt"

	"cosmossdk.io/math"

	vaultstypes "github.com/paw-chain/paw/x/vaults/types"
)

// unwiredOracleKeeper satisfies vaultstypes.OracleKeeper for app wiring.
// The price-feed module this chain would normally consume prices from is
// out of scope here, so every lookup fails closed rather than returning a
// fabricated rate. A real deployment replaces this with a concrete
// sibling-module adapter.
type unwiredOracleKeeper struct{}

var _ vaultstypes.OracleKeeper = unwiredOracleKeeper{}

func (unwiredOracleKeeper) LastPrice(_ context.Context, denomination string) (math.Int, int64, error) {
	return math.Int{}, 0, fmt.Errorf("no price feed wired for denomination %q", denomination)
}
