package types

import (
	"time"

	"cosmossdk.io/math"
)

// Params holds the chain-wide defaults used only to seed CoreState at
// `init` time; per-denomination conditions live in VaultsInfo instead,
// matching spec.md's split between the process-wide singleton and the
// per-denomination aggregate.
type Params struct {
	// DefaultFee is the fee rate (7-decimal scale) new deployments start
	// with, subject to MaxFee.
	DefaultFee math.Int

	// StalenessWindow is the "now - rate.timestamp" threshold past which
	// the oracle is considered stale (spec.md §4.3/§4.4: 1200 seconds).
	StalenessWindow time.Duration
}

// DefaultStalenessWindow is spec.md's hardcoded 1200-second window.
const DefaultStalenessWindowSeconds = int64(1200)

// DefaultParams returns the default module params.
func DefaultParams() Params {
	return Params{
		DefaultFee:      math.ZeroInt(),
		StalenessWindow: time.Duration(DefaultStalenessWindowSeconds) * time.Second,
	}
}

// Validate validates the param set.
func (p Params) Validate() error {
	if err := ValidateFee(p.DefaultFee); err != nil {
		return err
	}
	if p.StalenessWindow <= 0 {
		return ErrInvalidParams.Wrap("staleness window must be positive")
	}
	return nil
}
