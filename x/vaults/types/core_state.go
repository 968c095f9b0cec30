package types

import (
	"cosmossdk.io/math"
)

// CoreState is the process-wide singleton configuration described in
// spec.md §3. It is initialized exactly once by `init` and mutated only by
// the admin/protocol_manager role operations in §6.1.
type CoreState struct {
	ColTokenDenom    string
	StableIssuer     string
	Admin            string
	ProtocolManager  string
	PanicMode        bool
	Treasury         string
	Fee              math.Int
	OracleAddress    string
}

// MaxFee is the fee cap from spec.md §3: "fee ≤ 100_000 (1%, since the
// fixed-point scale is 10⁷)".
var MaxFee = math.NewInt(100_000)

// ValidateFee enforces the fee cap invariant.
func ValidateFee(fee math.Int) error {
	if fee.IsNil() || fee.IsNegative() {
		return ErrInvalidFee.Wrap("fee cannot be negative")
	}
	if fee.GT(MaxFee) {
		return ErrInvalidFee.Wrapf("fee %s exceeds the 1%% cap (%s)", fee, MaxFee)
	}
	return nil
}
