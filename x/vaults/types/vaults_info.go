package types

import (
	"cosmossdk.io/math"
)

// VaultsInfo is the per-denomination aggregate described in spec.md §3:
// totals, opening/min ratios, minimum debt creation amount, and the pointer
// into the sorted list.
type VaultsInfo struct {
	Denomination     string
	MinColRate       math.Int
	MinDebtCreation  math.Int
	OpeningColRate   math.Int
	TotalVaults      uint32
	TotalCollateral  math.Int
	TotalDebt        math.Int
	LowestKey        *VaultKey
}

// Validate enforces the invariant from spec.md §3:
// "opening_col_rate > min_col_rate > 1_0000000".
func (vi VaultsInfo) ValidateConditions() error {
	oneHundredPercent := MonetaryScale
	if vi.MinColRate.LTE(oneHundredPercent) {
		return ErrInvalidParams.Wrapf("min_col_rate %s must be greater than 100%% (%s)", vi.MinColRate, oneHundredPercent)
	}
	if vi.OpeningColRate.LTE(vi.MinColRate) {
		return ErrInvalidParams.Wrapf("opening_col_rate %s must be greater than min_col_rate %s", vi.OpeningColRate, vi.MinColRate)
	}
	return nil
}

// HasVaults reports whether the denomination currently has any vaults.
// VaultsInfo.LowestKey == nil iff TotalVaults == 0 (spec.md §3 invariant).
func (vi VaultsInfo) HasVaults() bool {
	return vi.TotalVaults > 0
}
