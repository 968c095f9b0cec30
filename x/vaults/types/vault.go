package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// IndexScale is the fixed-point scale used for Vault.Index, 10^9, chosen
// per spec.md §3 to preserve ordering resolution beyond the 7-decimal
// monetary scale used for collateral/debt amounts.
var IndexScale = math.NewInt(1_000_000_000)

// MonetaryScale is the fixed-point scale, 10^7, used for all monetary
// values and ratios (collateralization ratios, fees).
var MonetaryScale = math.NewInt(10_000_000)

// VaultKey uniquely identifies a Vault's position in the per-denomination
// sorted list. Two vaults may share an Index and remain orderable by
// (Account, Denomination).
type VaultKey struct {
	Index        math.Int
	Account      sdk.AccAddress
	Denomination string
}

// Equal reports whether two VaultKeys refer to the same vault record.
func (k VaultKey) Equal(other VaultKey) bool {
	return k.Index.Equal(other.Index) &&
		k.Account.Equals(other.Account) &&
		k.Denomination == other.Denomination
}

// VaultIndexKey is the secondary lookup key (account, denomination) -> VaultKey.
type VaultIndexKey struct {
	Account      sdk.AccAddress
	Denomination string
}

// Vault is a collateral-debt position held by one account for one
// denomination. See spec.md §3 for the field invariants.
type Vault struct {
	Account         sdk.AccAddress
	Denomination    string
	TotalDebt       math.Int
	TotalCollateral math.Int
	Index           math.Int
	NextKey         *VaultKey
	CreatedAt       int64
	UpdatedAt       int64
}

// Key returns this vault's current VaultKey.
func (v Vault) Key() VaultKey {
	return VaultKey{Index: v.Index, Account: v.Account, Denomination: v.Denomination}
}

// IndexKey returns this vault's secondary lookup key.
func (v Vault) IndexKey() VaultIndexKey {
	return VaultIndexKey{Account: v.Account, Denomination: v.Denomination}
}

// ComputeIndex computes floor(IndexScale * collateral / debt), the sort key
// from spec.md §3/§4.2. Panics are never raised: debt == 0 is a caller bug
// guarded against before this is ever called (every live vault has
// total_debt >= min_debt_creation > 0).
func ComputeIndex(collateral, debt math.Int) math.Int {
	return collateral.Mul(IndexScale).Quo(debt)
}

// DepositRatio computes floor(rate * collateral / debt), the 7-decimal
// collateralization ratio spec.md §4.2 names "deposit_ratio" and uses both
// at vault-opening and for the can-be-liquidated predicate.
func DepositRatio(rate, collateral, debt math.Int) math.Int {
	return rate.Mul(collateral).Quo(debt)
}

// CeilFee computes ceil(amount * feeRate / MonetaryScale), spec.md §4.2's
// fee formula. Ceiling, not floor, so the protocol never under-charges.
func CeilFee(amount, feeRate math.Int) math.Int {
	if amount.IsZero() || feeRate.IsZero() {
		return math.ZeroInt()
	}
	numerator := amount.Mul(feeRate)
	quotient := numerator.Quo(MonetaryScale)
	remainder := numerator.Sub(quotient.Mul(MonetaryScale))
	if remainder.IsPositive() {
		return quotient.Add(math.OneInt())
	}
	return quotient
}

// CanBeLiquidated implements spec.md §4.2's can-be-liquidated predicate:
// floor(rate * collateral / debt) < min_col_rate.
func CanBeLiquidated(rate math.Int, v Vault, minColRate math.Int) bool {
	return DepositRatio(rate, v.TotalCollateral, v.TotalDebt).LT(minColRate)
}
