package types

import (
	"cosmossdk.io/errors"
)

// Vaults module sentinel errors. Numeric codes follow spec.md §6.4's
// exported error taxonomy so off-chain tooling can match on stable codes
// the way x/oracle/types/errors.go groups its registry by concern.
var (
	// Core / setup errors
	ErrCoreAlreadySet        = errors.Register(ModuleName, 2, "core state already set")
	ErrInvalidFee            = errors.Register(ModuleName, 3, "invalid fee")
	ErrVaultsInfoHasNotStarted = errors.Register(ModuleName, 4, "vaults info has not started for this denomination")
	ErrThereAreNoVaults      = errors.Register(ModuleName, 5, "there are no vaults for this denomination")

	// Vault precondition errors (caller errors, spec.md §7)
	ErrInvalidMinDebtAmount        = errors.Register(ModuleName, 6, "debt amount is below the minimum debt creation amount")
	ErrInvalidMinCollateralAmount  = errors.Register(ModuleName, 7, "collateral amount is below the minimum required")
	ErrInvalidOpeningCollateralRatio = errors.Register(ModuleName, 8, "resulting collateral ratio is below the opening collateral ratio")
	ErrVaultDoesntExist            = errors.Register(ModuleName, 9, "vault doesn't exist")
	ErrUserAlreadyHasDenominationVault = errors.Register(ModuleName, 10, "user already has a vault for this denomination")
	ErrUserVaultCantBeLiquidated   = errors.Register(ModuleName, 11, "vault cannot be liquidated")

	// Sorted-list validation errors (caller errors, spec.md §4.1)
	ErrInvalidPrevVaultIndex       = errors.Register(ModuleName, 12, "provided prev vault index is invalid")
	ErrPrevVaultCantBeNone         = errors.Register(ModuleName, 13, "prev_key cannot be none unless the target is the current lowest")
	ErrPrevVaultDoesntExist        = errors.Register(ModuleName, 14, "the vault at prev_key doesn't exist")
	ErrPrevVaultNextIndexIsInvalid = errors.Register(ModuleName, 15, "the vault at prev_key does not point to the target vault")
	ErrIndexProvidedIsNotTheOneSaved = errors.Register(ModuleName, 16, "the index provided does not match the persisted vault index")
	ErrNextPrevVaultShouldBeNone   = errors.Register(ModuleName, 17, "new_prev_key must be none when the vault is being removed")
	ErrInvalidPrevKeyDenomination  = errors.Register(ModuleName, 18, "prev_key/new_prev_key denomination does not match the target vault")

	// Liquidation errors
	ErrNotEnoughVaultsToLiquidate = errors.Register(ModuleName, 19, "fewer than the requested number of consecutive vaults are eligible for liquidation")

	// Payment errors
	ErrDepositAmountIsMoreThanTotalDebt = errors.Register(ModuleName, 20, "deposit amount is more than the vault's total debt")
	ErrCollateralRateUnderMinimum       = errors.Register(ModuleName, 21, "withdrawal would bring the collateral ratio under the opening collateral ratio")

	// Currency lifecycle errors
	ErrCurrencyAlreadyAdded = errors.Register(ModuleName, 22, "currency already added")
	ErrCurrencyDoesntExist  = errors.Register(ModuleName, 23, "currency doesn't exist")
	ErrCurrencyIsInactive   = errors.Register(ModuleName, 24, "currency is inactive")

	// Protocol guardrail errors (policy errors, spec.md §7)
	ErrPanicModeEnabled = errors.Register(ModuleName, 25, "panic mode is enabled or the oracle rate is stale")

	// Sibling-contract errors (wrapped, spec.md §7)
	ErrFundsDepositFailed  = errors.Register(ModuleName, 26, "collateral deposit failed")
	ErrFundsWithdrawFailed = errors.Register(ModuleName, 27, "collateral withdrawal failed")
	ErrMintFailed          = errors.Register(ModuleName, 28, "stable token mint failed")
	ErrBurnFailed          = errors.Register(ModuleName, 29, "stable token burn failed")

	// Ambient Cosmos SDK module errors
	ErrUnauthorized   = errors.Register(ModuleName, 30, "unauthorized")
	ErrInvalidAddress = errors.Register(ModuleName, 31, "invalid address")
	ErrInvalidGenesis = errors.Register(ModuleName, 32, "invalid genesis state")
	ErrInvalidParams  = errors.Register(ModuleName, 33, "invalid params")
)
