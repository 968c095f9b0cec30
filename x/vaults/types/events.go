package types

// Event types for the vaults module. Names follow the module_action
// convention x/dex/types/events.go establishes.
const (
	EventTypeVaultsNewVault           = "vaults_new_vault"
	EventTypeVaultsIncreaseCollateral = "vaults_increase_collateral"
	EventTypeVaultsWithdrawCollateral = "vaults_withdraw_collateral"
	EventTypeVaultsIncreaseDebt       = "vaults_increase_debt"
	EventTypeVaultsPayDebt            = "vaults_pay_debt"
	EventTypeVaultsVaultClosed        = "vaults_vault_closed"
	EventTypeVaultsTransferDebt       = "vaults_transfer_debt"
	EventTypeVaultsLiquidation        = "vaults_liquidation"

	EventTypeVaultsCurrencyCreated = "vaults_currency_created"
	EventTypeVaultsCurrencyToggled = "vaults_currency_toggled"
	EventTypeVaultsConditionsSet   = "vaults_conditions_set"
	EventTypeVaultsPanicSet        = "vaults_panic_set"
	EventTypeVaultsAddressSet      = "vaults_address_set"
	EventTypeVaultsFeeSet          = "vaults_fee_set"
	EventTypeVaultsNextKeySet      = "vaults_next_key_set"
)

// Event attribute keys for the vaults module.
const (
	AttributeKeyAccount       = "account"
	AttributeKeyLiquidator    = "liquidator"
	AttributeKeyDenomination  = "denomination"
	AttributeKeyDestination   = "destination"
	AttributeKeyTotalDebt     = "total_debt"
	AttributeKeyTotalCollateral = "total_collateral"
	AttributeKeyIndex         = "index"
	AttributeKeyFeeAmount     = "fee_amount"
	AttributeKeyAmount        = "amount"
	AttributeKeyVaultsCount   = "vaults_liquidated"
	AttributeKeyAmountDeposited = "amount_deposited"
	AttributeKeyCollateralWithdrawn = "collateral_withdrawn"
	AttributeKeyPanicMode     = "panic_mode"
	AttributeKeyNewFee        = "new_fee"
	AttributeKeyTarget        = "target"
	AttributeKeyNextKey       = "next_key"
)
