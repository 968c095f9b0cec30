package cli

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"

	"github.com/paw-chain/paw/x/vaults/types"
)

// GetTxCmd returns the transaction commands for the vaults module.
func GetTxCmd() *cobra.Command {
	vaultsTxCmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Vaults transaction subcommands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	vaultsTxCmd.AddCommand(
		CmdNewVault(),
		CmdIncreaseCollateral(),
		CmdWithdrawCollateral(),
		CmdIncreaseDebt(),
		CmdPayDebt(),
		CmdTransferDebt(),
		CmdLiquidate(),
		CmdCreateCurrency(),
		CmdToggleCurrency(),
		CmdSetVaultConditions(),
		CmdSetPanic(),
		CmdSetFee(),
	)

	return vaultsTxCmd
}

// printMsg validates msg and prints it as the JSON payload a proto-backed
// tx pipeline would pack into a transaction and broadcast. There is no
// generated Msg service here to route through tx.GenerateOrBroadcastTxCLI
// (see keeper/codec.go and module.go's RegisterServices doc comments); the
// validated message is emitted so it can be submitted through whatever
// out-of-process signer/broadcaster a deployment wires up.
func printMsg(cmd *cobra.Command, msg interface{ ValidateBasic() error }) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}
	bz, err := json.MarshalIndent(msg, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(bz))
	return nil
}

func vaultKeyRefFromFlags(cmd *cobra.Command, indexFlag, accountFlag, denomination string) (*types.MsgVaultKeyRef, error) {
	indexStr, _ := cmd.Flags().GetString(indexFlag)
	account, _ := cmd.Flags().GetString(accountFlag)
	if indexStr == "" && account == "" {
		return nil, nil
	}
	if indexStr == "" || account == "" {
		return nil, fmt.Errorf("%s and %s must both be set or both be omitted", indexFlag, accountFlag)
	}
	index, ok := math.NewIntFromString(indexStr)
	if !ok {
		return nil, fmt.Errorf("invalid %s: %s", indexFlag, indexStr)
	}
	return &types.MsgVaultKeyRef{Index: index, Account: account, Denomination: denomination}, nil
}

func addVaultKeyRefFlags(cmd *cobra.Command) {
	cmd.Flags().String(FlagPrevIndex, "", "index of the vault currently preceding this one in the sorted list (omit for None)")
	cmd.Flags().String(FlagPrevAccount, "", "account of the vault currently preceding this one (omit for None)")
	cmd.Flags().String(FlagNewPrevIndex, "", "index of the vault that should precede this one after the update (omit for None)")
	cmd.Flags().String(FlagNewPrevAccount, "", "account of the vault that should precede this one after the update (omit for None)")
}

// CmdNewVault opens a new vault.
func CmdNewVault() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new-vault [denomination] [initial-debt] [collateral-amount]",
		Short: "Open a new vault",
		Long: `Open a new collateral-debt position.

Example:
  $ pawd tx vaults new-vault usdx 100000000 200000000 --from mykey`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			denomination := args[0]
			initialDebt, ok := math.NewIntFromString(args[1])
			if !ok {
				return fmt.Errorf("invalid initial-debt: %s", args[1])
			}
			collateralAmount, ok := math.NewIntFromString(args[2])
			if !ok {
				return fmt.Errorf("invalid collateral-amount: %s", args[2])
			}
			prevKey, err := vaultKeyRefFromFlags(cmd, FlagPrevIndex, FlagPrevAccount, denomination)
			if err != nil {
				return err
			}

			msg := &types.MsgNewVault{
				Caller:           clientCtx.GetFromAddress().String(),
				PrevKey:          prevKey,
				InitialDebt:      initialDebt,
				CollateralAmount: collateralAmount,
				Denomination:     denomination,
			}
			return printMsg(cmd, msg)
		},
	}
	cmd.Flags().String(FlagPrevIndex, "", "index of the vault that should precede the new one (omit for None/lowest)")
	cmd.Flags().String(FlagPrevAccount, "", "account of the vault that should precede the new one (omit for None/lowest)")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdIncreaseCollateral adds collateral to an existing vault.
func CmdIncreaseCollateral() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "increase-collateral [denomination] [vault-index] [amount]",
		Short: "Deposit additional collateral into your vault",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			denomination := args[0]
			index, ok := math.NewIntFromString(args[1])
			if !ok {
				return fmt.Errorf("invalid vault-index: %s", args[1])
			}
			amount, ok := math.NewIntFromString(args[2])
			if !ok {
				return fmt.Errorf("invalid amount: %s", args[2])
			}
			prevKey, err := vaultKeyRefFromFlags(cmd, FlagPrevIndex, FlagPrevAccount, denomination)
			if err != nil {
				return err
			}
			newPrevKey, err := vaultKeyRefFromFlags(cmd, FlagNewPrevIndex, FlagNewPrevAccount, denomination)
			if err != nil {
				return err
			}

			msg := &types.MsgIncreaseCollateral{
				PrevKey:    prevKey,
				VaultKey:   types.MsgVaultKeyRef{Index: index, Account: clientCtx.GetFromAddress().String(), Denomination: denomination},
				NewPrevKey: newPrevKey,
				Amount:     amount,
			}
			return printMsg(cmd, msg)
		},
	}
	addVaultKeyRefFlags(cmd)
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdWithdrawCollateral withdraws collateral from an existing vault.
func CmdWithdrawCollateral() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw-collateral [denomination] [vault-index] [amount]",
		Short: "Withdraw collateral from your vault",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			denomination := args[0]
			index, ok := math.NewIntFromString(args[1])
			if !ok {
				return fmt.Errorf("invalid vault-index: %s", args[1])
			}
			amount, ok := math.NewIntFromString(args[2])
			if !ok {
				return fmt.Errorf("invalid amount: %s", args[2])
			}
			prevKey, err := vaultKeyRefFromFlags(cmd, FlagPrevIndex, FlagPrevAccount, denomination)
			if err != nil {
				return err
			}
			newPrevKey, err := vaultKeyRefFromFlags(cmd, FlagNewPrevIndex, FlagNewPrevAccount, denomination)
			if err != nil {
				return err
			}

			msg := &types.MsgWithdrawCollateral{
				PrevKey:    prevKey,
				VaultKey:   types.MsgVaultKeyRef{Index: index, Account: clientCtx.GetFromAddress().String(), Denomination: denomination},
				NewPrevKey: newPrevKey,
				Amount:     amount,
			}
			return printMsg(cmd, msg)
		},
	}
	addVaultKeyRefFlags(cmd)
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdIncreaseDebt mints additional stable tokens against an existing vault.
func CmdIncreaseDebt() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "increase-debt [denomination] [vault-index] [amount]",
		Short: "Mint additional stable tokens against your vault",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			denomination := args[0]
			index, ok := math.NewIntFromString(args[1])
			if !ok {
				return fmt.Errorf("invalid vault-index: %s", args[1])
			}
			amount, ok := math.NewIntFromString(args[2])
			if !ok {
				return fmt.Errorf("invalid amount: %s", args[2])
			}
			prevKey, err := vaultKeyRefFromFlags(cmd, FlagPrevIndex, FlagPrevAccount, denomination)
			if err != nil {
				return err
			}
			newPrevKey, err := vaultKeyRefFromFlags(cmd, FlagNewPrevIndex, FlagNewPrevAccount, denomination)
			if err != nil {
				return err
			}

			msg := &types.MsgIncreaseDebt{
				PrevKey:    prevKey,
				VaultKey:   types.MsgVaultKeyRef{Index: index, Account: clientCtx.GetFromAddress().String(), Denomination: denomination},
				NewPrevKey: newPrevKey,
				Amount:     amount,
			}
			return printMsg(cmd, msg)
		},
	}
	addVaultKeyRefFlags(cmd)
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdPayDebt repays (fully or partially) a vault's debt.
func CmdPayDebt() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay-debt [denomination] [vault-index] [amount]",
		Short: "Repay debt on your vault; an amount equal to the full debt closes it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			denomination := args[0]
			index, ok := math.NewIntFromString(args[1])
			if !ok {
				return fmt.Errorf("invalid vault-index: %s", args[1])
			}
			amount, ok := math.NewIntFromString(args[2])
			if !ok {
				return fmt.Errorf("invalid amount: %s", args[2])
			}
			prevKey, err := vaultKeyRefFromFlags(cmd, FlagPrevIndex, FlagPrevAccount, denomination)
			if err != nil {
				return err
			}
			newPrevKey, err := vaultKeyRefFromFlags(cmd, FlagNewPrevIndex, FlagNewPrevAccount, denomination)
			if err != nil {
				return err
			}

			msg := &types.MsgPayDebt{
				PrevKey:    prevKey,
				VaultKey:   types.MsgVaultKeyRef{Index: index, Account: clientCtx.GetFromAddress().String(), Denomination: denomination},
				NewPrevKey: newPrevKey,
				Amount:     amount,
			}
			return printMsg(cmd, msg)
		},
	}
	addVaultKeyRefFlags(cmd)
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdTransferDebt re-accounts a vault to a new owner account.
func CmdTransferDebt() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer-debt [denomination] [vault-index] [destination]",
		Short: "Transfer ownership of your vault to another account",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			denomination := args[0]
			index, ok := math.NewIntFromString(args[1])
			if !ok {
				return fmt.Errorf("invalid vault-index: %s", args[1])
			}
			destination := args[2]
			prevKey, err := vaultKeyRefFromFlags(cmd, FlagPrevIndex, FlagPrevAccount, denomination)
			if err != nil {
				return err
			}

			msg := &types.MsgTransferDebt{
				PrevKey:     prevKey,
				VaultKey:    types.MsgVaultKeyRef{Index: index, Account: clientCtx.GetFromAddress().String(), Denomination: denomination},
				Destination: destination,
			}
			return printMsg(cmd, msg)
		},
	}
	cmd.Flags().String(FlagPrevIndex, "", "index of the vault currently preceding this one (omit for None)")
	cmd.Flags().String(FlagPrevAccount, "", "account of the vault currently preceding this one (omit for None)")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdLiquidate liquidates the lowest eligible consecutive vaults.
func CmdLiquidate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liquidate [denomination] [total-vaults-to-liquidate]",
		Short: "Liquidate the lowest eligible consecutive vaults in a denomination",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			var total uint32
			if _, err := fmt.Sscanf(args[1], "%d", &total); err != nil {
				return fmt.Errorf("invalid total-vaults-to-liquidate: %s", args[1])
			}

			msg := &types.MsgLiquidate{
				Liquidator:             clientCtx.GetFromAddress().String(),
				Denomination:           args[0],
				TotalVaultsToLiquidate: total,
			}
			return printMsg(cmd, msg)
		},
	}
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdCreateCurrency registers a new denomination (protocol_manager-only).
func CmdCreateCurrency() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-currency [denomination] [contract]",
		Short: "Register a new denomination (protocol_manager only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			msg := &types.MsgCreateCurrency{
				ProtocolManager: clientCtx.GetFromAddress().String(),
				Denomination:    args[0],
				Contract:        args[1],
			}
			return printMsg(cmd, msg)
		},
	}
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdToggleCurrency activates or deactivates a denomination (admin-only).
func CmdToggleCurrency() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle-currency [denomination] [active]",
		Short: "Activate or deactivate a denomination (admin only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			active := args[1] == "true"
			msg := &types.MsgToggleCurrency{
				Admin:        clientCtx.GetFromAddress().String(),
				Denomination: args[0],
				Active:       active,
			}
			return printMsg(cmd, msg)
		},
	}
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSetVaultConditions sets a denomination's ratio/minimum conditions (admin-only).
func CmdSetVaultConditions() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-vault-conditions [denomination] [min-col-rate] [min-debt-creation] [opening-col-rate]",
		Short: "Set a denomination's vault conditions (admin only)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			minColRate, ok := math.NewIntFromString(args[1])
			if !ok {
				return fmt.Errorf("invalid min-col-rate: %s", args[1])
			}
			minDebtCreation, ok := math.NewIntFromString(args[2])
			if !ok {
				return fmt.Errorf("invalid min-debt-creation: %s", args[2])
			}
			openingColRate, ok := math.NewIntFromString(args[3])
			if !ok {
				return fmt.Errorf("invalid opening-col-rate: %s", args[3])
			}
			msg := &types.MsgSetVaultConditions{
				Admin:           clientCtx.GetFromAddress().String(),
				Denomination:    args[0],
				MinColRate:      minColRate,
				MinDebtCreation: minDebtCreation,
				OpeningColRate:  openingColRate,
			}
			return printMsg(cmd, msg)
		},
	}
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSetPanic flips panic mode (protocol_manager-only).
func CmdSetPanic() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-panic [status]",
		Short: "Enable or disable panic mode (protocol_manager only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			msg := &types.MsgSetPanic{
				ProtocolManager: clientCtx.GetFromAddress().String(),
				Status:          args[0] == "true",
			}
			return printMsg(cmd, msg)
		},
	}
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSetFee sets the protocol fee rate (admin-only).
func CmdSetFee() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-fee [new-fee]",
		Short: "Set the protocol fee rate, max 100000 (1%%) (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			newFee, ok := math.NewIntFromString(args[0])
			if !ok {
				return fmt.Errorf("invalid new-fee: %s", args[0])
			}
			msg := &types.MsgSetFee{
				Admin:  clientCtx.GetFromAddress().String(),
				NewFee: newFee,
			}
			return printMsg(cmd, msg)
		},
	}
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}
