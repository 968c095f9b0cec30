package cli

import (
	"encoding/json"
	"fmt"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/paw/x/vaults/types"
)

// GetQueryCmd returns the cli query commands for the vaults module. There is
// no generated gRPC QueryClient here (see module.go's RegisterServices doc
// comment), so every command below reads its record straight out of the
// module's KV store via a raw ABCI query, the same way tooling that
// predates generated query services worked.
func GetQueryCmd() *cobra.Command {
	vaultsQueryCmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Querying commands for the vaults module",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	vaultsQueryCmd.AddCommand(
		GetCmdQueryCoreState(),
		GetCmdQueryCurrency(),
		GetCmdQueryVaultsInfo(),
		GetCmdQueryVault(),
	)

	return vaultsQueryCmd
}

// abciQueryStore performs a raw ABCI query against the vaults module's
// store for a single key and returns the stored value, or an error if
// absent.
func abciQueryStore(cmd *cobra.Command, key []byte) ([]byte, error) {
	clientCtx, err := client.GetClientQueryContext(cmd)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/store/%s/key", types.StoreKey)
	res, err := clientCtx.QueryABCI(abci.RequestQuery{Path: path, Data: key, Prove: false})
	if err != nil {
		return nil, err
	}
	if res.Value == nil {
		return nil, fmt.Errorf("not found")
	}
	return res.Value, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(bz))
	return nil
}

// GetCmdQueryCoreState queries the singleton CoreState record.
func GetCmdQueryCoreState() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "core-state",
		Short: "Query the vaults module's core configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bz, err := abciQueryStore(cmd, types.CoreStateKey)
			if err != nil {
				return err
			}
			var cs types.CoreState
			if err := json.Unmarshal(bz, &cs); err != nil {
				return err
			}
			return printJSON(cmd, cs)
		},
	}
	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// GetCmdQueryCurrency queries the Currency registry entry for a denomination.
func GetCmdQueryCurrency() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "currency [denomination]",
		Short: "Query a denomination's currency registry entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bz, err := abciQueryStore(cmd, types.GetCurrencyKey(args[0]))
			if err != nil {
				return err
			}
			var c types.Currency
			if err := json.Unmarshal(bz, &c); err != nil {
				return err
			}
			return printJSON(cmd, c)
		},
	}
	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// GetCmdQueryVaultsInfo queries the per-denomination aggregate.
func GetCmdQueryVaultsInfo() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vaults-info [denomination]",
		Short: "Query a denomination's vaults-info aggregate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bz, err := abciQueryStore(cmd, types.GetVaultsInfoKey(args[0]))
			if err != nil {
				return err
			}
			var vi types.VaultsInfo
			if err := json.Unmarshal(bz, &vi); err != nil {
				return err
			}
			return printJSON(cmd, vi)
		},
	}
	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// GetCmdQueryVault queries the vault owned by account in denomination. It
// resolves the secondary (account, denomination) -> VaultKey index first,
// then the primary Vault record.
func GetCmdQueryVault() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vault [denomination] [account]",
		Short: "Query an account's vault in a denomination",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			denomination := args[0]
			account, err := sdk.AccAddressFromBech32(args[1])
			if err != nil {
				return err
			}

			indexBz, err := abciQueryStore(cmd, types.GetVaultIndexKey(account, denomination))
			if err != nil {
				return fmt.Errorf("no vault for %s in %s: %w", account, denomination, err)
			}
			var key types.VaultKey
			if err := json.Unmarshal(indexBz, &key); err != nil {
				return err
			}

			vaultBz, err := abciQueryStore(cmd, types.GetVaultKey(key))
			if err != nil {
				return err
			}
			var v types.Vault
			if err := json.Unmarshal(vaultBz, &v); err != nil {
				return err
			}
			return printJSON(cmd, v)
		},
	}
	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}
