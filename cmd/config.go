package cmd

import (
	"errors"
	"fmt"

	"github.com/magicollection/magi/internal/config"
	"github.com/magicollection/magi/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list"},
	Short:   "Show current configuration",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.KeyValueBlock("Current Configuration", cfg.Pairs()))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		fmt.Println(ui.Meta("Environment overrides: MAGI_<KEY>, e.g. MAGI_RPC_URLS"))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set and persist one configuration value.

Keys: network, rpc_urls, rpc_algorithm, contract_address, required_chain_id,
capacity, default_wallet, abi_path, marketplace_url, collection_url,
twitter_handle, poll_interval, log_level, log_json, log_file

Lists (rpc_urls) are comma separated.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		// Reload without flag overrides so only key changes on disk.
		stored, err := config.Load(cfg.Dir())
		if err != nil {
			return err
		}
		if err := stored.Set(key, value); err != nil {
			if errors.Is(err, config.ErrUnknownKey) {
				return fmt.Errorf("%w (run `magi config set --help` for the list)", err)
			}
			return err
		}
		if err := stored.Validate(); err != nil {
			return err
		}
		if err := stored.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s set to %q", key, value)))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
}
