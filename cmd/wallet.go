package cmd

import (
	"fmt"
	"strings"

	"github.com/magicollection/magi/internal/ui"
	"github.com/magicollection/magi/internal/wallet"
	"github.com/spf13/cobra"
)

var walletKeyFlag string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a wallet",
	Long: `Add a signing wallet from a private key (stored in the OS keychain) or a
watch-only wallet from an address. Only signing wallets can mint.

  magi wallet add mage --key 0x...
  magi wallet add viewer 0xAbC...`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}

		if walletKeyFlag != "" {
			w, err := mgr.AddWithKey(name, walletKeyFlag)
			if err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
			fmt.Println(ui.Meta(fmt.Sprintf("Set as default with: magi wallet use %s", name)))
			return nil
		}

		if len(args) < 2 {
			return fmt.Errorf("address required for watch-only wallet\n  Usage: magi wallet add <name> <address>\n  Or for signing: magi wallet add <name> --key <private-key>")
		}
		if err := mgr.Add(name, args[1]); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(args[1]))))
		return nil
	},
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Generate a new signing wallet",
	Long: `Generate a brand-new keypair. The private key goes straight into the OS
keychain and is never printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		w, err := mgr.Generate(args[0])
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("New wallet", [][2]string{
			{"Name", ui.Val(w.Name)},
			{"Address", ui.Addr(w.Address)},
			{"Key", ui.Meta(w.KeyRef + " (OS keychain)")},
		}))
		fmt.Println(ui.Meta("Fund it with test ETH, then run: magi connect --wallet " + w.Name))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		wallets, err := mgr.List()
		if err != nil {
			return err
		}
		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Meta("Create one with: magi wallet generate <name>"))
			return nil
		}

		granted := make(map[string]bool)
		for _, addr := range wallet.NewPermissions(cfg.PermissionsPath()).Granted() {
			granted[strings.ToLower(addr)] = true
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Type", Width: 12},
			{Title: "Default", Width: 8},
			{Title: "Connected", Width: 10},
		})
		for i, w := range wallets {
			def, conn := "", ""
			if w.IsDefault {
				def = ui.StyleSuccess.Render("✓")
				t.Marked = i
			}
			if granted[strings.ToLower(w.Address)] {
				conn = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{ui.Val(w.Name), ui.Addr(w.Address), ui.Meta(w.Type), def, conn})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !ui.ConfirmDanger(fmt.Sprintf("Remove wallet %q and delete its key?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		w, err := mgr.Get(name)
		if err != nil {
			return err
		}
		if err := mgr.Remove(name); err != nil {
			return err
		}
		if err := wallet.NewPermissions(cfg.PermissionsPath()).Revoke(w.Address); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key for a signing wallet (stored in the OS keychain)")
	walletCmd.AddCommand(walletAddCmd, walletGenerateCmd, walletListCmd, walletUseCmd, walletRemoveCmd)
}
