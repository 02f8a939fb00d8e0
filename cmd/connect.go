package cmd

import (
	"context"
	"fmt"

	"github.com/magicollection/magi/internal/minter"
	"github.com/magicollection/magi/internal/ui"
	"github.com/magicollection/magi/internal/wallet"
	"github.com/spf13/cobra"
)

var (
	connectWallet string
	connectYes    bool
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a wallet to the minting page",
	Long: `Grant the minting page access to one of your wallets.

The wallet offered is --wallet, else default_wallet, else the wallet
marked default with ` + "`magi wallet use`" + `. The grant is remembered until
` + "`magi disconnect`" + `.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if connectWallet != "" {
			cfg.DefaultWallet = connectWallet
		}
		approver := confirmApprover
		if connectYes {
			approver = nil
		}
		a, err := newApp(cmd.Context(), appOptions{passive: true, approver: approver})
		if err != nil {
			return err
		}
		defer a.close()

		ctl := a.controller(minter.NotifyFunc(func(msg string) {
			fmt.Println(ui.Info(msg))
		}))
		defer ctl.Close()

		session := ctl.RequestConnection(cmd.Context())
		if !session.Connected() {
			if a.ext.Installed() {
				fmt.Println(ui.Warn("Wallet not connected."))
			}
			return nil
		}
		fmt.Println(ui.Success("Connected " + ui.Addr(session.Address)))
		if ctl.Snapshot().NetworkWarning {
			fmt.Println(ui.Warn(minter.NetworkWarningText))
		}
		return nil
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Revoke every wallet connection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newWalletManager()
		if err != nil {
			return err
		}
		perms := wallet.NewPermissions(cfg.PermissionsPath())
		granted := perms.Granted()
		if len(granted) == 0 {
			fmt.Println(ui.Meta("No connected accounts."))
			return nil
		}
		// Revoking needs no node, so the extension gets no chain reader.
		if err := wallet.NewExtension(manager, perms, nil).Disconnect(); err != nil {
			return fmt.Errorf("revoking connections: %w", err)
		}
		for _, addr := range granted {
			fmt.Println(ui.Success("Disconnected " + ui.Addr(addr)))
		}
		return nil
	},
}

// confirmApprover asks on the terminal before granting access to w.
func confirmApprover(_ context.Context, w *wallet.Wallet) error {
	prompt := fmt.Sprintf("Connect wallet %q (%s) to The Magi Collection?", w.Name, ui.TruncateAddr(w.Address))
	if !ui.Confirm(prompt) {
		return wallet.ErrUserRejected
	}
	return nil
}

func init() {
	connectCmd.Flags().StringVarP(&connectWallet, "wallet", "w", "", "wallet to connect")
	connectCmd.Flags().BoolVarP(&connectYes, "yes", "y", false, "connect without asking")
}
