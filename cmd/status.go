package cmd

import (
	"fmt"

	"github.com/magicollection/magi/internal/minter"
	"github.com/magicollection/magi/internal/ui"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the connected account, network and mint counter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), appOptions{passive: true})
		if err != nil {
			return err
		}
		defer a.close()

		ctl := a.controller(nil)
		defer ctl.Close()
		ctl.CheckExistingConnection(cmd.Context())
		count, countOK := ctl.ReadCount(cmd.Context())
		s := ctl.Snapshot()

		account := ui.Meta("not connected")
		if s.Connected() {
			account = ui.Addr(s.Account)
		}
		counter := minter.CounterText(count, s.Capacity)
		if !countOK {
			counter = ui.Meta("unavailable")
		}
		node := a.rpcURL
		if node == "" {
			node = ui.Meta("offline")
		}

		fmt.Println(ui.KeyValueBlock("The Magi Collection", [][2]string{
			{"Account", account},
			{"Network", a.network.DisplayName},
			{"Node", node},
			{"Contract", ui.Addr(cfg.ContractAddress)},
			{"Minted", counter},
			{"Collection", ui.Link(cfg.CollectionURL)},
		}))
		if s.NetworkWarning {
			fmt.Println(ui.Warn(minter.NetworkWarningText))
		}
		if !a.ext.Installed() {
			fmt.Println(ui.Info(minter.GetWalletText))
		}
		return nil
	},
}
