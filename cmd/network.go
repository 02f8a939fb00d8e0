package cmd

import (
	"fmt"

	"github.com/magicollection/magi/internal/chain"
	"github.com/magicollection/magi/internal/ui"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Inspect networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported networks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 10},
			{Title: "Display", Width: 14},
			{Title: "Chain ID", Width: 10},
			{Title: "Currency", Width: 8},
			{Title: "Testnet", Width: 8},
			{Title: "Explorer", Width: 32},
		})

		for i, n := range reg.All() {
			testnet := ""
			if n.Testnet {
				testnet = "yes"
			}
			if n.Name == cfg.Network {
				t.Marked = i
			}
			t.AddRow(ui.Row{
				ui.Val(n.Name),
				n.DisplayName,
				n.ChainIDString(),
				n.NativeCurrency,
				testnet,
				ui.Meta(n.Explorer),
			})
		}

		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d networks · current: %s · contract expects chain %s",
			len(reg.All()), cfg.Network, cfg.RequiredChainID)))
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd)
}
