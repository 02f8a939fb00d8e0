package cmd

import (
	"context"
	"fmt"

	"github.com/magicollection/magi/internal/chain"
	"github.com/magicollection/magi/internal/config"
	"github.com/magicollection/magi/internal/rpc"
	"github.com/magicollection/magi/internal/ui"
	"github.com/spf13/cobra"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Inspect RPC endpoints",
}

var rpcBenchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Benchmark the endpoints of the current network",
	Long: `Ping every configured endpoint (rpc_urls, else the network defaults)
and show which one the dashboard would pick with rpc_algorithm.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := resolveNetwork()
		if err != nil {
			return err
		}
		urls := cfg.RPCURLs
		if len(urls) == 0 {
			urls = n.RPCs
		}

		fmt.Printf("%s\n", ui.StyleTitle.Render(fmt.Sprintf("Benchmarking %s RPCs...", n.DisplayName)))

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()
		results := rpc.Benchmark(ctx, urls)

		t := ui.NewTable([]ui.Column{
			{Title: "RPC URL", Width: 44},
			{Title: "Latency", Width: 10},
			{Title: "Block #", Width: 12},
			{Title: "Push", Width: 5},
			{Title: "Status", Width: 10},
		})
		for _, r := range results {
			status := ui.Success("healthy")
			latency := fmt.Sprintf("%dms", r.Latency.Milliseconds())
			block := fmt.Sprintf("%d", r.BlockNumber)
			if r.Err != nil {
				status = ui.Err("down")
				latency, block = "-", "-"
			}
			push := ""
			if chain.SupportsSubscriptions(r.URL) {
				push = "yes"
			}
			t.AddRow(ui.Row{r.URL, latency, block, push, status})
		}
		fmt.Println(t.Render())

		winner, err := rpc.NewPicker(rpc.Algorithm(cfg.RPCAlgorithm), true).Pick(rpc.ResultsToEndpoints(results))
		if err != nil {
			fmt.Println(ui.Warn(err.Error()))
			return nil
		}
		fmt.Println(ui.Meta(fmt.Sprintf("%s picks: ", cfg.RPCAlgorithm)) + ui.Link(winner.URL))
		return nil
	},
}

func init() {
	rpcCmd.AddCommand(rpcBenchmarkCmd)
}
