package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/magicollection/magi/internal/config"
	"github.com/magicollection/magi/internal/log"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/magicollection/magi/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	verbose     bool
	networkFlag string
	rpcFlag     []string
	abiFlag     string
)

// rootCmd runs the minting dashboard when called without a sub-command.
var rootCmd = &cobra.Command{
	Use:   "magi",
	Short: "Mint a title from The Magi Collection",
	Long: `magi: a terminal minting page for The Magi Collection.

  Connect a wallet, watch the collection counter, and mint your Magi Title
  from the terminal. Every mint is announced with a link to the asset.

Run without a sub-command to open the dashboard.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if networkFlag != "" {
			cfg.Network = networkFlag
		}
		if len(rpcFlag) > 0 {
			cfg.RPCURLs = rpcFlag
		}
		if abiFlag != "" {
			cfg.ABIPath = abiFlag
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		return initLogging(ownsTerminal(cmd))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// MAGI_CONFIG_DIR env var overrides the --config default.
	if envDir := os.Getenv("MAGI_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.magi)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVarP(&networkFlag, "network", "n", "", "network name (see `magi network list`)")
	rootCmd.PersistentFlags().StringSliceVar(&rpcFlag, "rpc", nil, "RPC endpoint(s) to use instead of the network defaults")
	rootCmd.PersistentFlags().StringVar(&abiFlag, "abi", "", "contract artifact or ABI file")

	rootCmd.AddCommand(
		dashboardCmd,
		statusCmd,
		connectCmd,
		disconnectCmd,
		mintCmd,
		watchCmd,
		walletCmd,
		configCmd,
		networkCmd,
		rpcCmd,
	)
}

// ownsTerminal reports whether cmd draws a full-screen UI, in which case
// console logging is silenced.
func ownsTerminal(cmd *cobra.Command) bool {
	if !cmd.HasParent() {
		return true
	}
	return cmd.Name() == "dashboard" || cmd.Name() == "watch"
}

func initLogging(quiet bool) error {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	if err := log.Init(log.Options{
		Level: level,
		JSON:  cfg.LogJSON,
		File:  cfg.LogFile,
		Quiet: quiet,
	}); err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	return nil
}
