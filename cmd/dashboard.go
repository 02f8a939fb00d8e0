package cmd

import (
	"context"

	"github.com/magicollection/magi/internal/config"
	"github.com/magicollection/magi/internal/log"
	"github.com/magicollection/magi/internal/minter"
	"github.com/magicollection/magi/internal/ui"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the minting dashboard (default)",
	Long: `Open the full-screen minting page.

Keyboard controls:
  c   connect a wallet
  m   mint a Magi Title
  d   disconnect and revoke wallet access
  o   open the collection (or the link in a notice)
  t   open the author's profile
  q   quit

Logs go to log_file when set; the console stays quiet while the
dashboard owns the terminal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd.Context())
	},
}

func runDashboard(ctx context.Context) error {
	a, err := newApp(ctx, appOptions{preferPush: true})
	if err != nil {
		return err
	}
	defer a.close()

	notifier := &ui.ProgramNotifier{}
	ctl := a.controller(notifier)
	defer ctl.Close()
	ctl.State().Observe(notifier.Observe)

	info := ui.DashboardInfo{
		Title:         config.CollectionName,
		Tagline:       config.CollectionTagline,
		CollectionURL: cfg.CollectionURL,
		TwitterHandle: cfg.TwitterHandle,
		TwitterURL:    cfg.TwitterLink(),
		Network:       a.network.DisplayName,
	}
	log.Minter.Debug().Str("contract", cfg.ContractAddress).Str("network", a.network.Name).Msg("opening dashboard")

	model := ui.NewDashboardModel(ctx, ctl, info, minter.Snapshot{Capacity: cfg.Capacity})
	return ui.RunDashboard(model, notifier)
}
