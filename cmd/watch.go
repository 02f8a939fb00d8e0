package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/magicollection/magi/internal/contract"
	"github.com/magicollection/magi/internal/log"
	"github.com/magicollection/magi/internal/minter"
	"github.com/magicollection/magi/internal/ui"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live NewEpicNFTMinted events",
	Long: `Watch the collection for new mints and stream them into a live table.

Websocket endpoints push events as they happen; HTTP endpoints are polled
every poll_interval seconds.

Keyboard controls:
  ↑↓ / j k   navigate rows
  o           open the selected asset
  e           open the selected transaction in the explorer
  c           copy the asset link
  q           quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		a, err := newApp(ctx, appOptions{requireChain: true, preferPush: true})
		if err != nil {
			return err
		}
		defer a.close()

		p := tea.NewProgram(ui.MintFeedModel{
			Contract: cfg.ContractAddress,
			Network:  a.network.DisplayName,
		}, tea.WithAltScreen())

		go feedMints(ctx, a, p)

		_, err = p.Run()
		return err
	},
}

// feedMints reads the counter, then forwards every mint event to p until
// ctx ends or the subscription drops.
func feedMints(ctx context.Context, a *app, p *tea.Program) {
	mode := "poll"
	if a.pushCapable() {
		mode = "push"
	}

	status := ui.FeedStatusMsg{Capacity: cfg.Capacity, Mode: mode}
	if n, err := a.nft.TotalMinted(ctx); err != nil {
		log.Contract.Warn().Err(err).Msg("reading mint count")
	} else if n.IsUint64() {
		status.Minted = n.Uint64()
	}
	p.Send(status)

	sink := make(chan *contract.Minted, 16)
	sub, err := a.nft.WatchMinted(ctx, sink)
	if err != nil {
		p.Send(withFeedError(status, err.Error()))
		return
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-sub.Err():
			msg := "subscription ended"
			if err != nil {
				msg = "subscription dropped: " + err.Error()
			}
			p.Send(withFeedError(status, msg))
			return
		case m := <-sink:
			status.Minted++
			p.Send(status)
			p.Send(ui.MintFeedMsg{
				TokenID:  m.TokenID.String(),
				From:     m.From.Hex(),
				TxHash:   m.TxHash.Hex(),
				Block:    m.BlockNumber,
				AssetURL: minter.AssetURL(cfg.MarketplaceURL, a.nft.Address(), m.TokenID),
				TxURL:    a.network.TxURL(m.TxHash.Hex()),
			})
		}
	}
}

// withFeedError marks status as failed. The counter and mode stay so the
// feed keeps showing them next to the error.
func withFeedError(status ui.FeedStatusMsg, msg string) ui.FeedStatusMsg {
	status.ErrMsg = msg
	return status
}
