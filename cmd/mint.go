package cmd

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/magicollection/magi/internal/contract"
	"github.com/magicollection/magi/internal/minter"
	"github.com/magicollection/magi/internal/ui"
	"github.com/spf13/cobra"
)

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a Magi Title from the connected account",
	Long: `Send makeAnEpicNFT() from the connected account and wait until it is
mined (up to 3 minutes). Connect first with ` + "`magi connect`" + `.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, appOptions{requireChain: true, passive: true})
		if err != nil {
			return err
		}
		defer a.close()

		ctl := a.controller(nil)
		defer ctl.Close()

		session := ctl.CheckExistingConnection(ctx)
		if !a.ext.Installed() {
			return errors.New(minter.GetWalletText)
		}
		if !session.Connected() {
			return fmt.Errorf("%w: run `magi connect` first", minter.ErrNoAccount)
		}
		if ctl.Snapshot().NetworkWarning {
			fmt.Println(ui.Warn(minter.NetworkWarningText))
		}

		spin := ui.NewSpinner("Mining… please wait")
		spin.Start()
		receipt, err := ctl.Mint(ctx)
		if err != nil {
			spin.StopWithMsg(ui.Err("Mint failed"))
			return err
		}
		spin.StopWithMsg(ui.Success(fmt.Sprintf("Mined in block #%s", receipt.BlockNumber)))

		if link := a.network.TxURL(receipt.TxHash.Hex()); link != "" {
			fmt.Println(ui.Meta("  tx  ") + ui.Link(link))
		}
		if m := mintedFromReceipt(a.nft, receipt); m != nil {
			fmt.Println(ui.Info(minter.MintedNotice(minter.AssetURL(cfg.MarketplaceURL, a.nft.Address(), m.TokenID))))
		}
		if n, ok := ctl.ReadCount(ctx); ok {
			fmt.Println(ui.Val(minter.CounterText(n, cfg.Capacity)))
		}
		return nil
	},
}

// mintedFromReceipt returns the NewEpicNFTMinted event in receipt, if any.
func mintedFromReceipt(nft *contract.EpicNFT, receipt *types.Receipt) *contract.Minted {
	for _, l := range receipt.Logs {
		if l.Address != nft.Address() {
			continue
		}
		if m, err := nft.ParseMinted(*l); err == nil {
			return m
		}
	}
	return nil
}
