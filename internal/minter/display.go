package minter

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Fixed dashboard copy.
const (
	NetworkWarningText = "You are not on the Rinkeby testnet network. Please switch to the Rinkeby testnet to continue."
	GetWalletText      = "Get a wallet! Run `magi wallet generate <name>` or `magi wallet add <name> --key`."
	CollectionLinkText = "View the Magi Collection!"
)

// CounterText renders the mint counter line.
func CounterText(minted, capacity uint64) string {
	return fmt.Sprintf("%d/%d Magi Titles remain! 🧙‍♂️", minted, capacity)
}

// AssetURL returns the marketplace page of one token.
func AssetURL(marketplace string, contractAddr common.Address, tokenID *big.Int) string {
	return fmt.Sprintf("%s/assets/%s/%s", strings.TrimRight(marketplace, "/"), contractAddr.Hex(), tokenID.String())
}

// MintedNotice is shown when a NewEpicNFTMinted event arrives.
func MintedNotice(assetURL string) string {
	return "Hey there! We've minted your NFT and sent it to your wallet. " +
		"It may be blank right now. It can take a max of 10 min to show up on OpenSea. " +
		"Here's the link: " + assetURL
}

// IsWrongNetwork reports whether the wallet's network differs from the
// required one.
func IsWrongNetwork(reported, required string) bool {
	return reported != required
}
