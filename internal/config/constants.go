package config

import "time"

// Gas limit used as the EstimateGas fallback when the node cannot simulate
// the mint. Conservative upper bound for an ERC-721 mint with on-chain SVG.
const GasLimitMint = uint64(500_000)

// Timeouts used across cmd and the minter.
const (
	RPCSelectTimeout = 10 * time.Second // endpoint benchmark / selection
	TxConfirmTimeout = 3 * time.Minute  // mint confirmation wait
	ReceiptPoll      = 2 * time.Second  // receipt polling cadence
)

// Collection constants of the Magi contract.
const (
	CollectionName    = "The Magi Collection"
	CollectionTagline = "Unique Spell Casters create the coalition of Magi. Discover your Magi Title today!"
	DefaultCapacity   = uint64(50)
)
