package chain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
)

// Dial connects to an EVM JSON-RPC endpoint. http(s), ws(s) and IPC paths
// are all accepted; only ws(s) and IPC support log subscriptions.
func Dial(ctx context.Context, url string) (*ethclient.Client, error) {
	c, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return c, nil
}

// SupportsSubscriptions reports whether url uses a transport with push
// notifications.
func SupportsSubscriptions(url string) bool {
	u := strings.ToLower(url)
	return strings.HasPrefix(u, "ws://") || strings.HasPrefix(u, "wss://") || strings.HasSuffix(u, ".ipc")
}

// Ping dials url and fetches the latest block number, returning the round
// trip latency of the block number call.
func Ping(ctx context.Context, url string) (latency time.Duration, blockNum uint64, err error) {
	c, err := Dial(ctx, url)
	if err != nil {
		return 0, 0, err
	}
	defer c.Close()

	start := time.Now()
	blockNum, err = c.BlockNumber(ctx)
	latency = time.Since(start)
	if err != nil {
		return latency, 0, err
	}
	return latency, blockNum, nil
}
