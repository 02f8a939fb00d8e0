package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/magicollection/magi/internal/chain"
	"github.com/magicollection/magi/internal/config"
	"github.com/magicollection/magi/internal/contract"
	"github.com/magicollection/magi/internal/log"
	"github.com/magicollection/magi/internal/minter"
	"github.com/magicollection/magi/internal/rpc"
	"github.com/magicollection/magi/internal/wallet"
)

// errOffline is returned by commands that cannot run without a node.
var errOffline = errors.New("no RPC endpoint reachable; set one with `magi config set rpc_urls <url>` or --rpc")

// app bundles what a command needs to talk to the wallet and the contract.
// client and nft are nil when no endpoint could be reached.
type app struct {
	network *chain.Network
	rpcURL  string
	client  *ethclient.Client
	nft     *contract.EpicNFT
	manager *wallet.Manager
	perms   *wallet.Permissions
	ext     *wallet.Extension
	passive bool
}

type appOptions struct {
	requireChain bool
	preferPush   bool
	// passive skips the mint subscription; for commands that exit right
	// after one call.
	passive  bool
	approver wallet.Approver
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	network, err := resolveNetwork()
	if err != nil {
		return nil, err
	}
	manager, err := newWalletManager()
	if err != nil {
		return nil, err
	}
	a := &app{
		network: network,
		manager: manager,
		perms:   wallet.NewPermissions(cfg.PermissionsPath()),
		passive: opts.passive,
	}

	a.client, a.rpcURL, err = dialBest(ctx, network, opts.preferPush)
	if err != nil {
		if opts.requireChain {
			return nil, fmt.Errorf("%w: %v", errOffline, err)
		}
		log.RPC.Warn().Err(err).Str("network", network.Name).Msg("running without a node")
	}

	var reader wallet.ChainIDReader
	if a.client != nil {
		reader = a.client
		if a.nft, err = newEpicNFT(a.client); err != nil {
			a.client.Close()
			return nil, err
		}
	}

	extOpts := []wallet.ExtensionOption{wallet.WithPreferred(cfg.DefaultWallet)}
	if opts.approver != nil {
		extOpts = append(extOpts, wallet.WithApprover(opts.approver))
	}
	a.ext = wallet.NewExtension(manager, a.perms, reader, extOpts...)
	return a, nil
}

// controller builds the minter controller. A wallet-less or offline app
// hands the controller nil collaborators, which it handles by logging.
func (a *app) controller(n minter.Notifier) *minter.Controller {
	var w minter.Wallet
	if a.ext.Installed() {
		w = a.ext
	}
	var c minter.Contract
	if a.nft != nil {
		c = a.nft
	}
	return minter.New(w, c, n, minter.Options{
		RequiredNetwork: cfg.RequiredChainID,
		Capacity:        cfg.Capacity,
		MarketplaceURL:  cfg.MarketplaceURL,
		TxURL:           a.network.TxURL,
		ConfirmTimeout:  config.TxConfirmTimeout,
		Passive:         a.passive,
	})
}

// pushCapable reports whether the selected endpoint can stream logs.
func (a *app) pushCapable() bool {
	return a.rpcURL != "" && chain.SupportsSubscriptions(a.rpcURL)
}

func (a *app) close() {
	if a.client != nil {
		a.client.Close()
	}
}

func resolveNetwork() (*chain.Network, error) {
	n, err := chain.NewRegistry().GetByName(cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("unknown network %q, run `magi network list` to see all networks", cfg.Network)
	}
	return n, nil
}

// dialBest benchmarks the configured endpoints (or the network defaults)
// and dials the winner. With round-robin the cursor is carried across runs
// in the config dir.
func dialBest(ctx context.Context, n *chain.Network, preferPush bool) (*ethclient.Client, string, error) {
	urls := cfg.RPCURLs
	if len(urls) == 0 {
		urls = n.RPCs
	}

	rotating := rpc.Algorithm(cfg.RPCAlgorithm) == rpc.AlgorithmRoundRobin
	if rotating {
		if err := rpc.LoadRotation(cfg.RotationPath()); err != nil {
			log.RPC.Warn().Err(err).Msg("reading round-robin cursor")
		}
	}

	selCtx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()
	url, err := rpc.SelectBest(selCtx, urls, cfg.RPCAlgorithm, preferPush)
	if err != nil {
		return nil, "", err
	}
	if rotating {
		if err := rpc.SaveRotation(cfg.RotationPath()); err != nil {
			log.RPC.Warn().Err(err).Msg("saving round-robin cursor")
		}
	}
	client, err := chain.Dial(ctx, url)
	if err != nil {
		return nil, "", err
	}
	log.RPC.Info().Str("url", url).Str("network", n.Name).Msg("connected to node")
	return client, url, nil
}

func newEpicNFT(client *ethclient.Client) (*contract.EpicNFT, error) {
	opts := []contract.Option{contract.WithPollInterval(cfg.Poll())}
	if cfg.ABIPath != "" {
		parsed, err := contract.LoadArtifact(cfg.ABIPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, contract.WithABI(parsed))
	}
	return contract.NewEpicNFT(common.HexToAddress(cfg.ContractAddress), client, opts...), nil
}

// newWalletManager creates a Manager backed by the config-dir JSON store
// and the OS keychain.
func newWalletManager() (*wallet.Manager, error) {
	keys, err := wallet.OpenKeyring(cfg.Dir())
	if err != nil {
		return nil, err
	}
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeyStore(keys),
	), nil
}
