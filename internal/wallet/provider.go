package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/magicollection/magi/internal/contract"
	"github.com/magicollection/magi/internal/log"
)

// Errors returned by Extension.
var (
	ErrNotInstalled  = errors.New("no wallet installed")
	ErrUserRejected  = errors.New("user rejected the request")
	ErrNotPermitted  = errors.New("account is not connected")
	ErrNoChainReader = errors.New("wallet has no network")
)

// ChainIDReader reports the chain id of the node the wallet talks to.
// *ethclient.Client satisfies it.
type ChainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// Approver asks the user whether w may be connected. It returns
// ErrUserRejected (or any error) to deny.
type Approver func(ctx context.Context, w *Wallet) error

// Extension is the local stand-in for a browser wallet extension: it owns
// the accounts, remembers which of them the user connected, and reports the
// network it is attached to.
type Extension struct {
	manager   *Manager
	perms     *Permissions
	chain     ChainIDReader
	approve   Approver
	preferred string
}

// ExtensionOption configures an Extension.
type ExtensionOption func(*Extension)

// WithApprover sets the permission prompt. Without one, requests are
// approved for the preferred wallet.
func WithApprover(a Approver) ExtensionOption {
	return func(e *Extension) { e.approve = a }
}

// WithPreferred names the wallet offered on RequestAccounts.
func WithPreferred(name string) ExtensionOption {
	return func(e *Extension) { e.preferred = name }
}

// NewExtension returns an extension over manager, storing grants in perms
// and reading the network from chain. chain may be nil when offline.
func NewExtension(manager *Manager, perms *Permissions, chain ChainIDReader, opts ...ExtensionOption) *Extension {
	e := &Extension{manager: manager, perms: perms, chain: chain}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Installed reports whether at least one wallet exists.
func (e *Extension) Installed() bool {
	wallets, err := e.manager.List()
	return err == nil && len(wallets) > 0
}

// Accounts returns the already connected accounts without prompting.
func (e *Extension) Accounts(ctx context.Context) ([]string, error) {
	if !e.Installed() {
		return nil, ErrNotInstalled
	}
	var out []string
	for _, addr := range e.perms.Granted() {
		if _, err := e.manager.GetByAddress(addr); err != nil {
			continue
		}
		out = append(out, addr)
	}
	return out, nil
}

// RequestAccounts connects the preferred wallet after asking the approver.
// Already connected accounts are returned without a prompt.
func (e *Extension) RequestAccounts(ctx context.Context) ([]string, error) {
	accounts, err := e.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(accounts) > 0 {
		return accounts, nil
	}

	w, err := e.pick()
	if err != nil {
		return nil, err
	}
	if e.approve != nil {
		if err := e.approve(ctx, w); err != nil {
			log.Wallet.Info().Str("wallet", w.Name).Err(err).Msg("connection denied")
			return nil, err
		}
	}
	if err := e.perms.Grant(w.Address); err != nil {
		return nil, fmt.Errorf("saving permission: %w", err)
	}
	log.Wallet.Info().Str("wallet", w.Name).Str("account", w.Address).Msg("account connected")
	return []string{w.Address}, nil
}

// NetworkVersion returns the decimal chain id of the current network.
func (e *Extension) NetworkVersion(ctx context.Context) (string, error) {
	if e.chain == nil {
		return "", ErrNoChainReader
	}
	id, err := e.chain.ChainID(ctx)
	if err != nil {
		return "", fmt.Errorf("reading chain id: %w", err)
	}
	return id.String(), nil
}

// Signer returns a transaction signer for a connected account.
func (e *Extension) Signer(ctx context.Context, account string) (contract.TxSigner, error) {
	connected, err := e.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	permitted := false
	for _, a := range connected {
		if strings.EqualFold(a, account) {
			permitted = true
			break
		}
	}
	if !permitted {
		return nil, fmt.Errorf("%w: %s", ErrNotPermitted, account)
	}

	w, err := e.manager.GetByAddress(account)
	if err != nil {
		return nil, err
	}
	signer, err := e.manager.Signer(w)
	if err != nil {
		return nil, err
	}
	return signer, nil
}

// Disconnect forgets every connected account.
func (e *Extension) Disconnect() error {
	return e.perms.RevokeAll()
}

func (e *Extension) pick() (*Wallet, error) {
	if e.preferred != "" {
		w, err := e.manager.Get(e.preferred)
		if err != nil {
			return nil, fmt.Errorf("wallet %q: %w", e.preferred, err)
		}
		return w, nil
	}
	if w := e.manager.Default(); w != nil {
		return w, nil
	}
	wallets, err := e.manager.List()
	if err != nil {
		return nil, err
	}
	if len(wallets) == 0 {
		return nil, ErrNotInstalled
	}
	return wallets[0], nil
}
