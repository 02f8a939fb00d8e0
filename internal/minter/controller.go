// Package minter coordinates the wallet connection, the mint counter, the
// mint event subscription and mint transactions for the dashboard.
package minter

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/google/uuid"
	"github.com/magicollection/magi/internal/config"
	"github.com/magicollection/magi/internal/contract"
	"github.com/magicollection/magi/internal/log"
)

// Errors.
var (
	ErrNoWallet     = errors.New("no wallet installed")
	ErrNoAccount    = errors.New("no connected account")
	ErrNoContract   = errors.New("no contract connection")
	ErrMintInFlight = errors.New("a mint is already in flight")
)

// Wallet is the account provider the controller talks to.
type Wallet interface {
	Accounts(ctx context.Context) ([]string, error)
	RequestAccounts(ctx context.Context) ([]string, error)
	NetworkVersion(ctx context.Context) (string, error)
	Signer(ctx context.Context, account string) (contract.TxSigner, error)
}

// Contract is the deployed collection contract.
type Contract interface {
	Address() common.Address
	TotalMinted(ctx context.Context) (*big.Int, error)
	MakeAnEpicNFT(ctx context.Context, signer contract.TxSigner) (*types.Transaction, error)
	WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	WatchMinted(ctx context.Context, sink chan<- *contract.Minted) (event.Subscription, error)
}

// Notifier shows a blocking message to the user.
type Notifier interface {
	Notify(msg string)
}

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(msg string)

// Notify calls f(msg).
func (f NotifyFunc) Notify(msg string) { f(msg) }

// Session is the connected account; an empty Address means disconnected.
type Session struct {
	Address string
}

// Connected reports whether the session holds an account.
func (s Session) Connected() bool {
	return s.Address != ""
}

// Options configures a Controller.
type Options struct {
	RequiredNetwork string
	Capacity        uint64
	MarketplaceURL  string
	// TxURL turns a transaction hash into an explorer link. Optional.
	TxURL          func(hash string) string
	ConfirmTimeout time.Duration
	// Passive controllers never arm the mint subscription. One-shot
	// commands use it to skip a listener they would tear down at once.
	Passive bool
}

// Controller owns the dashboard State and drives every wallet and contract
// interaction. Wallet and Contract may be nil; operations then log and
// return without touching state.
type Controller struct {
	wallet   Wallet
	contract Contract
	notifier Notifier
	opts     Options
	state    *State

	subMu     sync.Mutex
	sub       event.Subscription
	cancelSub context.CancelFunc
	subDone   chan struct{}
}

// New returns a controller. n may be nil.
func New(w Wallet, c Contract, n Notifier, opts Options) *Controller {
	if opts.Capacity == 0 {
		opts.Capacity = config.DefaultCapacity
	}
	if opts.ConfirmTimeout == 0 {
		opts.ConfirmTimeout = config.TxConfirmTimeout
	}
	if n == nil {
		n = NotifyFunc(func(string) {})
	}
	return &Controller{
		wallet:   w,
		contract: c,
		notifier: n,
		opts:     opts,
		state:    NewState(opts.Capacity),
	}
}

// State returns the controller's state.
func (c *Controller) State() *State {
	return c.state
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	return c.state.Snapshot()
}

// Init runs the startup sequence: look for an already connected account,
// then read the counter.
func (c *Controller) Init(ctx context.Context) Snapshot {
	c.CheckExistingConnection(ctx)
	c.ReadCount(ctx)
	return c.state.Snapshot()
}

// CheckExistingConnection adopts the first already permitted account and
// arms the mint subscription. It never prompts the user.
func (c *Controller) CheckExistingConnection(ctx context.Context) Session {
	if c.wallet == nil {
		log.Minter.Info().Msg("make sure you have a wallet")
		return Session{}
	}

	var session Session
	accounts, err := c.wallet.Accounts(ctx)
	switch {
	case err != nil:
		log.Minter.Warn().Err(err).Msg("listing accounts")
	case len(accounts) == 0:
		log.Minter.Info().Msg("no authorized account found")
	default:
		session = c.adopt(ctx, accounts[0])
		log.Minter.Info().Str("account", session.Address).Msg("found an authorized account")
	}

	c.checkNetwork(ctx)
	return session
}

// RequestConnection asks the wallet to connect an account. Failures are
// logged and leave the state disconnected.
func (c *Controller) RequestConnection(ctx context.Context) Session {
	if c.wallet == nil {
		log.Minter.Info().Msg("connect requested without a wallet")
		c.notifier.Notify(GetWalletText)
		return Session{}
	}

	accounts, err := c.wallet.RequestAccounts(ctx)
	if err != nil {
		log.Minter.Warn().Err(err).Msg("connecting wallet")
		return Session{}
	}
	if len(accounts) == 0 {
		log.Minter.Warn().Msg("wallet returned no accounts")
		return Session{}
	}

	session := c.adopt(ctx, accounts[0])
	log.Minter.Info().Str("account", session.Address).Msg("connected")
	c.checkNetwork(ctx)
	return session
}

// Disconnecter is implemented by wallets that can revoke site access.
type Disconnecter interface {
	Disconnect() error
}

// Disconnect clears the account and releases the subscription. A wallet
// that implements Disconnecter has its grants revoked as well.
func (c *Controller) Disconnect() {
	c.Close()
	c.state.SetAccount("")
	if d, ok := c.wallet.(Disconnecter); ok {
		if err := d.Disconnect(); err != nil {
			log.Minter.Warn().Err(err).Msg("revoking wallet access")
			return
		}
		log.Minter.Info().Msg("disconnected")
	}
}

// ReadCount mirrors getTotalNFTsMintedSoFar() into the counter. On failure
// the previous value is kept and ok is false.
func (c *Controller) ReadCount(ctx context.Context) (count uint64, ok bool) {
	prev := c.state.Snapshot().Minted
	if c.wallet == nil {
		log.Minter.Info().Msg("no wallet; counter not read")
		return prev, false
	}
	if c.contract == nil {
		log.Minter.Info().Msg("no contract connection; counter not read")
		return prev, false
	}

	n, err := c.contract.TotalMinted(ctx)
	if err != nil {
		log.Minter.Warn().Err(err).Msg("reading mint count")
		return prev, false
	}
	if !n.IsUint64() {
		log.Minter.Warn().Str("value", n.String()).Msg("mint count out of range")
		return prev, false
	}

	c.state.SetMinted(n.Uint64())
	log.Minter.Debug().Uint64("minted", n.Uint64()).Msg("read mint count")
	return n.Uint64(), true
}

// Subscribe attaches the NewEpicNFTMinted listener. Calling it while a
// subscription is active does nothing.
func (c *Controller) Subscribe(ctx context.Context) error {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	if c.sub != nil {
		return nil
	}
	if c.contract == nil {
		return ErrNoContract
	}

	// The subscription outlives the call that created it.
	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sink := make(chan *contract.Minted, 8)
	sub, err := c.contract.WatchMinted(subCtx, sink)
	if err != nil {
		cancel()
		return fmt.Errorf("watching mint events: %w", err)
	}

	done := make(chan struct{})
	c.sub, c.cancelSub, c.subDone = sub, cancel, done
	go c.consume(sub, sink, done)

	log.Minter.Info().Str("contract", c.contract.Address().Hex()).Msg("event listener set up")
	return nil
}

// Subscribed reports whether a mint subscription is active.
func (c *Controller) Subscribed() bool {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	return c.sub != nil
}

// Close releases the mint subscription and waits for its goroutine. It is
// safe to call more than once.
func (c *Controller) Close() {
	c.subMu.Lock()
	sub, cancel, done := c.sub, c.cancelSub, c.subDone
	c.sub, c.cancelSub, c.subDone = nil, nil, nil
	c.subMu.Unlock()

	if sub == nil {
		return
	}
	sub.Unsubscribe()
	cancel()
	<-done
	log.Minter.Debug().Msg("event listener closed")
}

// Mint sends makeAnEpicNFT() from the connected account and waits for it to
// be mined. IsMining is set before the transaction is built and cleared on
// every return path.
func (c *Controller) Mint(ctx context.Context) (*types.Receipt, error) {
	if c.wallet == nil {
		log.Minter.Info().Msg("mint requested without a wallet")
		return nil, ErrNoWallet
	}
	account := c.state.Snapshot().Account
	if account == "" {
		log.Minter.Info().Msg("mint requested without a connected account")
		return nil, ErrNoAccount
	}
	if c.contract == nil {
		log.Minter.Info().Msg("mint requested without a contract connection")
		return nil, ErrNoContract
	}
	if !c.state.StartMining() {
		return nil, ErrMintInFlight
	}
	defer c.state.StopMining()

	logger := log.Minter.With().
		Str("attempt", uuid.NewString()).
		Str("account", account).
		Logger()

	signer, err := c.wallet.Signer(ctx, account)
	if err != nil {
		logger.Warn().Err(err).Msg("no signer for account")
		return nil, err
	}

	logger.Info().Msg("asking the wallet to pay gas")
	tx, err := c.contract.MakeAnEpicNFT(ctx, signer)
	if err != nil {
		logger.Warn().Err(err).Msg("mint transaction failed")
		return nil, err
	}

	logger.Info().Str("hash", tx.Hash().Hex()).Msg("mining, please wait")
	waitCtx, cancel := context.WithTimeout(ctx, c.opts.ConfirmTimeout)
	defer cancel()

	receipt, err := c.contract.WaitMined(waitCtx, tx.Hash())
	if err != nil {
		logger.Warn().Err(err).Str("hash", tx.Hash().Hex()).Msg("mint not confirmed")
		return receipt, err
	}

	entry := logger.Info().Str("hash", tx.Hash().Hex())
	if c.opts.TxURL != nil {
		if link := c.opts.TxURL(tx.Hash().Hex()); link != "" {
			entry = entry.Str("link", link)
		}
	}
	entry.Msg("mined")
	return receipt, nil
}

// adopt sets the session account and, unless passive, arms the
// subscription.
func (c *Controller) adopt(ctx context.Context, account string) Session {
	c.state.SetAccount(account)
	if c.opts.Passive {
		return Session{Address: account}
	}
	if err := c.Subscribe(ctx); err != nil {
		log.Minter.Warn().Err(err).Msg("setting up event listener")
	}
	return Session{Address: account}
}

// checkNetwork re-evaluates the network warning. A wallet that cannot
// report its network is treated as being on the wrong one.
func (c *Controller) checkNetwork(ctx context.Context) {
	reported, err := c.wallet.NetworkVersion(ctx)
	if err != nil {
		log.Minter.Warn().Err(err).Msg("reading network version")
	}
	wrong := IsWrongNetwork(reported, c.opts.RequiredNetwork)
	if wrong {
		log.Minter.Info().Str("reported", reported).Str("required", c.opts.RequiredNetwork).Msg("wrong network")
	}
	c.state.SetNetworkWarning(wrong)
}

func (c *Controller) consume(sub event.Subscription, sink <-chan *contract.Minted, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case m := <-sink:
			c.onMinted(m)
		case err := <-sub.Err():
			// A nil error or a closed channel still ends the listener.
			if err != nil {
				log.Minter.Warn().Err(err).Msg("event listener dropped")
			}
			c.forget(sub)
			return
		}
	}
}

// forget clears a subscription that ended on its own so a later Subscribe
// can re-arm it.
func (c *Controller) forget(sub event.Subscription) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	if c.sub != sub {
		return
	}
	c.cancelSub()
	c.sub, c.cancelSub, c.subDone = nil, nil, nil
}

func (c *Controller) onMinted(m *contract.Minted) {
	n := c.state.AddMinted(1)
	url := AssetURL(c.opts.MarketplaceURL, c.contract.Address(), m.TokenID)
	log.Minter.Info().
		Str("from", m.From.Hex()).
		Str("token_id", m.TokenID.String()).
		Uint64("minted", n).
		Msg("NewEpicNFTMinted")
	c.notifier.Notify(MintedNotice(url))
}
