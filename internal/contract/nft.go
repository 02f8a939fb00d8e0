package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/magicollection/magi/internal/config"
	"github.com/magicollection/magi/internal/log"
)

// Errors.
var (
	ErrReverted      = errors.New("transaction reverted")
	ErrUnexpectedLog = errors.New("log is not a NewEpicNFTMinted event")
)

// Backend is the slice of ethclient.Client that EpicNFT uses.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)
}

// TxSigner signs transactions on behalf of one account.
type TxSigner interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// Minted is a decoded NewEpicNFTMinted event.
type Minted struct {
	From        common.Address
	TokenID     *big.Int
	TxHash      common.Hash
	BlockNumber uint64
}

// EpicNFT talks to one deployed MyEpicNFT contract.
type EpicNFT struct {
	address     common.Address
	abi         abi.ABI
	backend     Backend
	pollEvery   time.Duration
	receiptPoll time.Duration
}

// Option configures an EpicNFT.
type Option func(*EpicNFT)

// WithABI overrides the embedded ABI.
func WithABI(parsed abi.ABI) Option {
	return func(n *EpicNFT) { n.abi = parsed }
}

// WithPollInterval sets how often logs are polled on transports without
// subscriptions.
func WithPollInterval(d time.Duration) Option {
	return func(n *EpicNFT) { n.pollEvery = d }
}

// WithReceiptPoll sets the receipt polling cadence used by WaitMined.
func WithReceiptPoll(d time.Duration) Option {
	return func(n *EpicNFT) { n.receiptPoll = d }
}

// NewEpicNFT binds address on backend.
func NewEpicNFT(address common.Address, backend Backend, opts ...Option) *EpicNFT {
	n := &EpicNFT{
		address:     address,
		abi:         DefaultABI(),
		backend:     backend,
		pollEvery:   4 * time.Second,
		receiptPoll: config.ReceiptPoll,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Address returns the contract address.
func (n *EpicNFT) Address() common.Address {
	return n.address
}

// TotalMinted calls getTotalNFTsMintedSoFar().
func (n *EpicNFT) TotalMinted(ctx context.Context) (*big.Int, error) {
	calldata, err := n.abi.Pack(MethodTotalMinted)
	if err != nil {
		return nil, fmt.Errorf("encoding call: %w", err)
	}
	out, err := n.backend.CallContract(ctx, ethereum.CallMsg{To: &n.address, Data: calldata}, nil)
	if err != nil {
		return nil, fmt.Errorf("contract call failed: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no contract code at %s", n.address.Hex())
	}
	values, err := n.abi.Unpack(MethodTotalMinted, out)
	if err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	count, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("decoding result: unexpected type %T", values[0])
	}
	return count, nil
}

// MakeAnEpicNFT builds, signs and broadcasts a makeAnEpicNFT() transaction.
// It returns as soon as the node accepts the transaction.
func (n *EpicNFT) MakeAnEpicNFT(ctx context.Context, signer TxSigner) (*types.Transaction, error) {
	calldata, err := n.abi.Pack(MethodMint)
	if err != nil {
		return nil, fmt.Errorf("encoding call: %w", err)
	}
	from := signer.Address()

	chainID, err := n.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting chain id: %w", err)
	}

	gas, err := n.backend.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &n.address, Data: calldata})
	if err != nil {
		log.Contract.Debug().Err(err).Uint64("fallback", config.GasLimitMint).Msg("gas estimation failed")
		gas = config.GasLimitMint
	}

	nonce, err := n.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("getting nonce: %w", err)
	}

	tx, err := n.buildTx(ctx, chainID, nonce, gas, calldata)
	if err != nil {
		return nil, err
	}

	signed, err := signer.SignTx(tx, chainID)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	if err := n.backend.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("broadcasting transaction: %w", err)
	}

	log.Contract.Info().
		Str("hash", signed.Hash().Hex()).
		Str("from", from.Hex()).
		Uint64("nonce", nonce).
		Uint64("gas", gas).
		Msg("mint transaction sent")
	return signed, nil
}

// buildTx prefers an EIP-1559 transaction and falls back to a legacy one on
// chains without a base fee.
func (n *EpicNFT) buildTx(ctx context.Context, chainID *big.Int, nonce, gas uint64, data []byte) (*types.Transaction, error) {
	head, err := n.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("getting latest header: %w", err)
	}

	if head.BaseFee == nil {
		gasPrice, err := n.backend.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting gas price: %w", err)
		}
		return types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: gasPrice,
			Gas:      gas,
			To:       &n.address,
			Value:    big.NewInt(0),
			Data:     data,
		}), nil
	}

	tip, err := n.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting gas tip: %w", err)
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &n.address,
		Value:     big.NewInt(0),
		Data:      data,
	}), nil
}

// WaitMined polls for the receipt of hash until it is mined or ctx is done.
// A receipt with failed status is returned together with ErrReverted.
func (n *EpicNFT) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(n.receiptPoll)
	defer ticker.Stop()

	for {
		receipt, err := n.backend.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, fmt.Errorf("%w (hash: %s)", ErrReverted, hash.Hex())
			}
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("fetching receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("transaction %s not mined: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// ParseMinted decodes a NewEpicNFTMinted log. Both indexed and non-indexed
// parameter layouts are accepted.
func (n *EpicNFT) ParseMinted(l types.Log) (*Minted, error) {
	ev := n.abi.Events[EventMinted]
	if len(l.Topics) == 0 || l.Topics[0] != ev.ID {
		return nil, ErrUnexpectedLog
	}

	fields := make(map[string]any, len(ev.Inputs))
	if len(l.Data) > 0 {
		if err := ev.Inputs.NonIndexed().UnpackIntoMap(fields, l.Data); err != nil {
			return nil, fmt.Errorf("unpacking event data: %w", err)
		}
	}
	var indexed abi.Arguments
	for _, arg := range ev.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if err := abi.ParseTopicsIntoMap(fields, indexed, l.Topics[1:]); err != nil {
		return nil, fmt.Errorf("unpacking event topics: %w", err)
	}

	from, ok := fields[ev.Inputs[0].Name].(common.Address)
	if !ok {
		return nil, fmt.Errorf("%w: sender has type %T", ErrUnexpectedLog, fields[ev.Inputs[0].Name])
	}
	tokenID, ok := fields[ev.Inputs[1].Name].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: tokenId has type %T", ErrUnexpectedLog, fields[ev.Inputs[1].Name])
	}

	return &Minted{
		From:        from,
		TokenID:     tokenID,
		TxHash:      l.TxHash,
		BlockNumber: l.BlockNumber,
	}, nil
}

// WatchMinted delivers every NewEpicNFTMinted event emitted after the call
// to sink until the returned subscription is unsubscribed. Transports that
// cannot push notifications are polled with FilterLogs.
func (n *EpicNFT) WatchMinted(ctx context.Context, sink chan<- *Minted) (event.Subscription, error) {
	query := ethereum.FilterQuery{
		Addresses: []common.Address{n.address},
		Topics:    [][]common.Hash{{n.abi.Events[EventMinted].ID}},
	}

	logs := make(chan types.Log, 16)
	sub, err := n.backend.SubscribeFilterLogs(ctx, query, logs)
	switch {
	case err == nil:
		log.Contract.Debug().Str("contract", n.address.Hex()).Msg("subscribed to mint events")
		return n.pushSubscription(sub, logs, sink), nil
	case errors.Is(err, rpc.ErrNotificationsUnsupported):
		start, err := n.backend.BlockNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting start block: %w", err)
		}
		log.Contract.Debug().Uint64("from_block", start+1).Dur("every", n.pollEvery).Msg("polling for mint events")
		return n.pollSubscription(ctx, query, start+1, sink), nil
	default:
		return nil, fmt.Errorf("subscribing to %s: %w", EventMinted, err)
	}
}

func (n *EpicNFT) pushSubscription(sub ethereum.Subscription, logs <-chan types.Log, sink chan<- *Minted) event.Subscription {
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case l := <-logs:
				if !n.deliver(l, sink, quit) {
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	})
}

func (n *EpicNFT) pollSubscription(ctx context.Context, query ethereum.FilterQuery, next uint64, sink chan<- *Minted) event.Subscription {
	return event.NewSubscription(func(quit <-chan struct{}) error {
		ticker := time.NewTicker(n.pollEvery)
		defer ticker.Stop()

		for {
			select {
			case <-quit:
				return nil
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}

			latest, err := n.backend.BlockNumber(ctx)
			if err != nil {
				log.Contract.Warn().Err(err).Msg("polling block number")
				continue
			}
			if latest < next {
				continue
			}

			q := query
			q.FromBlock = new(big.Int).SetUint64(next)
			q.ToBlock = new(big.Int).SetUint64(latest)
			found, err := n.backend.FilterLogs(ctx, q)
			if err != nil {
				log.Contract.Warn().Err(err).Uint64("from", next).Uint64("to", latest).Msg("polling mint events")
				continue
			}
			for _, l := range found {
				if !n.deliver(l, sink, quit) {
					return nil
				}
			}
			next = latest + 1
		}
	})
}

// deliver decodes l and forwards it to sink. It reports false when the
// subscription was closed while waiting on sink.
func (n *EpicNFT) deliver(l types.Log, sink chan<- *Minted, quit <-chan struct{}) bool {
	if l.Removed {
		return true
	}
	m, err := n.ParseMinted(l)
	if err != nil {
		log.Contract.Warn().Err(err).Str("tx", l.TxHash.Hex()).Msg("skipping undecodable log")
		return true
	}
	select {
	case sink <- m:
		return true
	case <-quit:
		return false
	}
}
