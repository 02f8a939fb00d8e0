package wallet

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs EVM transactions for a signing wallet.
type Signer struct {
	wallet *Wallet
	keys   KeyStore
}

// NewSigner creates a signer for the given wallet.
func NewSigner(w *Wallet, keys KeyStore) *Signer {
	return &Signer{wallet: w, keys: keys}
}

// SignTx signs tx for chainID. The key is read from the key store on every
// call and never cached.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if s.wallet.Type != TypeSigning {
		return nil, fmt.Errorf("%w: %s", ErrWatchOnly, s.wallet.Name)
	}

	hexKey, err := s.keys.Retrieve(s.wallet.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}

	privKey, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	if got := crypto.PubkeyToAddress(privKey.PublicKey); got != s.Address() {
		return nil, fmt.Errorf("stored key for %q belongs to %s", s.wallet.Name, got.Hex())
	}

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), privKey)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	return signed, nil
}

// Address returns the wallet's address.
func (s *Signer) Address() common.Address {
	return common.HexToAddress(s.wallet.Address)
}
