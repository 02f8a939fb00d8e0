package wallet_test

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/magicollection/magi/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedChain struct {
	id  int64
	err error
}

func (c fixedChain) ChainID(context.Context) (*big.Int, error) {
	if c.err != nil {
		return nil, c.err
	}
	return big.NewInt(c.id), nil
}

func newExtension(t *testing.T, opts ...wallet.ExtensionOption) (*wallet.Extension, *wallet.Manager) {
	t.Helper()
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	perms := wallet.NewPermissions(filepath.Join(t.TempDir(), "permissions.json"))
	return wallet.NewExtension(mgr, perms, fixedChain{id: 4}, opts...), mgr
}

func TestExtensionNotInstalled(t *testing.T) {
	ext, _ := newExtension(t)
	ctx := context.Background()

	assert.False(t, ext.Installed())

	_, err := ext.Accounts(ctx)
	assert.ErrorIs(t, err, wallet.ErrNotInstalled)

	_, err = ext.RequestAccounts(ctx)
	assert.ErrorIs(t, err, wallet.ErrNotInstalled)
}

func TestExtensionAccountsEmptyUntilRequested(t *testing.T) {
	ext, mgr := newExtension(t)
	ctx := context.Background()
	_, err := mgr.AddWithKey("mage", testPrivKeyHex)
	require.NoError(t, err)

	accounts, err := ext.Accounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)

	accounts, err = ext.RequestAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{testSignerAddr}, accounts)

	accounts, err = ext.Accounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{testSignerAddr}, accounts)
}

func TestExtensionRequestRejected(t *testing.T) {
	calls := 0
	ext, mgr := newExtension(t, wallet.WithApprover(func(_ context.Context, w *wallet.Wallet) error {
		calls++
		assert.Equal(t, "mage", w.Name)
		return wallet.ErrUserRejected
	}))
	_, err := mgr.AddWithKey("mage", testPrivKeyHex)
	require.NoError(t, err)

	_, err = ext.RequestAccounts(context.Background())
	assert.ErrorIs(t, err, wallet.ErrUserRejected)
	assert.Equal(t, 1, calls)

	accounts, err := ext.Accounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestExtensionRequestSkipsPromptWhenConnected(t *testing.T) {
	calls := 0
	ext, mgr := newExtension(t, wallet.WithApprover(func(context.Context, *wallet.Wallet) error {
		calls++
		return nil
	}))
	_, err := mgr.AddWithKey("mage", testPrivKeyHex)
	require.NoError(t, err)

	_, err = ext.RequestAccounts(context.Background())
	require.NoError(t, err)
	_, err = ext.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestExtensionPreferredWallet(t *testing.T) {
	ext, mgr := newExtension(t, wallet.WithPreferred("second"))
	require.NoError(t, mgr.Add("first", "0x0000000000000000000000000000000000000001"))
	require.NoError(t, mgr.Add("second", "0x0000000000000000000000000000000000000002"))

	accounts, err := ext.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0x0000000000000000000000000000000000000002"}, accounts)
}

func TestExtensionPreferredMissing(t *testing.T) {
	ext, mgr := newExtension(t, wallet.WithPreferred("ghost"))
	require.NoError(t, mgr.Add("first", "0x0000000000000000000000000000000000000001"))

	_, err := ext.RequestAccounts(context.Background())
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

func TestExtensionDropsRemovedWallets(t *testing.T) {
	ext, mgr := newExtension(t)
	require.NoError(t, mgr.Add("a", "0x0000000000000000000000000000000000000001"))
	require.NoError(t, mgr.Add("b", "0x0000000000000000000000000000000000000002"))
	require.NoError(t, mgr.SetDefault("a"))

	_, err := ext.RequestAccounts(context.Background())
	require.NoError(t, err)
	require.NoError(t, mgr.Remove("a"))

	accounts, err := ext.Accounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestExtensionNetworkVersion(t *testing.T) {
	ext, _ := newExtension(t)
	v, err := ext.NetworkVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4", v)

	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	perms := wallet.NewPermissions(filepath.Join(t.TempDir(), "p.json"))

	offline := wallet.NewExtension(mgr, perms, nil)
	_, err = offline.NetworkVersion(context.Background())
	assert.ErrorIs(t, err, wallet.ErrNoChainReader)

	broken := wallet.NewExtension(mgr, perms, fixedChain{err: errors.New("dial tcp: refused")})
	_, err = broken.NetworkVersion(context.Background())
	assert.ErrorContains(t, err, "refused")
}

func TestExtensionSigner(t *testing.T) {
	ext, mgr := newExtension(t)
	ctx := context.Background()
	_, err := mgr.AddWithKey("mage", testPrivKeyHex)
	require.NoError(t, err)

	_, err = ext.Signer(ctx, testSignerAddr)
	assert.ErrorIs(t, err, wallet.ErrNotPermitted)

	_, err = ext.RequestAccounts(ctx)
	require.NoError(t, err)

	signer, err := ext.Signer(ctx, testSignerAddr)
	require.NoError(t, err)
	assert.Equal(t, testSignerAddr, signer.Address().Hex())
}

func TestExtensionDisconnect(t *testing.T) {
	ext, mgr := newExtension(t)
	ctx := context.Background()
	require.NoError(t, mgr.Add("watcher", testSignerAddr))

	_, err := ext.RequestAccounts(ctx)
	require.NoError(t, err)
	require.NoError(t, ext.Disconnect())

	accounts, err := ext.Accounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}
