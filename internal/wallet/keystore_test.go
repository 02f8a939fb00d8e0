package wallet

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileKeyring returns a Keyring on the file backend in a temp directory,
// so tests never touch the OS keychain.
func fileKeyring(t *testing.T) *Keyring {
	t.Helper()
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      "magi-test",
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: keyring.FixedStringPrompt("testpass"),
	})
	require.NoError(t, err)
	return &Keyring{ring: ring}
}

func TestNormaliseHexKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0xabc123", "abc123"},
		{"0Xabc123", "abc123"},
		{"abc123", "abc123"},
		{"  0xabc  ", "abc"},
		{"0x", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normaliseHexKey(tt.in), tt.in)
	}
}

func TestKeyringStoreRetrieveDelete(t *testing.T) {
	ks := fileKeyring(t)

	ref, err := ks.Store("mage", "0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, "magi.mage", ref)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	assert.NoError(t, ks.Delete(ref), "deleting a missing key is not an error")
}

func TestMemKeyStore(t *testing.T) {
	ks := NewMemKeyStore()

	ref, err := ks.Store("a", "0x01")
	require.NoError(t, err)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "01", got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
