package wallet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionsEmpty(t *testing.T) {
	p := NewPermissions(filepath.Join(t.TempDir(), "permissions.json"))
	assert.Empty(t, p.Granted())
	assert.NotNil(t, p.Granted())
}

func TestPermissionsGrantOrderAndDedup(t *testing.T) {
	p := NewPermissions(filepath.Join(t.TempDir(), "nested", "permissions.json"))

	require.NoError(t, p.Grant("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"))
	require.NoError(t, p.Grant("0x0000000000000000000000000000000000000002"))
	require.NoError(t, p.Grant("0xF39FD6E51AAD88F6F4CE6AB8827279CFFFB92266"))

	assert.Equal(t, []string{
		"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		"0x0000000000000000000000000000000000000002",
	}, p.Granted())
}

func TestPermissionsRevoke(t *testing.T) {
	p := NewPermissions(filepath.Join(t.TempDir(), "permissions.json"))
	require.NoError(t, p.Grant("0x0000000000000000000000000000000000000001"))
	require.NoError(t, p.Grant("0x0000000000000000000000000000000000000002"))

	require.NoError(t, p.Revoke("0x0000000000000000000000000000000000000001"))
	assert.Equal(t, []string{"0x0000000000000000000000000000000000000002"}, p.Granted())
}

func TestPermissionsRevokeAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "permissions.json")
	p := NewPermissions(path)
	require.NoError(t, p.Grant("0x0000000000000000000000000000000000000001"))

	require.NoError(t, p.RevokeAll())
	assert.Empty(t, p.Granted())
	assert.NoFileExists(t, path)

	assert.NoError(t, p.RevokeAll(), "revoking twice is fine")
}

func TestPermissionsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "permissions.json")
	require.NoError(t, os.WriteFile(path, []byte("{garbage"), 0o600))

	p := NewPermissions(path)
	assert.Empty(t, p.Granted())
}

func TestPermissionsFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "permissions.json")
	p := NewPermissions(path)
	require.NoError(t, p.Grant("0x0000000000000000000000000000000000000001"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if info.Mode().Perm() != 0 { // Unix only
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}
