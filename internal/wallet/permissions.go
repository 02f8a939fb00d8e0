package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Permissions records which accounts the user has allowed magi to use.
// An account stays connected across runs until it is revoked.
type Permissions struct {
	mu   sync.Mutex
	path string
}

// NewPermissions returns a permission store backed by path.
func NewPermissions(path string) *Permissions {
	return &Permissions{path: path}
}

// Granted returns the permitted addresses in grant order.
func (p *Permissions) Granted() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load()
}

// Grant permits address. Granting twice is a no-op.
func (p *Permissions) Grant(address string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	address = common.HexToAddress(address).Hex()
	granted := p.load()
	for _, a := range granted {
		if strings.EqualFold(a, address) {
			return nil
		}
	}
	return p.save(append(granted, address))
}

// Revoke removes address from the permitted set.
func (p *Permissions) Revoke(address string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	granted := p.load()
	kept := granted[:0]
	for _, a := range granted {
		if !strings.EqualFold(a, address) {
			kept = append(kept, a)
		}
	}
	return p.save(kept)
}

// RevokeAll forgets every grant by deleting the file.
func (p *Permissions) RevokeAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := os.Remove(p.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// load returns an empty slice (never nil) on any error.
func (p *Permissions) load() []string {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return []string{}
	}
	var granted []string
	if err := json.Unmarshal(data, &granted); err != nil {
		return []string{}
	}
	return granted
}

func (p *Permissions) save(granted []string) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(granted, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(p.path, data, 0o600); err != nil {
		return err
	}
	_ = os.Chmod(p.path, 0o600)
	return nil
}
