package chain

import (
	"errors"
	"strconv"
	"strings"
)

// ErrChainNotFound is returned when a network is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// Network holds the metadata magi needs for one EVM network.
type Network struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	ChainID        int64    `json:"chain_id"`
	NativeCurrency string   `json:"native_currency"`
	RPCs           []string `json:"rpcs"`
	Explorer       string   `json:"explorer"`
	Testnet        bool     `json:"testnet"`
}

// Registry is the network registry.
type Registry struct {
	networks []Network
	byName   map[string]*Network
	byID     map[int64]*Network
}

// NewRegistry returns the registry of supported networks.
func NewRegistry() *Registry {
	networks := allNetworks()
	r := &Registry{
		networks: networks,
		byName:   make(map[string]*Network, len(networks)),
		byID:     make(map[int64]*Network, len(networks)),
	}
	for i := range r.networks {
		n := &r.networks[i]
		r.byName[n.Name] = n
		r.byID[n.ChainID] = n
	}
	return r
}

// All returns every network in the registry.
func (r *Registry) All() []Network {
	return r.networks
}

// GetByName finds a network by its slug (e.g. "rinkeby", "sepolia").
func (r *Registry) GetByName(name string) (*Network, error) {
	n, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrChainNotFound
	}
	return n, nil
}

// GetByChainID finds a network by its numeric chain id.
func (r *Registry) GetByChainID(id int64) (*Network, error) {
	n, ok := r.byID[id]
	if !ok {
		return nil, ErrChainNotFound
	}
	return n, nil
}

// ChainIDString returns the chain id the way wallets report networkVersion.
func (n *Network) ChainIDString() string {
	return strconv.FormatInt(n.ChainID, 10)
}

// TxURL returns the explorer link for a transaction hash.
func (n *Network) TxURL(hash string) string {
	if n.Explorer == "" {
		return ""
	}
	return n.Explorer + "/tx/" + hash
}

// --- network data ---

func allNetworks() []Network {
	return []Network{
		{
			Name: "ethereum", DisplayName: "Ethereum", ChainID: 1,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://eth.llamarpc.com", "https://ethereum-rpc.publicnode.com"},
			Explorer:       "https://etherscan.io",
		},
		{
			Name: "rinkeby", DisplayName: "Rinkeby", ChainID: 4, Testnet: true,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://rpc.ankr.com/eth_rinkeby"},
			Explorer:       "https://rinkeby.etherscan.io",
		},
		{
			Name: "goerli", DisplayName: "Goerli", ChainID: 5, Testnet: true,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://rpc.ankr.com/eth_goerli"},
			Explorer:       "https://goerli.etherscan.io",
		},
		{
			Name: "sepolia", DisplayName: "Sepolia", ChainID: 11155111, Testnet: true,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://rpc.sepolia.org", "https://sepolia.gateway.tenderly.co", "wss://ethereum-sepolia-rpc.publicnode.com"},
			Explorer:       "https://sepolia.etherscan.io",
		},
		{
			Name: "polygon", DisplayName: "Polygon", ChainID: 137,
			NativeCurrency: "MATIC",
			RPCs:           []string{"https://polygon-bor-rpc.publicnode.com", "https://polygon-pokt.nodies.app"},
			Explorer:       "https://polygonscan.com",
		},
		{
			Name: "amoy", DisplayName: "Polygon Amoy", ChainID: 80002, Testnet: true,
			NativeCurrency: "MATIC",
			RPCs:           []string{"https://rpc-amoy.polygon.technology"},
			Explorer:       "https://amoy.polygonscan.com",
		},
	}
}
