package config

// Config holds all magi configuration.
type Config struct {
	Network         string   `json:"network"           mapstructure:"network"`
	RPCURLs         []string `json:"rpc_urls"          mapstructure:"rpc_urls"`      // overrides the network's public RPCs
	RPCAlgorithm    string   `json:"rpc_algorithm"     mapstructure:"rpc_algorithm"` // "fastest" | "round-robin" | "failover"
	ContractAddress string   `json:"contract_address"  mapstructure:"contract_address"`
	RequiredChainID string   `json:"required_chain_id" mapstructure:"required_chain_id"`
	Capacity        uint64   `json:"capacity"          mapstructure:"capacity"`
	DefaultWallet   string   `json:"default_wallet"    mapstructure:"default_wallet"`
	ABIPath         string   `json:"abi_path"          mapstructure:"abi_path"` // empty = embedded MyEpicNFT artifact
	MarketplaceURL  string   `json:"marketplace_url"   mapstructure:"marketplace_url"`
	CollectionURL   string   `json:"collection_url"    mapstructure:"collection_url"`
	TwitterHandle   string   `json:"twitter_handle"    mapstructure:"twitter_handle"`
	PollInterval    int      `json:"poll_interval"     mapstructure:"poll_interval"` // seconds
	LogLevel        string   `json:"log_level"         mapstructure:"log_level"`
	LogJSON         bool     `json:"log_json"          mapstructure:"log_json"`
	LogFile         string   `json:"log_file"          mapstructure:"log_file"`

	// internal: config dir path used for Save()
	configDir string
}
