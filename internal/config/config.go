package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

const (
	defaultNetwork     = "rinkeby"
	defaultAlgorithm   = "fastest"
	defaultContract    = "0x14304944D6B151Ba54e5E1197d09B9c36d2beF57"
	defaultChainID     = "4"
	defaultMarketplace = "https://testnets.opensea.io"
	defaultCollection  = "https://testnets.opensea.io/collection/epic-magi-titles-v2"
	defaultTwitter     = "robdrosenberg"
	defaultPoll        = 4
	defaultLogLevel    = "warn"

	configFile      = "config.json"
	walletsFile     = "wallets.json"
	permissionsFile = "permissions.json"
	rotationFile    = "rpc_rotation.json"

	envPrefix = "MAGI"
)

// ErrUnknownKey is returned by Set for keys that are not part of Config.
var ErrUnknownKey = errors.New("unknown config key")

// Load reads config from dir (or creates defaults). dir defaults to ~/.magi.
// Values are layered: defaults, then config.json, then MAGI_* env vars.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".magi")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	path := filepath.Join(dir, configFile)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.configDir = dir
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if !common.IsHexAddress(c.ContractAddress) {
		return fmt.Errorf("contract_address %q is not a hex address", c.ContractAddress)
	}
	if c.RequiredChainID == "" {
		return fmt.Errorf("required_chain_id is empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %d", c.PollInterval)
	}
	return nil
}

// Set assigns a single key from its string form. Used by `magi config set`.
func (c *Config) Set(key, value string) error {
	switch key {
	case "network":
		c.Network = value
	case "rpc_urls":
		c.RPCURLs = splitList(value)
	case "rpc_algorithm":
		switch value {
		case "fastest", "round-robin", "failover":
		default:
			return fmt.Errorf("rpc_algorithm must be fastest, round-robin or failover")
		}
		c.RPCAlgorithm = value
	case "contract_address":
		if !common.IsHexAddress(value) {
			return fmt.Errorf("%q is not a hex address", value)
		}
		c.ContractAddress = common.HexToAddress(value).Hex()
	case "required_chain_id":
		if _, err := strconv.ParseUint(value, 10, 64); err != nil {
			return fmt.Errorf("required_chain_id must be a decimal chain id: %w", err)
		}
		c.RequiredChainID = value
	case "capacity":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("capacity: %w", err)
		}
		c.Capacity = n
	case "default_wallet":
		c.DefaultWallet = value
	case "abi_path":
		c.ABIPath = value
	case "marketplace_url":
		c.MarketplaceURL = strings.TrimRight(value, "/")
	case "collection_url":
		c.CollectionURL = value
	case "twitter_handle":
		c.TwitterHandle = strings.TrimPrefix(value, "@")
	case "poll_interval":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("poll_interval must be a positive number of seconds")
		}
		c.PollInterval = n
	case "log_level":
		c.LogLevel = value
	case "log_json":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("log_json: %w", err)
		}
		c.LogJSON = b
	case "log_file":
		c.LogFile = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// Pairs returns the config as ordered key/value pairs for display.
func (c *Config) Pairs() [][2]string {
	return [][2]string{
		{"network", c.Network},
		{"rpc_urls", strings.Join(c.RPCURLs, ",")},
		{"rpc_algorithm", c.RPCAlgorithm},
		{"contract_address", c.ContractAddress},
		{"required_chain_id", c.RequiredChainID},
		{"capacity", strconv.FormatUint(c.Capacity, 10)},
		{"default_wallet", c.DefaultWallet},
		{"abi_path", c.ABIPath},
		{"marketplace_url", c.MarketplaceURL},
		{"collection_url", c.CollectionURL},
		{"twitter_handle", c.TwitterHandle},
		{"poll_interval", strconv.Itoa(c.PollInterval)},
		{"log_level", c.LogLevel},
		{"log_json", strconv.FormatBool(c.LogJSON)},
		{"log_file", c.LogFile},
	}
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath returns the path of wallets.json.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// PermissionsPath returns the path of the account permission grants.
func (c *Config) PermissionsPath() string {
	return filepath.Join(c.configDir, permissionsFile)
}

// RotationPath returns where the round-robin RPC cursor is kept between runs.
func (c *Config) RotationPath() string {
	return filepath.Join(c.configDir, rotationFile)
}

// Poll returns PollInterval as a duration.
func (c *Config) Poll() time.Duration {
	return time.Duration(c.PollInterval) * time.Second
}

// TwitterLink returns the author's profile link.
func (c *Config) TwitterLink() string {
	return "https://twitter.com/" + c.TwitterHandle
}

// --- helpers ---

func setDefaults(v *viper.Viper) {
	v.SetDefault("network", defaultNetwork)
	v.SetDefault("rpc_urls", []string{})
	v.SetDefault("rpc_algorithm", defaultAlgorithm)
	v.SetDefault("contract_address", defaultContract)
	v.SetDefault("required_chain_id", defaultChainID)
	v.SetDefault("capacity", DefaultCapacity)
	v.SetDefault("default_wallet", "")
	v.SetDefault("abi_path", "")
	v.SetDefault("marketplace_url", defaultMarketplace)
	v.SetDefault("collection_url", defaultCollection)
	v.SetDefault("twitter_handle", defaultTwitter)
	v.SetDefault("poll_interval", defaultPoll)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("log_json", false)
	v.SetDefault("log_file", "")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
