// Package config loads the daemon configuration from a TOML file,
// environment variables and built-in defaults.
package config

import (
	"fmt"

	"github.com/bondledger/bondmarketd/internal/codec/addresscodec"
)

// Config is the complete daemon configuration.
type Config struct {
	Server  ServerConfig  `toml:"server" mapstructure:"server"`
	Storage StorageConfig `toml:"storage" mapstructure:"storage"`
	History HistoryConfig `toml:"history" mapstructure:"history"`
	Ledger  LedgerConfig  `toml:"ledger" mapstructure:"ledger"`
	Genesis GenesisConfig `toml:"genesis" mapstructure:"genesis"`

	configPath string `toml:"-" mapstructure:"-"`
}

// ServerConfig configures the RPC listener.
type ServerConfig struct {
	// Listen is the address the HTTP and websocket server binds to.
	Listen string `toml:"listen" mapstructure:"listen"`
}

// StorageConfig configures the ledger state store.
type StorageConfig struct {
	// Backend selects the key-value store: pebble, leveldb or memory.
	Backend string `toml:"backend" mapstructure:"backend"`

	// Path is the on-disk database directory. Ignored for memory.
	Path string `toml:"path" mapstructure:"path"`

	// CacheSize is the node cache capacity in entries. Zero selects
	// the default.
	CacheSize int `toml:"cache_size" mapstructure:"cache_size"`
}

// HistoryConfig configures the relational history store. An empty
// driver disables history.
type HistoryConfig struct {
	// Driver selects the SQL driver: sqlite or postgres.
	Driver string `toml:"driver" mapstructure:"driver"`

	// DSN is the driver-specific data source name.
	DSN string `toml:"dsn" mapstructure:"dsn"`
}

// LedgerConfig configures transaction processing.
type LedgerConfig struct {
	// FeeBps is the swap fee in basis points. Zero selects the
	// default of 30.
	FeeBps uint16 `toml:"fee_bps" mapstructure:"fee_bps"`
}

// GenesisConfig lists accounts funded at first startup.
type GenesisConfig struct {
	Accounts []string `toml:"accounts" mapstructure:"accounts"`
}

// GetConfigPath returns the path the configuration was loaded from,
// empty when only defaults and environment were used.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// GenesisAccountIDs decodes the configured genesis addresses.
func (c *Config) GenesisAccountIDs() ([][20]byte, error) {
	ids := make([][20]byte, 0, len(c.Genesis.Accounts))
	for _, addr := range c.Genesis.Accounts {
		id, err := addresscodec.DecodeAccountID(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid genesis account %q: %w", addr, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
