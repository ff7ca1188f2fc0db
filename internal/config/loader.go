package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration in priority order:
// 1. Built-in defaults
// 2. Configuration file (TOML), when path is non-empty
// 3. Environment variables (BONDMARKETD_ prefix)
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("BONDMARKETD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.configPath = path

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}

// setDefaults installs the built-in defaults.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen", "127.0.0.1:5005")
	v.SetDefault("storage.backend", "pebble")
	v.SetDefault("storage.path", "data/ledger")
	v.SetDefault("storage.cache_size", 0)
	v.SetDefault("history.driver", "sqlite")
	v.SetDefault("history.dsn", "data/history.db")
	v.SetDefault("ledger.fee_bps", 0)
	v.SetDefault("genesis.accounts", []string{})
}
