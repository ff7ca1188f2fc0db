package config

import "fmt"

// Validate checks the configuration for consistency.
func Validate(c *Config) error {
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen cannot be empty")
	}

	switch c.Storage.Backend {
	case "pebble", "leveldb":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for backend %q", c.Storage.Backend)
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage.backend %q (supported: pebble, leveldb, memory)", c.Storage.Backend)
	}
	if c.Storage.CacheSize < 0 {
		return fmt.Errorf("storage.cache_size cannot be negative")
	}

	switch c.History.Driver {
	case "":
	case "sqlite", "postgres":
		if c.History.DSN == "" {
			return fmt.Errorf("history.dsn is required for driver %q", c.History.Driver)
		}
	default:
		return fmt.Errorf("unknown history.driver %q (supported: sqlite, postgres)", c.History.Driver)
	}

	if c.Ledger.FeeBps >= 10_000 {
		return fmt.Errorf("ledger.fee_bps must be below 10000, got %d", c.Ledger.FeeBps)
	}

	if _, err := c.GenesisAccountIDs(); err != nil {
		return err
	}
	return nil
}
