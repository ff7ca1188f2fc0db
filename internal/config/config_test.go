package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bondledger/bondmarketd/internal/config"
	testenv "github.com/bondledger/bondmarketd/internal/testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bondmarketd.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:5005", cfg.Server.Listen)
	require.Equal(t, "pebble", cfg.Storage.Backend)
	require.Equal(t, "sqlite", cfg.History.Driver)
	require.Zero(t, cfg.Ledger.FeeBps)
	require.Empty(t, cfg.Genesis.Accounts)
}

func TestLoadFile(t *testing.T) {
	admin := testenv.NewAccount("admin")
	path := writeConfig(t, `
[server]
listen = "0.0.0.0:8080"

[storage]
backend = "memory"

[history]
driver = ""

[ledger]
fee_bps = 50

[genesis]
accounts = ["`+admin.Address+`"]
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8080", cfg.Server.Listen)
	require.Equal(t, "memory", cfg.Storage.Backend)
	require.Empty(t, cfg.History.Driver)
	require.Equal(t, uint16(50), cfg.Ledger.FeeBps)
	require.Equal(t, path, cfg.GetConfigPath())

	ids, err := cfg.GenesisAccountIDs()
	require.NoError(t, err)
	require.Equal(t, [][20]byte{admin.ID}, ids)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		message string
	}{
		{"empty listen", func(c *config.Config) { c.Server.Listen = "" }, "server.listen"},
		{"unknown backend", func(c *config.Config) { c.Storage.Backend = "rocksdb" }, "storage.backend"},
		{"missing path", func(c *config.Config) { c.Storage.Path = "" }, "storage.path"},
		{"unknown driver", func(c *config.Config) { c.History.Driver = "oracle" }, "history.driver"},
		{"missing dsn", func(c *config.Config) { c.History.DSN = "" }, "history.dsn"},
		{"fee too high", func(c *config.Config) { c.Ledger.FeeBps = 10_000 }, "fee_bps"},
		{"bad genesis address", func(c *config.Config) { c.Genesis.Accounts = []string{"not-an-address"} }, "genesis"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := config.Load("")
			require.NoError(t, err)
			tc.mutate(cfg)
			err = config.Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.message)
		})
	}
}
