package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bomkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
store:
  driver: sqlite
  dsn: /tmp/bomkit.db
inventory:
  reconcile_interval: 1m
log:
  level: debug
  format: json
http:
  addr: ":9090"
notify:
  token: secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/bomkit.db", cfg.Store.DSN)
	assert.Equal(t, time.Minute, cfg.Inventory.ReconcileInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "release", cfg.HTTP.Mode, "unset keys keep their defaults")
	assert.Equal(t, "secret", cfg.Notify.Token)
	assert.Equal(t, Default().Notify.WebhookURL, cfg.Notify.WebhookURL)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	t.Setenv("BOMKIT_LOG_LEVEL", "warn")
	t.Setenv("BOMKIT_HTTP_ADDR", ":7000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, ":7000", cfg.HTTP.Addr)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config file")
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"sqlite with dsn", func(c *Config) { c.Store = StoreConfig{Driver: "sqlite", DSN: "x.db"} }, false},
		{"sqlite without dsn", func(c *Config) { c.Store = StoreConfig{Driver: "sqlite"} }, true},
		{"unknown driver", func(c *Config) { c.Store.Driver = "postgres" }, true},
		{"negative interval", func(c *Config) { c.Inventory.ReconcileInterval = -time.Second }, true},
		{"disabled interval", func(c *Config) { c.Inventory.ReconcileInterval = 0 }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Errorf("Expected an error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}
