package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Sync.PageSize)
	assert.Equal(t, uint(3), cfg.Sync.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Sync.Timeout)
	assert.Equal(t, "dashboard", cfg.UI.DefaultTab)
	assert.Equal(t, int64(1), cfg.Server.SiteID)
	assert.False(t, cfg.IsConfigured())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_ReadsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `server:
  url: https://shop.example.com
  consumer_key: ck_abc
  consumer_secret: cs_def
sync:
  page_size: 40
  timeout: 5s
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("WOOTERM_SYNC_PAGE_SIZE", "50")
	t.Setenv("WOOTERM_TELEMETRY_METRICS_ADDR", "127.0.0.1:9464")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com", cfg.Server.URL)
	assert.True(t, cfg.IsConfigured())
	assert.Equal(t, 50, cfg.Sync.PageSize)
	assert.Equal(t, 5*time.Second, cfg.Sync.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "127.0.0.1:9464", cfg.Telemetry.MetricsAddr)
	assert.Equal(t, "week", cfg.UI.ReportPeriod)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o600))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	cfg := DefaultConfig()
	cfg.Server.URL = "http://localhost:8080"
	cfg.Server.ConsumerKey = "ck_1"
	cfg.Server.ConsumerSecret = "cs_1"
	cfg.Sync.PageSize = 10
	cfg.Cache.Disabled = true

	require.NoError(t, SaveConfig(cfg, dir))

	info, err := os.Stat(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg.Server, loaded.Server)
	assert.Equal(t, 10, loaded.Sync.PageSize)
	assert.Equal(t, "", loaded.CacheDir())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "bad scheme", mutate: func(c *Config) { c.Server.URL = "ftp://shop" }, wantErr: "server.url"},
		{name: "missing host", mutate: func(c *Config) { c.Server.URL = "https://" }, wantErr: "server.url"},
		{name: "page size zero", mutate: func(c *Config) { c.Sync.PageSize = 0 }, wantErr: "sync.page_size"},
		{name: "page size too big", mutate: func(c *Config) { c.Sync.PageSize = 101 }, wantErr: "sync.page_size"},
		{name: "unknown tab", mutate: func(c *Config) { c.UI.DefaultTab = "coupons" }, wantErr: "ui.default_tab"},
		{name: "unknown period", mutate: func(c *Config) { c.UI.ReportPeriod = "decade" }, wantErr: "ui.report_period"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "logs", "w.log"), expandHome("~/logs/w.log"))
	assert.Equal(t, "/var/log/w.log", expandHome("/var/log/w.log"))
}
