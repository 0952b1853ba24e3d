// Package config loads and saves wooterm's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	appName    = "wooterm"
	envPrefix  = "WOOTERM"
	configName = "config"
	configType = "yaml"

	maxPageSize = 100
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Sync      SyncConfig      `mapstructure:"sync"`
	UI        UIConfig        `mapstructure:"ui"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

// ServerConfig holds the store connection
type ServerConfig struct {
	URL            string `mapstructure:"url"`             // Site URL, e.g. https://shop.example.com
	ConsumerKey    string `mapstructure:"consumer_key"`    // REST API key (ck_...)
	ConsumerSecret string `mapstructure:"consumer_secret"` // REST API secret (cs_...)
	SiteID         int64  `mapstructure:"site_id"`         // Local partition of the cache
}

// SyncConfig holds list synchronization settings
type SyncConfig struct {
	PageSize   int           `mapstructure:"page_size"`
	MaxRetries uint          `mapstructure:"max_retries"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	DefaultTab   string `mapstructure:"default_tab"`   // dashboard, orders, products, reviews
	ReportPeriod string `mapstructure:"report_period"` // day, week, month, year
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// TelemetryConfig holds the optional metrics endpoint
type TelemetryConfig struct {
	MetricsAddr string `mapstructure:"metrics_addr"` // empty disables the endpoint
}

// CacheConfig holds local cache configuration
type CacheConfig struct {
	Dir      string `mapstructure:"dir"`
	Disabled bool   `mapstructure:"disabled"` // keep the cache in memory only
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			SiteID: 1,
		},
		Sync: SyncConfig{
			PageSize:   25,
			MaxRetries: 3,
			Timeout:    30 * time.Second,
		},
		UI: UIConfig{
			DefaultTab:   "dashboard",
			ReportPeriod: "week",
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
		Cache: CacheConfig{
			Dir: defaultCachePath(),
		},
	}
}

func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName, appName+".log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, appName+".log")
	}
}

// DefaultConfigDir returns the default config directory for the current OS
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName, "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, "cache")
	}
}

// newViper registers every key with its default so environment
// overrides apply even when the file omits the key.
func newViper(defaults *Config) *viper.Viper {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range settings(defaults) {
		v.SetDefault(key, value)
	}
	return v
}

// settings flattens cfg into viper keys
func settings(cfg *Config) map[string]any {
	return map[string]any{
		"server.url":             cfg.Server.URL,
		"server.consumer_key":    cfg.Server.ConsumerKey,
		"server.consumer_secret": cfg.Server.ConsumerSecret,
		"server.site_id":         cfg.Server.SiteID,
		"sync.page_size":         cfg.Sync.PageSize,
		"sync.max_retries":       cfg.Sync.MaxRetries,
		"sync.timeout":           cfg.Sync.Timeout.String(),
		"ui.default_tab":         cfg.UI.DefaultTab,
		"ui.report_period":       cfg.UI.ReportPeriod,
		"logging.file":           cfg.Logging.File,
		"logging.level":          cfg.Logging.Level,
		"telemetry.metrics_addr": cfg.Telemetry.MetricsAddr,
		"cache.dir":              cfg.Cache.Dir,
		"cache.disabled":         cfg.Cache.Disabled,
	}
}

// LoadConfig loads configuration from dir (the default config directory
// when empty), a .env file in the working directory, and WOOTERM_*
// environment variables, in increasing priority.
func LoadConfig(dir string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	if dir == "" {
		dir = DefaultConfigDir()
	}
	v := newViper(DefaultConfig())
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.Logging.File = expandHome(cfg.Logging.File)
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	return cfg, nil
}

// SaveConfig writes cfg to config.yaml in dir (the default config
// directory when empty).
func SaveConfig(cfg *Config, dir string) error {
	if dir == "" {
		dir = DefaultConfigDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	for key, value := range settings(cfg) {
		v.Set(key, value)
	}

	configFile := filepath.Join(dir, configName+"."+configType)
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	// The file holds the API secret
	if err := os.Chmod(configFile, 0o600); err != nil {
		return fmt.Errorf("failed to restrict config file: %w", err)
	}
	return nil
}

// IsConfigured returns true if the store URL and credentials are set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != "" && c.Server.ConsumerKey != "" && c.Server.ConsumerSecret != ""
}

// Validate checks settings that would otherwise fail later at runtime
func (c *Config) Validate() error {
	var errs []error
	if c.Server.URL != "" {
		u, err := url.Parse(c.Server.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("server.url %q must be an http(s) URL", c.Server.URL))
		}
	}
	if c.Sync.PageSize < 1 || c.Sync.PageSize > maxPageSize {
		errs = append(errs, fmt.Errorf("sync.page_size must be between 1 and %d, got %d", maxPageSize, c.Sync.PageSize))
	}
	if c.Sync.Timeout < 0 {
		errs = append(errs, fmt.Errorf("sync.timeout must not be negative"))
	}
	switch c.UI.DefaultTab {
	case "dashboard", "orders", "products", "reviews":
	default:
		errs = append(errs, fmt.Errorf("ui.default_tab %q is not a tab", c.UI.DefaultTab))
	}
	switch c.UI.ReportPeriod {
	case "day", "week", "month", "year":
	default:
		errs = append(errs, fmt.Errorf("ui.report_period %q must be day, week, month or year", c.UI.ReportPeriod))
	}
	return errors.Join(errs...)
}

// CacheDir returns the cache directory, or "" when the cache is memory-only
func (c *Config) CacheDir() string {
	if c.Cache.Disabled {
		return ""
	}
	return c.Cache.Dir
}

// ClearCache removes all cached data
func (c *Config) ClearCache() error {
	if c.Cache.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(c.Cache.Dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
