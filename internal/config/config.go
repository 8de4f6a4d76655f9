// Package config loads stipend's TOML configuration and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment overrides, applied after the config file.
const (
	EnvDB         = "STIPEND_DB"
	EnvTheme      = "STIPEND_THEME"
	EnvDaemonAddr = "STIPEND_DAEMON_ADDR"
)

// Config holds all stipend configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Appearance AppearanceConfig `toml:"appearance"`
	Payment    PaymentConfig    `toml:"payment"`
	Storage    StorageConfig    `toml:"storage"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// GeneralConfig holds display preferences.
type GeneralConfig struct {
	CurrencySymbol string `toml:"currency_symbol"`
	DefaultDays    int    `toml:"default_days"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// PaymentConfig controls payment link construction.
type PaymentConfig struct {
	Scheme string `toml:"scheme"`
}

// StorageConfig locates the ledger database. Empty means the XDG data dir.
type StorageConfig struct {
	Path string `toml:"path,omitempty"`
}

// DaemonConfig holds status daemon settings.
type DaemonConfig struct {
	Addr     string `toml:"addr"`
	Interval string `toml:"interval"`
}

// PollInterval parses Interval, falling back to 5s when it is empty or malformed.
func (d DaemonConfig) PollInterval() time.Duration {
	iv, err := time.ParseDuration(d.Interval)
	if err != nil || iv <= 0 {
		return 5 * time.Second
	}
	return iv
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			CurrencySymbol: "₹",
			DefaultDays:    7,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Payment: PaymentConfig{
			Scheme: "upi",
		},
		Daemon: DaemonConfig{
			Addr:     "127.0.0.1:8787",
			Interval: "5s",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "stipend")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "stipend")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LoadEnv reads .env from the working directory and the config dir.
// Variables already set in the process environment win.
func LoadEnv() error {
	for _, path := range []string{".env", filepath.Join(ConfigDir(), ".env")} {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied on top.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvDB)); v != "" {
		cfg.Storage.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTheme)); v != "" {
		cfg.Appearance.Theme = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDaemonAddr)); v != "" {
		cfg.Daemon.Addr = v
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
