package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvDB, "")
	t.Setenv(EnvTheme, "")
	t.Setenv(EnvDaemonAddr, "")
	return dir
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("Load = %+v, want defaults", cfg)
	}
	if Exists() {
		t.Fatal("Exists() = true before Save")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	isolate(t)

	cfg := DefaultConfig()
	cfg.General.CurrencySymbol = "$"
	cfg.General.DefaultDays = 14
	cfg.Payment.Scheme = "testpay"
	cfg.Storage.Path = "/tmp/ledger.db"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != cfg {
		t.Fatalf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "stipend", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[appearance]\ntheme = \"terminal\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Appearance.Theme != "terminal" {
		t.Errorf("theme = %q, want terminal", cfg.Appearance.Theme)
	}
	if cfg.General.CurrencySymbol != "₹" {
		t.Errorf("currency = %q, want default", cfg.General.CurrencySymbol)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvDB, "/data/other.db")
	t.Setenv(EnvTheme, "flexoki-light")
	t.Setenv(EnvDaemonAddr, ":9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Path != "/data/other.db" || cfg.Appearance.Theme != "flexoki-light" || cfg.Daemon.Addr != ":9999" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "stipend", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[general\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("Load accepted malformed TOML")
	}
}

func TestPollInterval(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"2s", 2 * time.Second},
		{"1m", time.Minute},
		{"", 5 * time.Second},
		{"soon", 5 * time.Second},
		{"-1s", 5 * time.Second},
	}
	for _, tt := range tests {
		if got := (DaemonConfig{Interval: tt.in}).PollInterval(); got != tt.want {
			t.Errorf("PollInterval(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoadEnv_DoesNotOverrideProcessEnv(t *testing.T) {
	dir := isolate(t)
	envDir := filepath.Join(dir, "stipend")
	if err := os.MkdirAll(envDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(envDir, ".env"), []byte("STIPEND_THEME=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvTheme, "from-process")

	if err := LoadEnv(); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := os.Getenv(EnvTheme); got != "from-process" {
		t.Fatalf("%s = %q, want from-process", EnvTheme, got)
	}
}
