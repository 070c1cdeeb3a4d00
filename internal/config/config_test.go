package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("got %+v want defaults", cfg)
	}

	cfg, err = Load("")
	if err != nil || cfg != Default() {
		t.Fatalf("empty path: got %+v, %v", cfg, err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
log_level: debug
log_format: json
server:
  address: ":9000"
  read_timeout: 5s
  cache_size: 8
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Fatalf("logging: got %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Server.Address != ":9000" {
		t.Fatalf("address: got %q want %q", cfg.Server.Address, ":9000")
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("read timeout: got %s want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.CacheSize != 8 {
		t.Fatalf("cache size: got %d want 8", cfg.Server.CacheSize)
	}
	// Untouched keys keep their defaults.
	if cfg.MaxFileSize != Default().MaxFileSize || cfg.Server.RateBurst != Default().Server.RateBurst {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		body string
		want string
	}{
		{"log_level: loud\n", "log level"},
		{"log_format: xml\n", "log format"},
		{"max_file_size: -1\n", "max_file_size"},
		{"server:\n  cache_size: 0\n", "cache_size"},
		{"server:\n  rate_limit: -2\n", "rate_limit"},
		{"server: [\n", "parse config"},
	}
	for _, tc := range tests {
		_, err := Load(writeConfig(t, tc.body))
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("body %q: got %v want error containing %q", tc.body, err, tc.want)
		}
	}
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if !strings.HasSuffix(Path(), filepath.Join("typelib", "config.yaml")) && Path() != "" {
		t.Fatalf("unexpected config path %q", Path())
	}
}
