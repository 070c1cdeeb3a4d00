// Package config loads the typelib configuration file
// (~/.config/typelib/config.yaml).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/samcharles93/typelib/internal/logger"
)

// Config is the on-disk configuration. Zero values in the file leave the
// defaults in place.
type Config struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	MaxFileSize int64  `yaml:"max_file_size"`

	Server Server `yaml:"server"`
}

// Server configures the HTTP validation service.
type Server struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	RateLimit    float64       `yaml:"rate_limit"`
	RateBurst    int           `yaml:"rate_burst"`
	CacheSize    int           `yaml:"cache_size"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:    "info",
		LogFormat:   logger.FormatPretty,
		MaxFileSize: 64 << 20,
		Server: Server{
			Address:      "127.0.0.1:8080",
			ReadTimeout:  30 * time.Second,
			MaxBodyBytes: 16 << 20,
			RateLimit:    20,
			RateBurst:    40,
			CacheSize:    256,
		},
	}
}

// Path is the default config file location, or "" when no config
// directory can be determined.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "typelib", "config.yaml")
}

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values no component can run with.
func (c Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "", logger.FormatPretty, logger.FormatJSON, logger.FormatText:
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize)
	}
	s := c.Server
	switch {
	case s.Address == "":
		return errors.New("server.address must be set")
	case s.ReadTimeout <= 0:
		return fmt.Errorf("server.read_timeout must be positive, got %s", s.ReadTimeout)
	case s.MaxBodyBytes <= 0:
		return fmt.Errorf("server.max_body_bytes must be positive, got %d", s.MaxBodyBytes)
	case s.RateLimit < 0:
		return fmt.Errorf("server.rate_limit must not be negative, got %g", s.RateLimit)
	case s.RateLimit > 0 && s.RateBurst < 1:
		return fmt.Errorf("server.rate_burst must be at least 1, got %d", s.RateBurst)
	case s.CacheSize < 1:
		return fmt.Errorf("server.cache_size must be at least 1, got %d", s.CacheSize)
	}
	return nil
}
