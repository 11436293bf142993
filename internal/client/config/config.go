package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/flagx"
)

// Config holds runtime settings for the UploadHaven CLI.
type Config struct {
	ServerEndpoint string
	ShareBaseURL   string
	RequestTimeout time.Duration
	MaxFileSize    int64
	DefaultExpiry  time.Duration
	MaxExpiry      time.Duration
	Iterations     int
	Algorithm      string
	RetryAttempts  uint64
	RetryBaseDelay time.Duration
	LogLevel       string
	LogBackend     string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpoint = "http://127.0.0.1:8080"
	c.ShareBaseURL = ""
	c.RequestTimeout = 30 * time.Second
	c.MaxFileSize = 100 << 20
	c.DefaultExpiry = 24 * time.Hour
	c.MaxExpiry = 30 * 24 * time.Hour
	c.Iterations = 600_000
	c.Algorithm = "AES256-GCM"
	c.RetryAttempts = 3
	c.RetryBaseDelay = 200 * time.Millisecond
	c.LogLevel = "warn"
	c.LogBackend = "slog"
}

// ShareBase is the base URL for share links; it falls back to the server
// endpoint when not set.
func (c *Config) ShareBase() string {
	if c.ShareBaseURL != "" {
		return c.ShareBaseURL
	}
	return c.ServerEndpoint
}

// LoadConfig builds a Config from defaults, then the config file named in
// args, then the flags in args. Later sources take precedence.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagx.ConfigFileFlag(args); path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}
