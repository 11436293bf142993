package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/flagx"
)

// Config holds runtime settings for the UploadHaven server.
//
// An empty DatabaseDSN keeps upload records in memory. An empty SecretKey
// makes the server generate a random one at startup, which invalidates
// outstanding download tokens on restart.
type Config struct {
	ListenAddr      string
	DatabaseDSN     string
	SecretKey       string
	TokenTTL        time.Duration
	BlobBackend     string
	BadgerDir       string
	S3RootUser      string
	S3RootPassword  string
	S3Bucket        string
	S3Region        string
	S3BaseEndpoint  string
	S3UsePathStyle  bool
	MaxUploadSize   int64
	DefaultExpiry   time.Duration
	MaxExpiry       time.Duration
	SweepInterval   time.Duration
	SweepBatch      int
	ShutdownTimeout time.Duration
	LogLevel        string
	LogBackend      string
	TracingEnabled  bool
	MetricsEnabled  bool
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = ""
	c.TokenTTL = 5 * time.Minute
	c.BlobBackend = "memory"
	c.BadgerDir = "data/blobs"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "uploadhaven"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3UsePathStyle = true
	c.MaxUploadSize = 101 << 20
	c.DefaultExpiry = 24 * time.Hour
	c.MaxExpiry = 30 * 24 * time.Hour
	c.SweepInterval = time.Minute
	c.SweepBatch = 100
	c.ShutdownTimeout = 10 * time.Second
	c.LogLevel = "info"
	c.LogBackend = "slog"
	c.TracingEnabled = false
	c.MetricsEnabled = true
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.ListenAddr == "":
		return fmt.Errorf("listen address is empty")
	case c.MaxUploadSize <= 0:
		return fmt.Errorf("max upload size must be positive")
	case c.DefaultExpiry <= 0 || c.MaxExpiry < c.DefaultExpiry:
		return fmt.Errorf("expiry window %v..%v is invalid", c.DefaultExpiry, c.MaxExpiry)
	case c.TokenTTL <= 0:
		return fmt.Errorf("token ttl must be positive")
	case c.SweepInterval <= 0 || c.SweepBatch <= 0:
		return fmt.Errorf("sweeper interval and batch must be positive")
	}
	return nil
}

// LoadConfig builds a Config from defaults, then the config file named in
// args, then the flags in args.
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
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
