package config

import (
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/flagx"
	"github.com/dmitrijs2005/uploadhaven/internal/timex"
)

// fileConfig is a DTO used only for decoding config files. Pointers tell a
// missing key apart from a zero value.
type fileConfig struct {
	ServerEndpoint *string         `json:"server_endpoint" yaml:"server_endpoint"`
	ShareBaseURL   *string         `json:"share_base_url" yaml:"share_base_url"`
	RequestTimeout *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	MaxFileSize    *int64          `json:"max_file_size" yaml:"max_file_size"`
	DefaultExpiry  *timex.Duration `json:"default_expiry" yaml:"default_expiry"`
	MaxExpiry      *timex.Duration `json:"max_expiry" yaml:"max_expiry"`
	Iterations     *int            `json:"iterations" yaml:"iterations"`
	Algorithm      *string         `json:"algorithm" yaml:"algorithm"`
	RetryAttempts  *uint64         `json:"retry_attempts" yaml:"retry_attempts"`
	RetryBaseDelay *timex.Duration `json:"retry_base_delay" yaml:"retry_base_delay"`
	LogLevel       *string         `json:"log_level" yaml:"log_level"`
	LogBackend     *string         `json:"log_backend" yaml:"log_backend"`
}

func parseFile(cfg *Config, path string) error {
	var fc fileConfig
	if err := flagx.DecodeConfigFile(path, &fc); err != nil {
		return err
	}

	setString(&cfg.ServerEndpoint, fc.ServerEndpoint)
	setString(&cfg.ShareBaseURL, fc.ShareBaseURL)
	setDuration(&cfg.RequestTimeout, fc.RequestTimeout)
	if fc.MaxFileSize != nil {
		cfg.MaxFileSize = *fc.MaxFileSize
	}
	setDuration(&cfg.DefaultExpiry, fc.DefaultExpiry)
	setDuration(&cfg.MaxExpiry, fc.MaxExpiry)
	if fc.Iterations != nil {
		cfg.Iterations = *fc.Iterations
	}
	setString(&cfg.Algorithm, fc.Algorithm)
	if fc.RetryAttempts != nil {
		cfg.RetryAttempts = *fc.RetryAttempts
	}
	setDuration(&cfg.RetryBaseDelay, fc.RetryBaseDelay)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogBackend, fc.LogBackend)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
