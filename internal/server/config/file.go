package config

import (
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/flagx"
	"github.com/dmitrijs2005/uploadhaven/internal/timex"
)

// fileConfig is the on-disk shape. Pointers tell a missing key apart from
// a zero value.
type fileConfig struct {
	ListenAddr      *string         `json:"listen_addr" yaml:"listen_addr"`
	DatabaseDSN     *string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey       *string         `json:"secret_key" yaml:"secret_key"`
	TokenTTL        *timex.Duration `json:"token_ttl" yaml:"token_ttl"`
	BlobBackend     *string         `json:"blob_backend" yaml:"blob_backend"`
	BadgerDir       *string         `json:"badger_dir" yaml:"badger_dir"`
	S3RootUser      *string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword  *string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket        *string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region        *string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint  *string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3UsePathStyle  *bool           `json:"s3_use_path_style" yaml:"s3_use_path_style"`
	MaxUploadSize   *int64          `json:"max_upload_size" yaml:"max_upload_size"`
	DefaultExpiry   *timex.Duration `json:"default_expiry" yaml:"default_expiry"`
	MaxExpiry       *timex.Duration `json:"max_expiry" yaml:"max_expiry"`
	SweepInterval   *timex.Duration `json:"sweep_interval" yaml:"sweep_interval"`
	SweepBatch      *int            `json:"sweep_batch" yaml:"sweep_batch"`
	ShutdownTimeout *timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel        *string         `json:"log_level" yaml:"log_level"`
	LogBackend      *string         `json:"log_backend" yaml:"log_backend"`
	TracingEnabled  *bool           `json:"tracing_enabled" yaml:"tracing_enabled"`
	MetricsEnabled  *bool           `json:"metrics_enabled" yaml:"metrics_enabled"`
}

func parseFile(cfg *Config, path string) error {
	var fc fileConfig
	if err := flagx.DecodeConfigFile(path, &fc); err != nil {
		return err
	}

	set(&cfg.ListenAddr, fc.ListenAddr)
	set(&cfg.DatabaseDSN, fc.DatabaseDSN)
	set(&cfg.SecretKey, fc.SecretKey)
	setDuration(&cfg.TokenTTL, fc.TokenTTL)
	set(&cfg.BlobBackend, fc.BlobBackend)
	set(&cfg.BadgerDir, fc.BadgerDir)
	set(&cfg.S3RootUser, fc.S3RootUser)
	set(&cfg.S3RootPassword, fc.S3RootPassword)
	set(&cfg.S3Bucket, fc.S3Bucket)
	set(&cfg.S3Region, fc.S3Region)
	set(&cfg.S3BaseEndpoint, fc.S3BaseEndpoint)
	set(&cfg.S3UsePathStyle, fc.S3UsePathStyle)
	set(&cfg.MaxUploadSize, fc.MaxUploadSize)
	setDuration(&cfg.DefaultExpiry, fc.DefaultExpiry)
	setDuration(&cfg.MaxExpiry, fc.MaxExpiry)
	setDuration(&cfg.SweepInterval, fc.SweepInterval)
	set(&cfg.SweepBatch, fc.SweepBatch)
	setDuration(&cfg.ShutdownTimeout, fc.ShutdownTimeout)
	set(&cfg.LogLevel, fc.LogLevel)
	set(&cfg.LogBackend, fc.LogBackend)
	set(&cfg.TracingEnabled, fc.TracingEnabled)
	set(&cfg.MetricsEnabled, fc.MetricsEnabled)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
