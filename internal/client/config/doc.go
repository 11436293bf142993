// Package config loads runtime configuration for the UploadHaven CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     .yaml/.yml are YAML, anything else is JSON. Unknown keys are an error.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a, -server string       base URL of the storage server
//	-share-base string       base URL put into share links
//	-timeout duration        per-request timeout
//	-log-level string        debug, info, warn or error
//	-log-backend string      slog or logrus
//
// # File schema
//
// Durations are either strings like "30s" or integer nanoseconds:
//
//	server_endpoint: http://127.0.0.1:8080
//	share_base_url: https://share.example.com
//	request_timeout: 30s
//	max_file_size: 104857600
//	default_expiry: 24h
//	max_expiry: 720h
//	iterations: 600000
//	algorithm: AES256-GCM
//	retry_attempts: 3
//	retry_base_delay: 200ms
//	log_level: info
//	log_backend: slog
//
// Keys missing from the file keep their defaults.
package config
