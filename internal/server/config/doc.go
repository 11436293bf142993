// Package config loads runtime configuration for the UploadHaven storage
// server.
//
// Values come from built-in defaults, then an optional JSON or YAML file
// named with -c/-config, then command-line flags. Later sources win.
//
// Supported flags
//
//	-a string             listen address (e.g. ":8080")
//	-d string             PostgreSQL DSN; empty keeps records in memory
//	-s string             HMAC secret for download tokens
//	-blob string          blob backend: s3, badger or memory
//	-badger-dir string    badger data directory
//	-s3-bucket string     S3 bucket
//	-s3-region string     S3 region
//	-s3-endpoint string   S3 base endpoint (MinIO etc.)
//	-s3-user string       S3 access key
//	-s3-password string   S3 secret key
//	-max-upload int       largest accepted ciphertext, bytes
//	-max-expiry duration  upper bound on requested expiry
//	-sweep duration       expiry sweeper interval
//	-log-level string     debug, info, warn or error
//	-log-backend string   slog or logrus
//	-trace                export request spans to stdout
//
// # File schema
//
//	listen_addr: ":8080"
//	database_dsn: postgres://uploadhaven:secret@db:5432/uploadhaven?sslmode=disable
//	secret_key: change-me
//	token_ttl: 5m
//	blob_backend: s3
//	badger_dir: /var/lib/uploadhaven
//	s3_root_user: minio
//	s3_root_password: minio123
//	s3_bucket: uploadhaven
//	s3_region: us-east-1
//	s3_base_endpoint: http://minio:9000
//	s3_use_path_style: true
//	max_upload_size: 105906176
//	default_expiry: 24h
//	max_expiry: 720h
//	sweep_interval: 1m
//	sweep_batch: 100
//	shutdown_timeout: 10s
//	log_level: info
//	log_backend: slog
//	tracing_enabled: false
//	metrics_enabled: true
package config
