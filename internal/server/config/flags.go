package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/uploadhaven/internal/flagx"
)

var knownFlags = []string{
	"-c", "-config", "-a", "-d", "-s", "-blob", "-badger-dir",
	"-s3-bucket", "-s3-region", "-s3-endpoint", "-s3-user", "-s3-password",
	"-max-upload", "-max-expiry", "-sweep", "-log-level", "-log-backend", "-trace",
}

func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("uploadhaven-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var file string
	fs.StringVar(&file, "c", "", "config file")
	fs.StringVar(&file, "config", "", "config file")
	fs.StringVar(&cfg.ListenAddr, "a", cfg.ListenAddr, "address and port to run server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	fs.StringVar(&cfg.BlobBackend, "blob", cfg.BlobBackend, "blob backend")
	fs.StringVar(&cfg.BadgerDir, "badger-dir", cfg.BadgerDir, "badger data directory")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "s3-endpoint", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.S3RootUser, "s3-user", cfg.S3RootUser, "S3 access key")
	fs.StringVar(&cfg.S3RootPassword, "s3-password", cfg.S3RootPassword, "S3 secret key")
	fs.Int64Var(&cfg.MaxUploadSize, "max-upload", cfg.MaxUploadSize, "max ciphertext size in bytes")
	fs.DurationVar(&cfg.MaxExpiry, "max-expiry", cfg.MaxExpiry, "max expiry")
	fs.DurationVar(&cfg.SweepInterval, "sweep", cfg.SweepInterval, "expiry sweep interval")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogBackend, "log-backend", cfg.LogBackend, "log backend")
	fs.BoolVar(&cfg.TracingEnabled, "trace", cfg.TracingEnabled, "export spans to stdout")

	return fs.Parse(args)
}
