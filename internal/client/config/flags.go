package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/uploadhaven/internal/flagx"
)

// Flags lists every flag owned by this package, including the config file
// flag, so callers can strip them with flagx.RemoveArgs before handing the
// rest of the command line to the CLI.
var Flags = []string{
	"-c", "-config", "--c", "--config",
	"-a", "--a", "-server", "--server",
	"-share-base", "--share-base",
	"-timeout", "--timeout",
	"-log-level", "--log-level",
	"-log-backend", "--log-backend",
}

// parseFlags overlays cfg with the flags found in args. Flags it does not
// know are ignored; the file flag is accepted and skipped.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, Flags)

	fs := flag.NewFlagSet("uploadhaven", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var file string
	fs.StringVar(&file, "c", "", "config file")
	fs.StringVar(&file, "config", "", "config file")
	fs.StringVar(&cfg.ServerEndpoint, "a", cfg.ServerEndpoint, "storage server URL")
	fs.StringVar(&cfg.ServerEndpoint, "server", cfg.ServerEndpoint, "storage server URL")
	fs.StringVar(&cfg.ShareBaseURL, "share-base", cfg.ShareBaseURL, "base URL for share links")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "per-request timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogBackend, "log-backend", cfg.LogBackend, "log backend (slog or logrus)")

	return fs.Parse(args)
}
