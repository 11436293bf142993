package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	BackendSlog   = "slog"
	BackendLogrus = "logrus"
)

// Options select and shape a backend. JSON switches both backends to
// machine-readable output.
type Options struct {
	Backend string
	Level   string
	JSON    bool
}

// New builds a Logger writing to w.
func New(w io.Writer, opts Options) (Logger, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendSlog:
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(levelOrDefault(opts.Level))); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		return NewSlogLogger(slog.New(newSlogHandler(w, lvl, opts.JSON))), nil

	case BackendLogrus:
		lvl, err := logrus.ParseLevel(levelOrDefault(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		l := logrus.New()
		l.SetOutput(w)
		l.SetLevel(lvl)
		if opts.JSON {
			l.SetFormatter(&logrus.JSONFormatter{})
		}
		return NewLogrusLogger(l), nil

	default:
		return nil, fmt.Errorf("unknown log backend %q", opts.Backend)
	}
}

func levelOrDefault(l string) string {
	if l == "" {
		return "info"
	}
	return l
}

// Discard drops everything; handy for tests and quiet CLI runs.
func Discard() Logger {
	return NewSlogLogger(nil)
}
