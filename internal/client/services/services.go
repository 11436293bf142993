package services

import (
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/client/client"
	"github.com/dmitrijs2005/uploadhaven/internal/compat"
	"github.com/dmitrijs2005/uploadhaven/internal/cryptox"
	"github.com/dmitrijs2005/uploadhaven/internal/logging"
	"github.com/dmitrijs2005/uploadhaven/internal/metrics"
	"github.com/dmitrijs2005/uploadhaven/internal/netx"
)

// Settings are the per-installation knobs shared by both flows.
type Settings struct {
	ShareBaseURL  string
	MaxFileSize   int64
	DefaultExpiry time.Duration
	MaxExpiry     time.Duration
	Iterations    int
	Algorithm     string
	Retry         netx.Policy
}

// DefaultSettings are used for zero fields.
var DefaultSettings = Settings{
	ShareBaseURL:  "http://127.0.0.1:8080",
	MaxFileSize:   100 << 20,
	DefaultExpiry: 24 * time.Hour,
	MaxExpiry:     30 * 24 * time.Hour,
	Iterations:    cryptox.DefaultIterations,
	Algorithm:     cryptox.DefaultAlgorithm,
	Retry:         netx.DefaultPolicy,
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings
	if s.ShareBaseURL == "" {
		s.ShareBaseURL = d.ShareBaseURL
	}
	if s.MaxFileSize <= 0 {
		s.MaxFileSize = d.MaxFileSize
	}
	if s.DefaultExpiry <= 0 {
		s.DefaultExpiry = d.DefaultExpiry
	}
	if s.MaxExpiry <= 0 {
		s.MaxExpiry = d.MaxExpiry
	}
	if s.Iterations == 0 {
		s.Iterations = d.Iterations
	}
	if s.Algorithm == "" {
		s.Algorithm = d.Algorithm
	}
	if s.Retry.Attempts == 0 {
		s.Retry = d.Retry
	}
	return s
}

// deps are shared by Uploader and Downloader.
type deps struct {
	storage   client.Storage
	guard     *compat.Guard
	settings  Settings
	log       logging.Logger
	metrics   *metrics.Flows
	observers []Observer
	now       func() time.Time
}

// Option configures an Uploader or a Downloader.
type Option func(*deps)

func WithLogger(l logging.Logger) Option {
	return func(d *deps) { d.log = l }
}

func WithMetrics(m *metrics.Flows) Option {
	return func(d *deps) { d.metrics = m }
}

// WithObserver adds o to the observers of every run.
func WithObserver(o Observer) Option {
	return func(d *deps) { d.observers = append(d.observers, o) }
}

// WithGuard replaces the process-wide compatibility guard.
func WithGuard(g *compat.Guard) Option {
	return func(d *deps) { d.guard = g }
}

func withClock(now func() time.Time) Option {
	return func(d *deps) { d.now = now }
}

func newDeps(storage client.Storage, settings Settings, opts []Option) *deps {
	d := &deps{
		storage:  storage,
		settings: settings.withDefaults(),
		log:      logging.Discard(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(d)
	}
	if d.guard == nil {
		d.guard = compat.Default()
	}
	return d
}
