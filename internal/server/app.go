// Package server wires the storage backends, the upload service and the
// HTTP API together and runs them until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/uploadhaven/internal/logging"
	"github.com/dmitrijs2005/uploadhaven/internal/metrics"
	"github.com/dmitrijs2005/uploadhaven/internal/server/blobstore"
	"github.com/dmitrijs2005/uploadhaven/internal/server/config"
	"github.com/dmitrijs2005/uploadhaven/internal/server/httpapi"
	"github.com/dmitrijs2005/uploadhaven/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/uploadhaven/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	accessLog *logrus.Logger
	db        *sql.DB
	blobs     blobstore.Store
	uploads   *services.UploadService
	handler   http.Handler
	tracer    *sdktrace.TracerProvider
}

// NewApp opens every backend named in c. Output goes to w; nil means stdout.
func NewApp(ctx context.Context, c *config.Config, w io.Writer) (*App, error) {
	if w == nil {
		w = os.Stdout
	}
	logger, err := logging.New(w, logging.Options{Backend: c.LogBackend, Level: c.LogLevel, JSON: true})
	if err != nil {
		return nil, err
	}
	accessLog := logrus.New()
	accessLog.SetOutput(w)
	accessLog.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		accessLog.SetLevel(lvl)
	}

	app := &App{config: c, logger: logger, accessLog: accessLog}

	var rm repomanager.RepositoryManager
	if c.DatabaseDSN != "" {
		db, err := sql.Open("pgx", c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("db ping: %w", err)
		}
		rm = repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("db migrations: %w", err)
		}
		app.db = db
	} else {
		logger.Warn(ctx, "no database configured, upload records are kept in memory")
		rm = repomanager.NewMemoryRepositoryManager()
	}

	blobs, err := blobstore.Open(ctx, blobstore.Options{
		Backend:   c.BlobBackend,
		BadgerDir: c.BadgerDir,
		S3: blobstore.S3Config{
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			UsePathStyle: c.S3UsePathStyle,
		},
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("blob store: %w", err)
	}
	app.blobs = blobs

	opts := []services.Option{services.WithLogger(logger)}
	ro := httpapi.RouterOptions{AccessLog: accessLog}

	if c.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.NewServer(reg)
		opts = append(opts, services.WithMetrics(m))
		ro.Metrics = m
		ro.Gatherer = reg
	}
	if c.TracingEnabled {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("trace exporter: %w", err)
		}
		app.tracer = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
		ro.TracerProvider = app.tracer
	}

	app.uploads = services.NewUploadService(app.db, rm, blobs, c, opts...)
	app.handler = httpapi.NewRouter(httpapi.NewHandler(app.uploads, logger, c.MaxUploadSize), ro)
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run listens on the configured address and serves until ctx is done or a
// termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	app.initSignalHandler(cancelFunc)

	ln, err := net.Listen("tcp", app.config.ListenAddr)
	if err != nil {
		return errors.Join(fmt.Errorf("listen: %w", err), app.Close())
	}
	return app.serve(ctx, ln)
}

func (app *App) serve(ctx context.Context, ln net.Listener) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	srv := &http.Server{Handler: app.handler}

	app.logger.Info(ctx, "starting server", "addr", ln.Addr().String(),
		"blob_backend", app.config.BlobBackend, "database", app.db != nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.uploads.RunSweeper(ctx, app.config.SweepInterval)
	}()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
		app.logger.Error(ctx, "server failed", "error", serveErr)
	}
	cancelFunc()

	app.logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Warn(shutdownCtx, "graceful shutdown incomplete", "error", err)
	}
	wg.Wait()

	if err := app.Close(); err != nil && serveErr == nil {
		serveErr = err
	}
	return serveErr
}

// Close releases the backends. It is safe to call on a partially built App.
func (app *App) Close() error {
	var errs []error
	if app.tracer != nil {
		errs = append(errs, app.tracer.Shutdown(context.Background()))
	}
	if app.blobs != nil {
		errs = append(errs, app.blobs.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	return errors.Join(errs...)
}
