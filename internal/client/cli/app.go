package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/uploadhaven/internal/client/client"
	"github.com/dmitrijs2005/uploadhaven/internal/client/config"
	"github.com/dmitrijs2005/uploadhaven/internal/client/services"
	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/compat"
	"github.com/dmitrijs2005/uploadhaven/internal/logging"
	"github.com/dmitrijs2005/uploadhaven/internal/netx"
)

// Exit codes returned by Run.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitCancelled = 130
)

type App struct {
	config     *config.Config
	log        logging.Logger
	guard      *compat.Guard
	uploader   *services.Uploader
	downloader *services.Downloader
	out        io.Writer
	errOut     io.Writer
}

// NewApp wires the HTTP storage client, logging and both orchestrators.
func NewApp(c *config.Config) (*App, error) {
	log, err := logging.New(os.Stderr, logging.Options{Backend: c.LogBackend, Level: c.LogLevel})
	if err != nil {
		return nil, err
	}
	storage, err := client.NewHTTPStorage(c.ServerEndpoint, nil, c.RequestTimeout)
	if err != nil {
		return nil, err
	}
	return newApp(c, storage, log, compat.Default(), os.Stdout, os.Stderr), nil
}

func newApp(c *config.Config, storage client.Storage, log logging.Logger, guard *compat.Guard, out, errOut io.Writer) *App {
	a := &App{config: c, log: log, guard: guard, out: out, errOut: errOut}

	settings := services.Settings{
		ShareBaseURL:  c.ShareBase(),
		MaxFileSize:   c.MaxFileSize,
		DefaultExpiry: c.DefaultExpiry,
		MaxExpiry:     c.MaxExpiry,
		Iterations:    c.Iterations,
		Algorithm:     c.Algorithm,
		Retry: netx.Policy{
			Attempts:  c.RetryAttempts,
			BaseDelay: c.RetryBaseDelay,
			MaxDelay:  netx.DefaultPolicy.MaxDelay,
		},
	}
	opts := []services.Option{
		services.WithLogger(log),
		services.WithGuard(guard),
		services.WithObserver(a.progress),
	}
	a.uploader = services.NewUploader(storage, settings, opts...)
	a.downloader = services.NewDownloader(storage, settings, opts...)
	return a
}

// progress prints every non-terminal stage so slow steps such as key
// derivation are visible.
func (a *App) progress(t services.Transition) {
	if t.To.Terminal() {
		return
	}
	stage := strings.ReplaceAll(string(t.To), "_", " ")
	if t.Attempt > 1 {
		fmt.Fprintf(a.errOut, "%s (attempt %d)...\n", stage, t.Attempt)
		return
	}
	fmt.Fprintf(a.errOut, "%s...\n", stage)
}

// Run executes the command line and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	cmd := NewRootCmd(a)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, common.ErrCancelled) {
			fmt.Fprintln(a.errOut, "cancelled")
			return ExitCancelled
		}
		fmt.Fprintln(a.errOut, "error:", err)
		if errors.Is(err, common.ErrUnsupportedEnvironment) {
			fmt.Fprintln(a.errOut, "run 'uploadhaven check' for details")
		}
		return ExitFailure
	}
	return ExitOK
}
