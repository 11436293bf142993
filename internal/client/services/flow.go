package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/logging"
	"github.com/dmitrijs2005/uploadhaven/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dmitrijs2005/uploadhaven/client"

// Flow names used in logs and metrics.
const (
	FlowUpload   = "upload"
	FlowDownload = "download"
)

// State is a stage of an upload or download.
type State string

const (
	StateIdle   State = "idle"
	StateFailed State = "failed"

	StateValidating  State = "validating"
	StateDerivingKey State = "deriving_key"
	StateEncrypting  State = "encrypting"
	StateSubmitting  State = "submitting"
	StateCompleted   State = "completed"

	StateParsingLink      State = "parsing_link"
	StateFetchingMetadata State = "fetching_metadata"
	StateAwaitingPassword State = "awaiting_password"
	StateDownloading      State = "downloading"
	StateDecrypting       State = "decrypting"
	StateReady            State = "ready"
)

// Terminal reports whether no further transition can follow.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateReady || s == StateFailed
}

// Transition is delivered to observers on every state change. Err is set
// only when To is StateFailed and holds the error kind, never the cause.
type Transition struct {
	Flow    string
	From    State
	To      State
	Attempt int
	At      time.Time
	Err     error
}

// Observer is called synchronously from the flow's goroutine.
type Observer func(Transition)

// FlowError is what a failed flow returns. Only Kind is reachable through
// errors.Is/As; the underlying cause is logged and dropped so callers
// cannot tell a wrong key from a damaged package.
type FlowError struct {
	Flow  string
	Stage State
	Kind  error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s failed while %s: %v", e.Flow, e.Stage, e.Kind)
}

func (e *FlowError) Unwrap() error { return e.Kind }

// kinds lists every sentinel a flow may fail with, in matching order.
var kinds = []struct {
	err   error
	label string
}{
	{common.ErrCancelled, "cancelled"},
	{common.ErrUnsupportedEnvironment, "unsupported_environment"},
	{common.ErrWeakPassword, "weak_password"},
	{common.ErrPasswordRequired, "password_required"},
	{common.ErrFileTooLarge, "file_too_large"},
	{common.ErrInvalidFile, "invalid_file"},
	{common.ErrInvalidOptions, "invalid_options"},
	{common.ErrWrongPasswordOrCorrupted, "wrong_password_or_corrupted"},
	{common.ErrDecryption, "decryption"},
	{common.ErrMalformedPackage, "malformed_package"},
	{common.ErrSizeMismatch, "size_mismatch"},
	{common.ErrInvalidLinkFormat, "invalid_link_format"},
	{common.ErrNotFoundOrExpired, "not_found_or_expired"},
	{common.ErrAccessDenied, "access_denied"},
	{common.ErrUnavailable, "unavailable"},
	{common.ErrorIncorrectMetadata, "incorrect_metadata"},
	{common.ErrorInternal, "internal"},
}

// kindLabel names the first known sentinel in err's chain.
func kindLabel(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.label
		}
	}
	return "internal"
}

// kindOf picks the flow error kind for err. A done context wins over
// whatever error the interrupted call produced.
func kindOf(ctx context.Context, err error) error {
	if k := ctxKind(ctx); k != nil {
		return k
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.err
		}
	}
	return common.ErrorInternal
}

// machine tracks one run of a flow. It is not shared between runs.
type machine struct {
	flow      string
	log       logging.Logger
	metrics   *metrics.Flows
	observers []Observer
	tracer    trace.Tracer
	now       func() time.Time

	mu      sync.Mutex
	state   State
	attempt int
	entered time.Time
	root    trace.Span
	span    trace.Span
}

func newMachine(ctx context.Context, flow string, d *deps) (context.Context, *machine) {
	m := &machine{
		flow:      flow,
		log:       d.log.With("flow", flow),
		metrics:   d.metrics,
		observers: d.observers,
		tracer:    otel.Tracer(tracerName),
		now:       d.now,
		state:     StateIdle,
		attempt:   1,
	}
	m.entered = m.now()
	ctx, m.root = m.tracer.Start(ctx, flow)
	return ctx, m
}

// State returns the current state.
func (m *machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *machine) enter(ctx context.Context, to State) {
	m.transition(ctx, to, nil)
}

// retry moves back to an earlier stage for another attempt.
func (m *machine) retry(ctx context.Context, to State) {
	m.mu.Lock()
	m.attempt++
	m.mu.Unlock()
	m.transition(ctx, to, nil)
}

func (m *machine) transition(ctx context.Context, to State, kind error) {
	m.mu.Lock()
	from := m.state
	if from.Terminal() {
		m.mu.Unlock()
		return
	}
	now := m.now()
	elapsed := now.Sub(m.entered)
	m.state = to
	m.entered = now
	attempt := m.attempt
	prev := m.span
	m.span = nil
	m.mu.Unlock()

	if prev != nil {
		prev.End()
	}
	if from != StateIdle && m.metrics != nil {
		m.metrics.ObserveStage(m.flow, string(from), elapsed)
	}
	if !to.Terminal() {
		_, span := m.tracer.Start(ctx, string(to), trace.WithAttributes(attribute.Int("attempt", attempt)))
		m.mu.Lock()
		m.span = span
		m.mu.Unlock()
	}

	m.log.Debug(ctx, "state change", "from", string(from), "to", string(to), "attempt", attempt)

	t := Transition{Flow: m.flow, From: from, To: to, Attempt: attempt, At: now, Err: kind}
	for _, o := range m.observers {
		o(t)
	}
}

// fail moves to StateFailed and returns the FlowError for kind. cause is
// only logged, by kind name.
func (m *machine) fail(ctx context.Context, kind, cause error) error {
	stage := m.State()
	if cause == nil {
		cause = kind
	}

	fe := &FlowError{Flow: m.flow, Stage: stage, Kind: kind}
	label := kindLabel(kind)

	if errors.Is(kind, common.ErrCancelled) {
		m.log.Info(ctx, "cancelled", "stage", string(stage))
		if m.metrics != nil {
			m.metrics.RecordCancelled(m.flow)
		}
	} else {
		m.log.Warn(ctx, "failed", "stage", string(stage), "kind", label, "cause_kind", kindLabel(cause))
		if m.metrics != nil {
			m.metrics.RecordFailure(m.flow, label)
		}
		m.root.SetStatus(codes.Error, label)
	}

	m.transition(ctx, StateFailed, kind)
	m.root.SetAttributes(attribute.String("result", label))
	m.root.End()
	return fe
}

// succeed moves to the terminal success state.
func (m *machine) succeed(ctx context.Context, to State) {
	m.transition(ctx, to, nil)
	if m.metrics != nil {
		m.metrics.RecordSuccess(m.flow)
	}
	m.root.SetAttributes(attribute.String("result", metrics.ResultOK))
	m.root.End()
}

// ctxKind maps a done context to a flow error kind: a cancel is the user's
// abort, a deadline is treated like an unreachable server.
func ctxKind(ctx context.Context) error {
	switch err := ctx.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return common.ErrCancelled
	default:
		return common.ErrUnavailable
	}
}
