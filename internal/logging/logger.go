// Package logging defines the structured-logging interface used by the
// client and the server, with slog and logrus backends.
//
// Nothing secret is ever passed to a Logger: no keys, passwords, plaintext
// or share-link fragments. Flows log stage names, short ids, sizes and
// error kinds only.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key-value pairs, e.g.:
//
//	log.Info(ctx, "upload stored", "short_id", id, "size", n)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}
