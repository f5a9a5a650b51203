// Package ctxlog carries a *slog.Logger through context.Context so that deep
// call paths (parsers, schedulers, solver backends) log with the attributes
// of the run that invoked them.
package ctxlog

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// WithLogger returns a copy of ctx that carries logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default() when the
// context carries none. Library code can therefore always log, and callers
// that care about output wire a logger in.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// With returns a context whose logger has args appended as attributes.
func With(ctx context.Context, args ...any) context.Context {
	return WithLogger(ctx, FromContext(ctx).With(args...))
}
