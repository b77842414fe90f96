// Package log attaches a [slog.Logger] to a [context.Context] so request-scoped
// attributes travel with the turn. Packages log through these helpers rather
// than through slog directly.
package log

import (
	"context"
	"log/slog"
	"runtime"
	"slices"
	"time"
)

type loggerKey struct{}

// WithLogger returns a new [context.Context] carrying the provided logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, or [slog.Default] if none is.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// Debug logs at [slog.LevelDebug] using the context-scoped logger.
func Debug(ctx context.Context, msg string, args ...any) {
	doLog(ctx, slog.LevelDebug, msg, args...)
}

// Info logs at [slog.LevelInfo] using the context-scoped logger.
func Info(ctx context.Context, msg string, args ...any) {
	doLog(ctx, slog.LevelInfo, msg, args...)
}

// Warn logs at [slog.LevelWarn] using the context-scoped logger.
func Warn(ctx context.Context, msg string, args ...any) {
	doLog(ctx, slog.LevelWarn, msg, args...)
}

// Error logs at [slog.LevelError] with err attached as the "error" attribute.
func Error(ctx context.Context, msg string, err error, args ...any) {
	doLog(ctx, slog.LevelError, msg, slices.Concat([]any{"error", err}, args)...)
}

// Logging through the raw logger here would record this package as the call
// site, so records are built by hand with the caller's pc.
func doLog(ctx context.Context, level slog.Level, msg string, args ...any) {
	if logger := FromContext(ctx); logger.Enabled(ctx, level) {
		var pcs [1]uintptr
		// skip runtime.Callers, doLog, and the exported wrapper
		runtime.Callers(3, pcs[:])

		record := slog.NewRecord(time.Now(), level, msg, pcs[0])
		record.Add(args...)
		logger.Handler().Handle(ctx, record) //nolint:errcheck
	}
}
