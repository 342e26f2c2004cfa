// Package logging configures the process-wide slog logger and derives
// request- and operation-scoped loggers from it. Handlers and services pull
// loggers through FromContext so every entry for one request carries the same
// chi request ID.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Setup installs the global slog logger. Level is one of "debug", "info",
// "warn", "error" (default info); format is "text" or "json" (default text).
// JSON is the deploy format, text the development one.
func Setup(level, format string) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FromContext returns the default logger, enriched with the chi request ID
// when the context carries one. All entries written during one request then
// correlate on request_id.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}

	return logger
}

// WithFields returns a context-derived logger carrying extra key-value pairs.
// Multi-step operations use it to stamp a stable identity on every entry:
//
//	logger := logging.WithFields(ctx, "execution_id", execID, "session_id", sessionID)
//	logger.Info("script execution started")
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
