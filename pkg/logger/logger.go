// Package logger sets up the process-wide slog logger. Every reconciliation
// log line carries the correlation ID of the notification that caused it.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Options selects the log level and output format.
type Options struct {
	Level   string // debug, info, warn, error
	Console bool   // human-readable text for local runs (LOG_FORMAT=console)
}

// Setup installs the default slog logger. JSON output is the production
// format; console output is for reading IPN traces locally.
func Setup(opts Options) {
	handlerOpts := &slog.HandlerOptions{
		Level:     parseLevel(opts.Level),
		AddSource: true,
	}

	var handler slog.Handler
	if opts.Console {
		handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	}

	// The correlation handler injects correlation_id from the context.
	handler = NewCorrelationHandler(handler)

	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
