// Package log configures the process-wide slog default for the flowboard
// binaries. Level and output format come from CLI flags; every component then
// derives its own logger through WithModule so log lines are filterable by
// the "module" attribute.
package log

import (
	"log/slog"
	"os"
)

// Setup installs the default logger. Unknown levels fall back to info and
// unknown formats to text, so a misconfigured flag never silences logging.
func Setup(logLevel, logFormat string) {
	level := parseLevel(logLevel)
	options := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if logFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, options)
	} else {
		handler = slog.NewTextHandler(os.Stderr, options)
	}

	slog.SetDefault(slog.New(handler))
}

func parseLevel(logLevel string) slog.Level {
	switch logLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithModule returns the default logger tagged with the component name.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
