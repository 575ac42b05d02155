// Package log installs the process-wide slog default shared by the tradewind
// binaries. Components derive scoped loggers through WithModule.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Setup replaces the default logger with a text handler on stderr at the
// given level. Unknown level names fall back to info.
func Setup(logLevel string) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(logLevel),
	})))
}

func parseLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
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

// WithModule returns the default logger carrying a module attribute.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
