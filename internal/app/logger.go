package app

import (
	"io"
	"log/slog"
	"strings"
)

// newLogger builds the logger every run writes through, including the
// re-logged stdout/stderr of spawned trainers. It never touches the global
// default, so tests can capture isolated instances.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(levelStr)}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}

// parseLevel maps the --log-level flag value to a slog level. Unknown
// values fall back to info; the CLI rejects them before they reach here.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
