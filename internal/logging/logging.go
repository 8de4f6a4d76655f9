// Package logging configures colored structured logging with tint.
//
// The CLI writes its own output to stdout, so the logger stays on stderr and
// defaults to WARN. STIPEND_LOG_LEVEL (or LOG_LEVEL) and --verbose raise it.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// DefaultLevel is used when no environment variable or flag sets a level.
const DefaultLevel = slog.LevelWarn

// Setup installs a tint handler on stderr as the slog default and returns it.
// verbose forces DEBUG regardless of the environment.
func Setup(verbose bool) *slog.Logger {
	level := LevelFromEnv()
	if verbose {
		level = slog.LevelDebug
	}
	return SetupWithLevel(level)
}

// SetupWithLevel installs a tint handler at the given level.
func SetupWithLevel(level slog.Level) *slog.Logger {
	log := New(os.Stderr, level)
	slog.SetDefault(log)
	return log
}

// New builds a tint logger writing to w. Color is dropped when NO_COLOR is set.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    os.Getenv("NO_COLOR") != "",
	}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// LevelFromEnv reads STIPEND_LOG_LEVEL, falling back to LOG_LEVEL.
func LevelFromEnv() slog.Level {
	raw := os.Getenv("STIPEND_LOG_LEVEL")
	if raw == "" {
		raw = os.Getenv("LOG_LEVEL")
	}
	return ParseLevel(raw)
}

// ParseLevel maps a level name to a slog level. Unknown names yield DefaultLevel.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return DefaultLevel
	}
}
