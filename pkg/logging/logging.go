package logging

import (
	"log/slog"
	"os"
	"strings"
)

const levelEnvVar = "LOG_LEVEL"

// ParseLevel converts a level name into a slog.Level. Empty input falls back
// to the LOG_LEVEL environment variable, then to info.
func ParseLevel(level string) slog.Level {
	if level == "" {
		level = os.Getenv(levelEnvVar)
	}
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// NewStructuredLogger creates a JSON logger writing to stderr with module and
// version attributes attached to every record. Source location is included
// when the level is debug.
func NewStructuredLogger(module, version, level string) *slog.Logger {
	lvl := ParseLevel(level)
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	})
	return slog.New(handler).With(
		slog.String("module", module),
		slog.String("version", version),
	)
}

// SetDefaultStructuredLogger installs a structured logger as the slog default,
// with the level taken from the LOG_LEVEL environment variable.
func SetDefaultStructuredLogger(module, version string) {
	SetDefaultStructuredLoggerWithLevel(module, version, "")
}

// SetDefaultStructuredLoggerWithLevel installs a structured logger as the
// slog default at an explicit level.
func SetDefaultStructuredLoggerWithLevel(module, version, level string) {
	slog.SetDefault(NewStructuredLogger(module, version, level))
}
