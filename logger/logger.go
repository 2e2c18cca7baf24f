// Package logger installs the process wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"strings"
)

var globalLogger *slog.Logger

// ParseLevel converts a level name (debug, info, warn, error) to a slog level.
func ParseLevel(level string) (slogLevel slog.Level, err error) {
	switch strings.ToLower(level) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info", "":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		err = ErrLevel(level)
	}

	return
}

// InitLogger installs a text logger writing to w at the named level as the
// slog default.
func InitLogger(level string, w io.Writer) (err error) {
	slogLevel, err := ParseLevel(level)
	if err != nil {
		return
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slogLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)

	return
}

// GetLogger returns the installed logger, or slog.Default() before
// InitLogger.
func GetLogger() *slog.Logger {
	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}
