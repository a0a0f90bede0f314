// Package util provides shared utility functions for logging and retries.
package util

import (
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger creates a structured logger using log/slog at the specified
// level, writing to w. Supported levels: "debug", "info", "warn", "error".
// Defaults to "info" if the level string is not recognised.
func NewLogger(level string, w io.Writer) *slog.Logger {
	var slevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slevel = slog.LevelDebug
	case "info":
		slevel = slog.LevelInfo
	case "warn":
		slevel = slog.LevelWarn
	case "error":
		slevel = slog.LevelError
	default:
		slevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slevel,
	})

	return slog.New(handler)
}

// NewRotatingWriter returns a size-rotated log file writer. The TUI owns the
// terminal, so all logging goes through a file.
func NewRotatingWriter(path string, maxSizeMB, maxBackups int) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}
}

// SetDefault configures the provided logger as the default slog logger.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
