// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New builds a logger for env and installs it as the slog default.
// Production logs are JSON at info level; everything else is text at debug level.
func New(env string) *slog.Logger {
	logger := newLogger(env, os.Stdout)
	slog.SetDefault(logger)
	return logger
}

func newLogger(env string, w io.Writer) *slog.Logger {
	if env == "production" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
