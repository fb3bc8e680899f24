// Package telemetry provides structured logging and Prometheus metrics for partybot.
package telemetry

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger creates a structured JSON logger with the given minimum level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// ComponentLogger returns a logger scoped to a named component.
func ComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("component", component))
}
