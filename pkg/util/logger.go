package util

import (
	"log/slog"
	"os"
)

// NewLogger returns the process logger: readable text with debug level in
// development, JSON elsewhere. The service name is attached so the server
// and worker logs are distinguishable when aggregated.
func NewLogger(env, service string) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler).With("service", service)
}
