package util

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide logger: human-readable text at debug
// level in development, JSON at info level everywhere else. Every record
// carries the service name so the API and the mail worker can share a log
// stream.
func NewLogger(env string) *slog.Logger {
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

	return slog.New(handler).With("service", "mailsense")
}
