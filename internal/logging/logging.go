// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"log/slog"
)

// New returns a text logger writing to w. Debug enables debug-level records;
// otherwise only warnings and errors are emitted so normal runs keep stderr
// quiet.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Setup builds a logger with New and installs it as slog's default.
func Setup(w io.Writer, debug bool) *slog.Logger {
	l := New(w, debug)
	slog.SetDefault(l)
	return l
}
