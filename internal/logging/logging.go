// Package logging configures structured logging for front-desk.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a level name (debug, info, warn, error) to a slog level.
// An empty name returns fallback.
func ParseLevel(name string, fallback slog.Level) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return fallback, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return fallback, fmt.Errorf("unknown log level %q", name)
}

// New builds a logger writing to w. Dev mode uses human-readable text at
// debug level; otherwise JSON at info level. A non-empty level overrides
// the mode's default.
func New(w io.Writer, devMode bool, level string) (*slog.Logger, error) {
	fallback := slog.LevelInfo
	if devMode {
		fallback = slog.LevelDebug
	}
	lvl, err := ParseLevel(level, fallback)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if devMode {
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return slog.New(slog.NewJSONHandler(w, opts)), nil
}

// Setup initializes the default slog logger on stdout, honouring
// FD_LOG_LEVEL.
func Setup(devMode bool) error {
	logger, err := New(os.Stdout, devMode, os.Getenv("FD_LOG_LEVEL"))
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}
