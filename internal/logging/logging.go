// Package logging sets up the process logger and keeps attribute names
// consistent across packages.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Common log attribute keys.
const (
	KeyError = "error"
	KeyEmail = "email"
	KeyRunID = "run_id"
)

// ParseLevel maps a level name to a slog level. Unknown names yield info.
func ParseLevel(level string) slog.Level {
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

// New returns a text logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Setup creates the process logger. Records go to stderr and, when logFile
// is not empty, are appended to that file as well. The returned closer
// releases the file and must be called on exit.
func Setup(level slog.Level, logFile string) (*slog.Logger, io.Closer, error) {
	if logFile == "" {
		return New(os.Stderr, level), nopCloser{}, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", logFile, err)
	}
	return New(io.MultiWriter(os.Stderr, f), level), f, nil
}

// Err returns a slog attribute for an error.
// If err is nil, it returns an empty group that slog omits from output.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// Email returns a slog attribute for a user email.
func Email(email string) slog.Attr {
	return slog.String(KeyEmail, email)
}

// RunID returns a slog attribute identifying one sync run.
func RunID(id string) slog.Attr {
	return slog.String(KeyRunID, id)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
