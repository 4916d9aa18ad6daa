// Package util provides shared logging setup for the tickerfeed binaries.
package util

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ParseLevel maps "debug", "info", "warn" and "error" to a slog level.
// Unrecognised strings give info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured logger writing to w at the given level.
// format "json" selects the JSON handler; anything else gives text.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// OpenDatedLog opens (appending) the log file for name and today's date.
// With an empty path it uses /tmp/<name>-YYYY-MM-DD.log.
func OpenDatedLog(path, name string) (*os.File, error) {
	if path == "" {
		path = filepath.Join(os.TempDir(), fmt.Sprintf("%s-%s.log", name, time.Now().Format("2006-01-02")))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
