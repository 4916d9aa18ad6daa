package util

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("info", "json", &buf)
	logger.Debug("hidden")
	logger.Info("query done", "gen", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if rec["msg"] != "query done" || rec["gen"] != float64(3) {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	NewLogger("debug", "text", &buf).Debug("load more", "cursor", "c1")
	if !strings.Contains(buf.String(), "cursor=c1") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestOpenDatedLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "client.log")
	f, err := OpenDatedLog(path, "feed-client")
	if err != nil {
		t.Fatalf("OpenDatedLog: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString("x\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file missing: %v", err)
	}
}
