package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewJSONWritesStructuredRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marquee.log")
	logger, err := New(Options{Level: "debug", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("request submitted", String(FieldUserID, "alice"), Int("options", 3))

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
		t.Fatalf("decode record: %v (raw %q)", err, raw)
	}
	if record["msg"] != "request submitted" {
		t.Fatalf("msg = %v", record["msg"])
	}
	if record["level"] != "info" {
		t.Fatalf("level = %v", record["level"])
	}
	if record["ts"] == nil {
		t.Fatal("record missing ts")
	}
	if record[FieldUserID] != "alice" {
		t.Fatalf("user_id = %v", record[FieldUserID])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := parseLevel(tc.input); got != tc.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestConsoleHandlerFormatsAttrs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	logger, err := New(Options{Level: "info", Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Warn("sweep completed", Int("expired_sessions", 2))

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(raw)
	if !strings.Contains(line, "sweep completed") {
		t.Fatalf("line missing message: %q", line)
	}
	if !strings.Contains(line, "expired_sessions=2") {
		t.Fatalf("line missing attr: %q", line)
	}
}

func TestComponentLoggerAddsField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "component.log")
	logger, err := New(Options{Level: "info", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	NewComponentLogger(logger, "sweeper").Info("sweep completed")

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record[FieldComponent] != "sweeper" {
		t.Fatalf("component = %v", record[FieldComponent])
	}
}
