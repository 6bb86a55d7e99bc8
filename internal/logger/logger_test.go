package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cfg := Config{
		Level:  "info",
		Format: "text",
	}
	logger := New(cfg)
	if logger == nil {
		t.Error("Expected logger to not be nil")
	}

	cfg.Format = "json"
	logger = New(cfg)
	if logger == nil {
		t.Error("Expected logger to not be nil")
	}

	// Invalid level should default to info
	cfg.Level = "invalid"
	logger = New(cfg)
	if logger == nil {
		t.Error("Expected logger to not be nil")
	}
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Level: "warn", Format: "text"}, &buf)

	logger.Info("hidden message")
	logger.Warn("visible message")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Errorf("info message should be filtered at warn level, got %q", out)
	}
	if !strings.Contains(out, "visible message") {
		t.Errorf("warn message missing, got %q", out)
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Level: "info", Format: "json"}, &buf)

	logger.WithProvider("youtube").Info("cache hit", "key", "the thing 1982 trailer")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["provider"] != "youtube" {
		t.Errorf("expected provider attribute, got %v", entry["provider"])
	}
	if entry["key"] != "the thing 1982 trailer" {
		t.Errorf("expected key attribute, got %v", entry["key"])
	}
}

func TestNewWithWriter_File(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "app.log")
	logger := NewWithWriter(Config{Level: "info", Format: "text", File: path}, &buf)

	logger.Info("written twice")
	if !strings.Contains(buf.String(), "written twice") {
		t.Errorf("expected stdout copy, got %q", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	logger := Default()
	componentLogger := logger.WithComponent("test-component")

	if componentLogger == nil {
		t.Error("Expected component logger to not be nil")
	}

	componentLogger2 := componentLogger.WithComponent("nested-component")
	if componentLogger2 == nil {
		t.Error("Expected nested component logger to not be nil")
	}
}

func TestWithMovie(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Level: "info", Format: "text"}, &buf)

	logger.WithMovie("1091", "The Thing").Info("assembled")
	if !strings.Contains(buf.String(), "movie_id=1091") {
		t.Errorf("expected movie_id attribute, got %q", buf.String())
	}
}

func TestLogLevels(t *testing.T) {
	levels := []string{"debug", "info", "warn", "error"}

	for _, level := range levels {
		logger := New(Config{Level: level, Format: "text"})
		if logger == nil {
			t.Errorf("Expected logger to not be nil for level %s", level)
		}
	}
}
