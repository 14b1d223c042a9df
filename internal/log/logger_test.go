package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/forgeplan/forgeplan/internal/errors"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("text") != FormatText {
		t.Error("expected text format")
	}
	if ParseFormat("json") != FormatJSON {
		t.Error("expected json format")
	}
	if ParseFormat("unknown") != FormatJSON {
		t.Error("expected json fallback")
	}
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelInfo,
		Format: FormatJSON,
		Output: &buf,
	})

	logger.Info("phase started", "phase", 1, "features", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected valid JSON output, got %q: %v", buf.String(), err)
	}

	if entry["msg"] != "phase started" {
		t.Errorf("expected msg 'phase started', got %v", entry["msg"])
	}
	if entry["phase"] != float64(1) {
		t.Errorf("expected phase=1, got %v", entry["phase"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelWarn,
		Format: FormatText,
		Output: &buf,
	})

	logger.Debug("should not appear")
	logger.Info("should not appear either")
	logger.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("expected debug/info suppressed at warn level, got: %s", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("expected warn message, got: %s", out)
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelInfo,
		Format: FormatJSON,
		Output: &buf,
	})

	forgeErr := errors.NewNoRollbackPointError("phase-3")
	logger.WithError(forgeErr).Error("rollback failed")

	out := buf.String()
	if !strings.Contains(out, "ROLLBACK-001") {
		t.Errorf("expected error code in output, got: %s", out)
	}
	if !strings.Contains(out, "No rollback point found for phase: phase-3") {
		t.Errorf("expected error message in output, got: %s", out)
	}
}

func TestWithErrorNil(t *testing.T) {
	logger := Default()
	if logger.WithError(nil) != logger {
		t.Error("expected WithError(nil) to return the same logger")
	}
}

func TestDefaultLoggerLazyInit(t *testing.T) {
	SetDefaultLogger(nil)
	logger := DefaultLogger()
	if logger == nil {
		t.Fatal("expected lazily initialized default logger")
	}
	if DefaultLogger() != logger {
		t.Error("expected stable default logger")
	}
}
