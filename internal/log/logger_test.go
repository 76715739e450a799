package log

import (
	"bytes"
	"strings"
	"testing"
)

// TestNewLoggerLevels tests that verbose mode controls debug output.
func TestNewLoggerLevels(t *testing.T) {
	t.Parallel()

	t.Run("debug suppressed by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)
		logger.Debug("hidden")
		logger.Info("shown")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Error("expected debug record to be suppressed")
		}
		if !strings.Contains(out, "shown") {
			t.Error("expected info record to be emitted")
		}
	})

	t.Run("debug emitted when verbose", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)
		logger.Debug("visible")

		if !strings.Contains(buf.String(), "visible") {
			t.Error("expected debug record in verbose mode")
		}
	})
}

// TestTrimHandler tests truncation of oversized attribute values.
func TestTrimHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, false)

	long := strings.Repeat("a", maxAttrLen+100)
	logger.Info("fetched", "body", long, "url", "https://example.com/r")

	out := buf.String()
	if strings.Contains(out, long) {
		t.Error("expected the long value to be truncated")
	}
	if !strings.Contains(out, "(trimmed)") {
		t.Error("expected a truncation marker")
	}
	if !strings.Contains(out, "https://example.com/r") {
		t.Error("expected short values to pass through unchanged")
	}
}
