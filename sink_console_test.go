package logrich

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestConsoleBackendWritesPlainToNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	cb := NewConsoleBackend(&buf)

	err := cb.Write(context.Background(), LogEvent{
		LoggerName: "worker",
		Level:      InfoLevel,
		Message:    "hello",
		Timestamp:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "hello") || !strings.Contains(out, "worker") {
		t.Errorf("Write() output = %q", out)
	}
}

func TestConsoleBackendClose(t *testing.T) {
	var buf bytes.Buffer
	cb := NewConsoleBackend(&buf)
	if err := cb.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
