//go:build !windows

package logrich

import (
	"context"
	"errors"
	"testing"
)

func TestEventlogBackendWriteUnsupportedOffWindows(t *testing.T) {
	eb, err := NewEventlogBackend(33, "logrich-test")
	if err != nil {
		t.Fatalf("NewEventlogBackend: %v", err)
	}
	defer eb.Close()

	werr := eb.Write(context.Background(), LogEvent{Message: "hello"})
	if !errors.Is(werr, ErrUnsupportedPlatform) {
		t.Errorf("Write off Windows = %v, want ErrUnsupportedPlatform", werr)
	}
}

func TestEventlogBackendDefaultThreshold(t *testing.T) {
	eb, err := NewEventlogBackend(33, "logrich-test")
	if err != nil {
		t.Fatalf("NewEventlogBackend: %v", err)
	}
	if got := eb.Threshold(); got != DebugLevel {
		t.Errorf("default Threshold = %v, want DebugLevel", got)
	}
}

func TestEventlogFieldsUseCamelCaseKeys(t *testing.T) {
	ev := LogEvent{Context: LogContext{Extra: map[string]string{"job_id": "j1"}}}
	fields := flattenKV(camelCaseKeys(mergeExtra(ev)))
	if fields != "jobId=j1" {
		t.Errorf("fields = %q, want %q", fields, "jobId=j1")
	}
}
