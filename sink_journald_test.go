//go:build linux

package logrich

import (
	"context"
	"log/syslog"
	"testing"
)

func TestJournaldBackendWritesToLocalSyslog(t *testing.T) {
	if _, err := syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, "logrich-test"); err != nil {
		t.Skipf("syslog not available, skipping: %v", err)
	}

	jb := NewJournaldBackend("logrich-test")
	defer jb.Close()

	ev := LogEvent{
		Message: "hello",
		Level:   InfoLevel,
		Context: LogContext{JobID: "j1"},
		Extra:   map[string]string{"attempt": "3"},
	}
	if err := jb.Write(context.Background(), ev); err != nil {
		t.Errorf("Write: %v", err)
	}
}

func TestJournaldBackendDefaultThreshold(t *testing.T) {
	jb := NewJournaldBackend("logrich-test")
	if got := jb.Threshold(); got != DebugLevel {
		t.Errorf("default Threshold = %v, want DebugLevel", got)
	}
}

func TestJournaldFieldsUseUpperASCIIKeys(t *testing.T) {
	ev := LogEvent{Context: LogContext{Extra: map[string]string{"job_id": "j1"}}}
	fields := flattenKV(upperASCIIKeys(mergeExtra(ev)))
	if fields != "JOB_ID=j1" {
		t.Errorf("fields = %q, want %q", fields, "JOB_ID=j1")
	}
}
