package logrich

import (
	"context"
	"testing"

	json "github.com/goccy/go-json"
)

func TestNewGraylogBackendInvalidAddressFails(t *testing.T) {
	_, err := NewGraylogBackend(GraylogOptions{Address: "not a valid address", Protocol: GraylogTCP})
	if err == nil {
		t.Fatal("NewGraylogBackend with an invalid address should fail")
	}
}

func TestNewGraylogBackendDefaultThreshold(t *testing.T) {
	gb, err := NewGraylogBackend(GraylogOptions{Address: "127.0.0.1:0", Protocol: GraylogUDP})
	if err != nil {
		t.Fatalf("NewGraylogBackend: %v", err)
	}
	defer gb.Close()
	if got := gb.Threshold(); got != WarningLevel {
		t.Errorf("default Threshold = %v, want WarningLevel (per opts.Threshold's documented default)", got)
	}
}

func TestNewGraylogBackendExplicitThreshold(t *testing.T) {
	gb, err := NewGraylogBackend(GraylogOptions{Address: "127.0.0.1:0", Protocol: GraylogUDP, Threshold: DebugLevel})
	if err != nil {
		t.Fatalf("NewGraylogBackend: %v", err)
	}
	defer gb.Close()
	if got := gb.Threshold(); got != DebugLevel {
		t.Errorf("Threshold = %v, want DebugLevel", got)
	}
}

func TestGelfMessageMarshalUsesUnderscorePrefixedAdditionalFields(t *testing.T) {
	msg := gelfMessage{
		Version:      "1.1",
		Host:         "host-1",
		ShortMessage: "hello",
		Timestamp:    1700000000,
		Level:        6,
		LoggerName:   "worker",
		EventID:      "ev-1",
		Additional:   underscorePrefixKeys(map[string]string{"job_id": "j1", "request_id": "r1"}),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	out := string(data)
	for _, want := range []string{`"_job_id":"j1"`, `"_request_id":"r1"`, `"_logger_name":"worker"`, `"_event_id":"ev-1"`} {
		if !containsCompact(out, want) {
			t.Errorf("gelf payload %s missing %s", out, want)
		}
	}
}

func TestUnderscorePrefixKeysRenamesReservedID(t *testing.T) {
	out := underscorePrefixKeys(map[string]string{"id": "123", "_already": "x"})
	if out["_id_"] != "123" {
		t.Errorf("reserved \"id\" key should be renamed to \"_id_\", got %+v", out)
	}
	if out["_already"] != "x" {
		t.Errorf("already-prefixed key should pass through unchanged, got %+v", out)
	}
}

func TestGraylogWriteMergesContextIntoAdditionalFields(t *testing.T) {
	gb, err := NewGraylogBackend(GraylogOptions{Address: "127.0.0.1:0", Protocol: GraylogUDP})
	if err != nil {
		t.Fatalf("NewGraylogBackend: %v", err)
	}
	defer gb.Close()

	ev := LogEvent{
		Message: "hello",
		Level:   WarningLevel,
		Context: LogContext{Service: "svc", Environment: "dev", JobID: "j1", RequestID: "r1"},
		Extra:   map[string]string{"attempt": "3"},
	}
	if err := gb.Write(context.Background(), ev); err != nil {
		t.Fatalf("Write: %v", err)
	}
	fields := underscorePrefixKeys(contextAndExtraFields(ev))
	if fields["_job_id"] != "j1" || fields["_request_id"] != "r1" || fields["_attempt"] != "3" {
		t.Errorf("additional fields = %+v, want _job_id=j1, _request_id=r1 and _attempt=3", fields)
	}
}

// containsCompact is a small substring check kept local to this test file
// to avoid pulling in strings just for one assertion helper.
func containsCompact(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
