package logrich

import (
	"context"
	"testing"
	"time"
)

func TestInitBindLogAndDump(t *testing.T) {
	sink := &fakeSink{name: "test"}
	rt, err := Init(context.Background(), Config{
		Service:            "svc",
		Environment:        "dev",
		MinLevel:           DebugLevel,
		Sinks:              []SinkPort{sink},
		RingBufferCapacity: 16,
		Now:                func() time.Time { return time.Unix(1700000000, 0) },
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer rt.Shutdown(context.Background())

	ctx, err := rt.Bind(context.Background(), LogContext{JobID: "job-1"})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	logger := rt.Logger("worker")
	if _, err := logger.Info(ctx, "hello", nil); err != nil {
		t.Fatalf("Info: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && sink.count() == 0 {
		time.Sleep(10 * time.Millisecond)
	}
	if sink.count() != 1 {
		t.Fatalf("sink received %d events, want 1", sink.count())
	}

	out, err := rt.Dump(DumpOptions{Format: DumpText, Preset: "short"})
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if out == "" {
		t.Fatal("expected non-empty dump output")
	}
}

func TestInitTwiceReturnsAlreadyInitialized(t *testing.T) {
	rt, err := Init(context.Background(), Config{Service: "svc", Environment: "dev", Sinks: []SinkPort{&fakeSink{name: "a"}}})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer rt.Shutdown(context.Background())

	if _, err := Init(context.Background(), Config{}); err != ErrAlreadyInitialized {
		t.Fatalf("second Init = %v, want ErrAlreadyInitialized", err)
	}
}

func TestInitRequiresServiceAndEnvironment(t *testing.T) {
	if _, err := Init(context.Background(), Config{Sinks: []SinkPort{&fakeSink{name: "a"}}}); err == nil {
		t.Fatal("expected Init with no Service/Environment to fail")
	}
	if rt, _ := Get(); rt != nil {
		t.Fatal("failed Init must not leave a singleton installed")
	}
}

func TestLoggerReturnsQueuedStatus(t *testing.T) {
	sink := &fakeSink{name: "test"}
	rt, err := Init(context.Background(), Config{
		Service:     "svc",
		Environment: "dev",
		MinLevel:    DebugLevel,
		Sinks:       []SinkPort{sink},
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer rt.Shutdown(context.Background())

	ctx, err := rt.Bind(context.Background(), LogContext{JobID: "job-1"})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	result, err := rt.Logger("worker").Info(ctx, "hello", nil)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if result.Status != StatusQueued || result.EventID == "" {
		t.Errorf("result = %+v, want StatusQueued with a non-empty EventID", result)
	}
}

func TestLoggerWithoutBoundContextReturnsContextMissing(t *testing.T) {
	rt, err := Init(context.Background(), Config{
		Service:     "svc",
		Environment: "dev",
		MinLevel:    DebugLevel,
		Sinks:       []SinkPort{&fakeSink{name: "test"}},
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer rt.Shutdown(context.Background())

	if _, err := rt.Logger("worker").Info(context.Background(), "hello", nil); err != ErrContextMissing {
		t.Fatalf("Info without bound context = %v, want ErrContextMissing", err)
	}
}

func TestGetMinimumLogLevel(t *testing.T) {
	sink := &fakeSink{name: "test"}
	rt, err := Init(context.Background(), Config{
		Service:      "svc",
		Environment:  "dev",
		MinLevel:     DebugLevel,
		BackendLevel: ErrorLevel,
		Sinks:        []SinkPort{sink},
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer rt.Shutdown(context.Background())

	if got := rt.GetMinimumLogLevel(); got != ErrorLevel {
		t.Errorf("GetMinimumLogLevel = %v, want %v", got, ErrorLevel)
	}
}

func TestGetBeforeInitReturnsNotInitialized(t *testing.T) {
	if rt, _ := Get(); rt != nil {
		t.Skip("a previous test left the singleton installed")
	}
	if _, err := Get(); err != ErrNotInitialized {
		t.Fatalf("Get() = %v, want ErrNotInitialized", err)
	}
}

func TestLoggerBelowMinLevelIsSinkFilteredButRetained(t *testing.T) {
	sink := &fakeSink{name: "test"}
	rt, err := Init(context.Background(), Config{
		Service:     "svc",
		Environment: "dev",
		MinLevel:    WarningLevel,
		Sinks:       []SinkPort{sink},
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer rt.Shutdown(context.Background())

	ctx, err := rt.Bind(context.Background(), LogContext{JobID: "job-1"})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	logger := rt.Logger("worker")
	if _, err := logger.Debug(ctx, "should not reach the sink", nil); err != nil {
		t.Fatalf("Debug: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if sink.count() != 0 {
		t.Fatalf("sink received %d events, want 0 (below sink threshold)", sink.count())
	}

	events := rt.FlushRingBuffer()
	if len(events) != 1 {
		t.Fatalf("ring buffer retained %d events, want 1 (retention is unconditional)", len(events))
	}
}
