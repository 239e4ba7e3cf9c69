//go:build !windows

package logrich

import "context"

// EventlogBackend is a no-op off Windows.
type EventlogBackend struct {
	thresholdGate
}

// NewEventlogBackend returns an EventlogBackend that reports
// ErrUnsupportedPlatform on every write.
func NewEventlogBackend(eventID uint32, ident string) (*EventlogBackend, error) {
	return &EventlogBackend{thresholdGate: newThresholdGate(DebugLevel)}, nil
}

// Name implements SinkPort.
func (eb *EventlogBackend) Name() string { return "eventlog" }

// Write implements SinkPort.
func (eb *EventlogBackend) Write(context.Context, LogEvent) error {
	return ErrUnsupportedPlatform
}

// Close implements SinkPort.
func (eb *EventlogBackend) Close() error { return nil }
