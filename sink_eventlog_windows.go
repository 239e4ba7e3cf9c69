//go:build windows

package logrich

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sys/windows/svc/eventlog"
)

// EventlogBackend writes events to the Windows Event Log. The first write
// installs the event source if it has not been registered before.
type EventlogBackend struct {
	thresholdGate
	mu         sync.Mutex
	eventID    uint32
	ident      string
	registered bool
}

// NewEventlogBackend returns an EventlogBackend registering itself under
// ident and tagging entries with eventID.
func NewEventlogBackend(eventID uint32, ident string) (*EventlogBackend, error) {
	return &EventlogBackend{thresholdGate: newThresholdGate(DebugLevel), eventID: eventID, ident: ident}, nil
}

// Name implements SinkPort.
func (eb *EventlogBackend) Name() string { return "eventlog" }

// Write implements SinkPort.
func (eb *EventlogBackend) Write(_ context.Context, ev LogEvent) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if !eb.registered {
		err := eventlog.InstallAsEventCreate(eb.ident, eventlog.Info|eventlog.Warning|eventlog.Error)
		if err != nil && !strings.Contains(err.Error(), "registry key already exists") {
			return fmt.Errorf("logrich: install eventlog source: %w", err)
		}
		eb.registered = true
	}

	writer, err := eventlog.Open(eb.ident)
	if err != nil {
		return fmt.Errorf("logrich: open eventlog: %w", err)
	}
	defer writer.Close()

	fields := flattenKV(camelCaseKeys(mergeExtra(ev)))
	message := fmt.Sprintf("[%s] %s %s", ev.LoggerName, ev.Message, fields)

	ops := map[LogLevel]func(uint32, string) error{
		DebugLevel:    writer.Info,
		InfoLevel:     writer.Info,
		WarningLevel:  writer.Warning,
		ErrorLevel:    writer.Error,
		CriticalLevel: writer.Error,
	}
	fn, ok := ops[ev.Level]
	if !ok {
		return fmt.Errorf("logrich: unsupported eventlog level: %v", ev.Level)
	}
	if err := fn(eb.eventID, message); err != nil {
		return fmt.Errorf("logrich: write eventlog: %w", err)
	}
	return nil
}

// Close implements SinkPort. Each write opens its own handle, so there is
// nothing to release here.
func (eb *EventlogBackend) Close() error { return nil }
