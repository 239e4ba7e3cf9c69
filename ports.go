package logrich

import "context"

// SinkPort is implemented by every backend capable of receiving fanned-out
// LogEvents: console, journald, eventlog, graylog, cloud logging, serial.
type SinkPort interface {
	// Name identifies the sink for diagnostics and circuit-breaker keys.
	Name() string
	// Write delivers a single event. Implementations should not block
	// indefinitely; the fan-out layer calls Write synchronously and
	// applies no timeout of its own.
	Write(ctx context.Context, ev LogEvent) error
	// Close releases any resources held by the sink.
	Close() error
	// Threshold returns the minimum LogLevel this sink accepts. FanOut
	// skips delivery to the sink for events below it.
	Threshold() LogLevel
	// SetThreshold changes the sink's minimum accepted LogLevel, letting
	// the runtime apply console_level/backend_level/graylog_level from
	// Config after the sink has already been constructed.
	SetThreshold(level LogLevel)
}

// QueuePort is the async boundary between ProcessEvent and sink fan-out.
type QueuePort interface {
	Enqueue(ev LogEvent) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// RateLimiterPort is satisfied by RateLimiter; abstracted so ProcessEvent
// can be tested against a fake.
type RateLimiterPort interface {
	Allow(loggerName string, level LogLevel) bool
}

// ScrubberPort is satisfied by Scrubber.
type ScrubberPort interface {
	Scrub(ev LogEvent) LogEvent
}

// DumpPort renders a slice of LogEvent according to DumpOptions.
type DumpPort interface {
	Render(events []LogEvent, opts DumpOptions) (string, error)
}
