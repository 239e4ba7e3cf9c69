//go:build !linux

package logrich

import "context"

// JournaldBackend is a no-op on platforms with no systemd journal.
type JournaldBackend struct {
	thresholdGate
}

// NewJournaldBackend returns a JournaldBackend that reports
// ErrUnsupportedPlatform on every write.
func NewJournaldBackend(ident string) *JournaldBackend {
	return &JournaldBackend{thresholdGate: newThresholdGate(DebugLevel)}
}

// Name implements SinkPort.
func (jb *JournaldBackend) Name() string { return "journald" }

// Write implements SinkPort.
func (jb *JournaldBackend) Write(context.Context, LogEvent) error {
	return ErrUnsupportedPlatform
}

// Close implements SinkPort.
func (jb *JournaldBackend) Close() error { return nil }
