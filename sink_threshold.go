package logrich

import "sync/atomic"

// thresholdGate is an embeddable atomic LogLevel gate. Every concrete sink
// embeds one to satisfy SinkPort's Threshold/SetThreshold pair without each
// backend rolling its own synchronization.
type thresholdGate struct {
	level int64
}

func newThresholdGate(level LogLevel) thresholdGate {
	return thresholdGate{level: int64(level)}
}

// Threshold implements SinkPort.
func (g *thresholdGate) Threshold() LogLevel {
	return LogLevel(atomic.LoadInt64(&g.level))
}

// SetThreshold implements SinkPort.
func (g *thresholdGate) SetThreshold(level LogLevel) {
	atomic.StoreInt64(&g.level, int64(level))
}
