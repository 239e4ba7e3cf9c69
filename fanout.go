package logrich

import (
	"context"
	"fmt"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// FanOut delivers a LogEvent to every registered SinkPort, isolating
// failures with a per-sink circuit breaker so one misbehaving sink (a
// downed Graylog server, a full serial buffer) cannot stall delivery to
// the others.
type FanOut struct {
	mu          sync.RWMutex
	sinks       []SinkPort
	breakers    map[string]*gobreaker.CircuitBreaker[any]
	diagnostics DiagnosticFunc
}

// NewFanOut returns a FanOut with no sinks registered.
func NewFanOut(diagnostics DiagnosticFunc) *FanOut {
	return &FanOut{
		breakers:    make(map[string]*gobreaker.CircuitBreaker[any]),
		diagnostics: diagnostics,
	}
}

// Register adds sink to the fan-out set, giving it its own circuit
// breaker keyed by sink.Name().
func (f *FanOut) Register(sink SinkPort) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, sink)
	f.breakers[sink.Name()] = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        sink.Name(),
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				emit(f.diagnostics, DiagSinkCircuitOpen, map[string]any{"sink": name})
			}
		},
	})
}

// Dispatch delivers ev to every registered sink whose Threshold ev.Level
// meets. Each sink write goes through that sink's circuit breaker; a
// tripped breaker or a write error is folded into diagnostics and does not
// stop delivery to the remaining sinks, since a single failing sink must
// not block delivery to the others. Dispatch only returns an error when
// every sink it attempted to deliver to failed, so a queue worker can
// detect and recover from total delivery failure without individual sink
// flakiness ever tripping worker-crash recovery.
func (f *FanOut) Dispatch(ctx context.Context, ev LogEvent) error {
	f.mu.RLock()
	sinks := append([]SinkPort{}, f.sinks...)
	f.mu.RUnlock()

	var attempted, failures int
	for _, sink := range sinks {
		sink := sink
		if ev.Level < sink.Threshold() {
			continue
		}
		attempted++
		f.mu.RLock()
		cb := f.breakers[sink.Name()]
		f.mu.RUnlock()
		_, err := cb.Execute(func() (any, error) {
			return nil, sink.Write(ctx, ev)
		})
		if err != nil {
			failures++
			emit(f.diagnostics, DiagSinkFailed, map[string]any{
				"sink":  sink.Name(),
				"error": err.Error(),
			})
		}
	}
	if attempted > 0 && failures == attempted {
		return fmt.Errorf("logrich: all %d sink(s) failed to deliver event %s", failures, ev.EventID)
	}
	return nil
}

// MinThreshold returns the lowest Threshold among registered sinks, the
// effective floor below which no sink could possibly accept an event. It
// returns DebugLevel if no sinks are registered.
func (f *FanOut) MinThreshold() LogLevel {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.sinks) == 0 {
		return DebugLevel
	}
	min := f.sinks[0].Threshold()
	for _, sink := range f.sinks[1:] {
		if t := sink.Threshold(); t < min {
			min = t
		}
	}
	return min
}

// Close closes every registered sink, collecting but not stopping on
// individual errors.
func (f *FanOut) Close() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var first error
	for _, sink := range f.sinks {
		if err := sink.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
