package logrich

import (
	"os"

	"github.com/rs/zerolog"
)

// DiagnosticEvent is a named, structured self-observability signal emitted
// by the queue and fan-out layers. It never carries a caller LogEvent's
// payload verbatim, only operational metadata about the runtime itself.
type DiagnosticEvent struct {
	Name   string
	Fields map[string]any
}

// DiagnosticFunc receives DiagnosticEvents emitted internally by the
// runtime. A nil DiagnosticFunc silently drops them.
type DiagnosticFunc func(DiagnosticEvent)

// Named diagnostic events emitted by the queue, fan-out and event
// processing layers.
const (
	DiagQueueShutdownTimeout = "queue_shutdown_timeout"
	DiagWorkerFailed         = "worker_failed"
	DiagQueueDegraded        = "queue_degraded"
	DiagQueueDropCallback    = "queue_drop_callback_error"
	DiagSinkCircuitOpen      = "sink_circuit_open"
	DiagSinkFailed           = "sink_failed"
	DiagRateLimited          = "rate_limited"
	DiagPayloadTruncated     = "payload_truncated"
	DiagDropped              = "dropped"
)

// NewZerologDiagnosticHook returns a DiagnosticFunc that logs each
// DiagnosticEvent as a structured zerolog line on stderr. It is a
// convenience default; hosts embedding logrich into a larger application
// will usually supply their own DiagnosticFunc instead.
func NewZerologDiagnosticHook() DiagnosticFunc {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("component", "logrich").Logger()
	return func(ev DiagnosticEvent) {
		evt := logger.Warn().Str("event", ev.Name)
		for k, v := range ev.Fields {
			evt = evt.Interface(k, v)
		}
		evt.Msg("logrich diagnostic")
	}
}

func emit(fn DiagnosticFunc, name string, fields map[string]any) {
	if fn == nil {
		return
	}
	fn(DiagnosticEvent{Name: name, Fields: fields})
}
