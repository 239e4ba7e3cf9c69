package logrich

import (
	"context"
	"time"
)

// processEventToolkit bundles the collaborators ProcessEvent needs,
// mirroring the source material's pipeline toolkit so every dependency is
// explicit and swappable in tests.
type processEventToolkit struct {
	ids             IDProvider
	rateLimiter     RateLimiterPort
	scrubber        ScrubberPort
	ringBuffer      *RingBuffer
	queue           QueuePort
	now             func() time.Time
	diagnostics     DiagnosticFunc
	maxMessageBytes int
	maxExtraBytes   int
}

// ProcessEvent is the C7 use case: it takes a bound context, a logger name,
// level and message, and runs the full pipeline in order: context
// resolution, payload truncation, scrub, rate limit, retain, enqueue for
// async fan-out. Every event that resolves a context is retained in the
// ring buffer regardless of level; severity filtering happens per-sink, in
// FanOut.Dispatch, not here. With no queue in the toolkit the event is only
// retained and StatusOK is returned; processEvent does not call any sink
// itself. It returns a ProcessResult describing the
// outcome as data for every non-exceptional path; only a caller-correctable
// failure (no bound context) comes back as a Go error.
func processEvent(ctx context.Context, binder *ContextBinder, tk processEventToolkit, loggerName string, level LogLevel, message string, extra map[string]string, exception *ExceptionInfo) (ProcessResult, error) {
	lc, err := binder.Current(ctx)
	if err != nil {
		return ProcessResult{}, err
	}

	message, msgTruncated := truncateMessage(message, tk.maxMessageBytes)
	extra, extraTruncated := truncateExtra(extra, tk.maxExtraBytes)

	ev := LogEvent{
		EventID:    tk.ids.NewID(),
		LoggerName: loggerName,
		Level:      level,
		Message:    message,
		Timestamp:  tk.now(),
		Context:    lc,
		Extra:      extra,
		Exception:  exception,
	}
	ev = tk.scrubber.Scrub(ev)

	if msgTruncated || extraTruncated {
		emit(tk.diagnostics, DiagPayloadTruncated, map[string]any{
			"event_id": ev.EventID,
			"logger":   loggerName,
		})
	}

	if !tk.rateLimiter.Allow(loggerName, level) {
		emit(tk.diagnostics, DiagRateLimited, map[string]any{
			"event_id": ev.EventID,
			"logger":   loggerName,
			"level":    level.String(),
		})
		return ProcessResult{Status: StatusRateLimited, EventID: ev.EventID}, nil
	}

	tk.ringBuffer.Append(ev)

	if tk.queue == nil {
		return ProcessResult{Status: StatusOK, EventID: ev.EventID}, nil
	}

	if err := tk.queue.Enqueue(ev); err != nil {
		emit(tk.diagnostics, DiagDropped, map[string]any{
			"event_id": ev.EventID,
			"reason":   "queue_full",
			"error":    err.Error(),
		})
		return ProcessResult{Status: StatusDropped, EventID: ev.EventID, Reason: "queue_full"}, nil
	}
	return ProcessResult{Status: StatusQueued, EventID: ev.EventID}, nil
}

// truncateMessage caps message at max bytes. A non-positive max disables
// truncation.
func truncateMessage(message string, max int) (string, bool) {
	if max <= 0 || len(message) <= max {
		return message, false
	}
	return message[:max], true
}

// truncateExtra caps every value in extra at max bytes, returning a copy.
// A non-positive max disables truncation.
func truncateExtra(extra map[string]string, max int) (map[string]string, bool) {
	if max <= 0 || len(extra) == 0 {
		return extra, false
	}
	truncated := false
	out := make(map[string]string, len(extra))
	for k, v := range extra {
		if len(v) > max {
			out[k] = v[:max]
			truncated = true
			continue
		}
		out[k] = v
	}
	return out, truncated
}
