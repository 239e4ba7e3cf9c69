package logrich

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// LogEvent is the immutable record produced by ProcessEvent and fanned out
// to sinks, appended to the ring buffer, and rendered by the dump adapter.
type LogEvent struct {
	EventID    string
	LoggerName string
	Level      LogLevel
	Message    string
	Timestamp  time.Time
	Context    LogContext
	Extra      map[string]string
	Exception  *ExceptionInfo
}

// ExceptionInfo attaches error detail to a LogEvent, populated by
// LoggerProxy.Exception. Trace is a captured stack trace, not a formatted
// traceback of the error's call chain, since Go errors carry no frames of
// their own.
type ExceptionInfo struct {
	Type    string
	Message string
	Trace   string
}

// EventStatus is the outcome of a single ProcessEvent call, returned to the
// caller as data rather than as an error for every non-exceptional path.
type EventStatus string

const (
	// StatusOK means the event was retained in the ring buffer and no
	// queue was configured. No synchronous delivery to sinks takes place
	// on this path.
	StatusOK EventStatus = "ok"
	// StatusQueued means the event was accepted onto the async queue.
	StatusQueued EventStatus = "queued"
	// StatusRateLimited means the rate limiter rejected the event before
	// it reached the ring buffer or any sink.
	StatusRateLimited EventStatus = "rate_limited"
	// StatusDropped means the event was rejected after passing the rate
	// limiter, e.g. because the queue was saturated. Reason explains why.
	StatusDropped EventStatus = "dropped"
)

// ProcessResult is the status record ProcessEvent and LoggerProxy return
// for every call that does not fail with a caller-correctable error.
type ProcessResult struct {
	Status  EventStatus
	EventID string
	Reason  string
}

// IDProvider mints event identifiers. The default implementation produces
// ULIDs, which are lexically sortable by creation time and monotonic
// within a single process even when generated within the same millisecond.
type IDProvider interface {
	NewID() string
}

// ulidProvider is the default IDProvider, using a monotonic entropy source
// per the ulid package's recommended pattern so IDs minted within the same
// millisecond still sort strictly after their predecessor.
type ulidProvider struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewULIDProvider returns the default monotonic ULID-based IDProvider.
func NewULIDProvider() IDProvider {
	return &ulidProvider{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (p *ulidProvider) NewID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), p.entropy)
	return id.String()
}
