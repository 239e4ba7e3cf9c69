package logrich

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

type contextKey struct{}

var bindKey = contextKey{}

// ContextBinder attaches and resolves LogContext values against a
// context.Context chain. Go has no thread-local storage, so the "bind
// stack" the source material implements with contextvars is represented
// here by ordinary context.Context value nesting: each Bind returns a
// derived context, and the previous frame reappears automatically once the
// derived one falls out of scope.
type ContextBinder struct {
	ident       SystemIdentityPort
	service     string
	environment string
}

// NewContextBinder returns a ContextBinder resolving identity fields (host,
// user, pid) through ident, and defaulting a root Bind's Service/Environment
// to service/environment when the caller's fields leave them empty.
func NewContextBinder(ident SystemIdentityPort, service, environment string) *ContextBinder {
	return &ContextBinder{ident: ident, service: service, environment: environment}
}

// Bind layers fields on top of whatever LogContext ctx already carries (if
// any), minting a fresh root context when none is bound yet. A root bind
// validates that Service, Environment and JobID resolve to non-empty
// values, failing with ErrContextIncomplete otherwise. Nested binds inherit
// those fields from the parent and are not re-validated. It also enforces
// the process-boundary rule: if the top frame's ProcessID differs from the
// running process, the old pid is appended to ProcessIDChain before the
// override is merged.
func (b *ContextBinder) Bind(ctx context.Context, fields LogContext) (context.Context, error) {
	current, ok := ctx.Value(bindKey).(LogContext)
	pid := os.Getpid()
	var next LogContext
	if !ok {
		next = newRootContext(b.ident, b.service, b.environment, fields)
		next.ProcessID = pid
		if err := validateRequired(next); err != nil {
			return nil, err
		}
	} else {
		current = current.withProcessBoundary(pid)
		next = current.merge(fields)
	}
	return context.WithValue(ctx, bindKey, next), nil
}

// WithBind binds fields for the dynamic extent of fn, mirroring the source
// material's "with binder.bind(...):" scope guard: the derived context
// never escapes fn, so the caller's original ctx is unaffected whether fn
// returns normally or panics.
func (b *ContextBinder) WithBind(ctx context.Context, fields LogContext, fn func(context.Context) error) error {
	bound, err := b.Bind(ctx, fields)
	if err != nil {
		return err
	}
	return fn(bound)
}

// Current returns the LogContext bound on ctx, or ErrContextMissing if none
// has been bound.
func (b *ContextBinder) Current(ctx context.Context) (LogContext, error) {
	current, ok := ctx.Value(bindKey).(LogContext)
	if !ok {
		return LogContext{}, ErrContextMissing
	}
	return current, nil
}

// wireContext is the JSON shape used to hand a bound context to a
// subprocess across an exec boundary.
type wireContext struct {
	Service        string            `json:"service"`
	Environment    string            `json:"environment"`
	JobID          string            `json:"job_id"`
	RequestID      string            `json:"request_id"`
	UserID         string            `json:"user_id"`
	UserName       string            `json:"user_name"`
	Hostname       string            `json:"hostname"`
	TraceID        string            `json:"trace_id"`
	SpanID         string            `json:"span_id"`
	ProcessID      int               `json:"process_id"`
	ProcessIDChain []int             `json:"process_id_chain"`
	Extra          map[string]string `json:"extra"`
	HandoffToken   string            `json:"handoff_token"`
}

// Serialize renders the LogContext bound on ctx for transport to a child
// process (e.g. via an environment variable). Returns ErrContextMissing if
// nothing is bound.
func (b *ContextBinder) Serialize(ctx context.Context) (string, error) {
	current, ok := ctx.Value(bindKey).(LogContext)
	if !ok {
		return "", ErrContextMissing
	}
	wire := wireContext{
		Service:        current.Service,
		Environment:    current.Environment,
		JobID:          current.JobID,
		RequestID:      current.RequestID,
		UserID:         current.UserID,
		UserName:       current.UserName,
		Hostname:       current.Hostname,
		TraceID:        current.TraceID,
		SpanID:         current.SpanID,
		ProcessID:      current.ProcessID,
		ProcessIDChain: current.ProcessIDChain,
		Extra:          current.Extra,
		HandoffToken:   uuid.NewString(),
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("logrich: serialize context: %w", err)
	}
	return string(data), nil
}

// Deserialize restores a LogContext previously produced by Serialize onto
// ctx, exactly as received. It never touches ProcessIDChain itself; the
// next Bind call detects the process boundary and appends to it.
func (b *ContextBinder) Deserialize(ctx context.Context, payload string) (context.Context, error) {
	var wire wireContext
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return nil, fmt.Errorf("logrich: deserialize context: %w", err)
	}
	restored := LogContext{
		Service:        wire.Service,
		Environment:    wire.Environment,
		JobID:          wire.JobID,
		RequestID:      wire.RequestID,
		UserID:         wire.UserID,
		UserName:       wire.UserName,
		Hostname:       wire.Hostname,
		TraceID:        wire.TraceID,
		SpanID:         wire.SpanID,
		ProcessID:      wire.ProcessID,
		ProcessIDChain: append([]int{}, wire.ProcessIDChain...),
		Extra:          wire.Extra,
	}
	if restored.Extra == nil {
		restored.Extra = map[string]string{}
	}
	return context.WithValue(ctx, bindKey, restored), nil
}

// Clear returns a context derived from ctx on which no LogContext resolves:
// Current and Serialize report ErrContextMissing on it, and the next Bind
// starts a fresh root. This is rarely needed given scope-based binding, but mirrors
// the source material's explicit clear() for long-lived worker contexts
// that get re-bound many times.
func (b *ContextBinder) Clear(ctx context.Context) context.Context {
	return context.WithValue(ctx, bindKey, nil)
}
