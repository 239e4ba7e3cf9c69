package logrich

import "errors"

// Sentinel errors returned by the public API. Wrap with fmt.Errorf("...: %w", err)
// when adding call-site detail; callers should use errors.Is against these.
var (
	// ErrContextMissing is returned when an operation requires a bound
	// LogContext but none is present on the supplied context.Context.
	ErrContextMissing = errors.New("logrich: no bound context")

	// ErrContextIncomplete is returned by Bind when required identity
	// fields cannot be resolved and no override was supplied.
	ErrContextIncomplete = errors.New("logrich: incomplete context")

	// ErrConfigInvalid is returned by Init when the supplied Config fails
	// validation.
	ErrConfigInvalid = errors.New("logrich: invalid config")

	// ErrAlreadyInitialized is returned by Init when a Runtime is already
	// installed as the process-wide singleton.
	ErrAlreadyInitialized = errors.New("logrich: runtime already initialized")

	// ErrNotInitialized is returned by Get when no Runtime has been
	// installed.
	ErrNotInitialized = errors.New("logrich: runtime not initialized")

	// ErrQueueFull is returned by the queue adapter when the bounded
	// channel is saturated: at once under DropPolicyNewest, or after
	// PutTimeout under BlockPolicy.
	ErrQueueFull = errors.New("logrich: queue full")

	// ErrShutdownTimeout is returned when Shutdown could not drain the
	// queue within its deadline.
	ErrShutdownTimeout = errors.New("logrich: shutdown deadline exceeded")

	// ErrTemplateInvalid is returned by the dump adapter when a template
	// or preset name cannot be resolved or fails to render.
	ErrTemplateInvalid = errors.New("logrich: invalid dump template")

	// ErrUnsupportedPlatform is returned by sinks that have no
	// implementation on the running GOOS.
	ErrUnsupportedPlatform = errors.New("logrich: sink not supported on this platform")
)
