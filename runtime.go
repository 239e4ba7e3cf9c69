package logrich

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Config configures a Runtime. Service, Environment and at least one Sink
// should be supplied; every other field has a documented default applied
// by Init.
type Config struct {
	// Service and Environment identify the running program and deployment
	// tier. Every root-bound LogContext inherits them unless the caller's
	// Bind call overrides them explicitly. Required, non-empty.
	Service     string
	Environment string

	// MinLevel is the default per-sink severity threshold applied to any
	// sink whose category-specific level below is left unset. It never
	// gates the pipeline itself: every event that resolves a bound context
	// reaches the ring buffer regardless of level, and is filtered only at
	// fan-out time, per sink. Defaults to InfoLevel.
	MinLevel LogLevel

	// ConsoleLevel, BackendLevel and GraylogLevel set the per-sink
	// severity threshold, each overriding MinLevel for its own category.
	// ConsoleLevel applies to *ConsoleBackend, GraylogLevel to
	// *GraylogBackend, and BackendLevel to every other sink. Zero falls
	// back to MinLevel.
	ConsoleLevel LogLevel
	BackendLevel LogLevel
	GraylogLevel LogLevel

	// Sinks receive fanned-out events. At least one should be supplied,
	// though Init does not enforce it.
	Sinks []SinkPort

	// RingBufferCapacity bounds how many recent events CaptureDump can see.
	// Defaults to 10000.
	RingBufferCapacity int

	// RateLimitMax and RateLimitWindow bound how many events per
	// (logger, level) are admitted per window. A zero Max disables rate
	// limiting.
	RateLimitMax    int
	RateLimitWindow time.Duration

	// MaxMessageBytes and MaxExtraBytes cap the size of a message and of
	// each Extra value before retention or fan-out. Truncated payloads
	// emit a payload_truncated diagnostic. Zero disables truncation.
	MaxMessageBytes int
	MaxExtraBytes   int

	// ScrubPatterns maps a field-name regular expression to a value
	// regular expression: a field whose name matches has the matched
	// portion of its value replaced before retention or fan-out. An empty
	// value pattern redacts the field's entire value.
	ScrubPatterns map[string]string

	// Queue configures the async delivery boundary. Capacity/policy/
	// timeouts default per QueueConfig's own zero-value handling.
	Queue QueueConfig

	// Diagnostics receives internal operational signals. Defaults to a
	// no-op if nil; callers wanting visibility should pass
	// NewZerologDiagnosticHook() or their own DiagnosticFunc.
	Diagnostics DiagnosticFunc

	// Identity resolves ambient identity fields for context binding.
	// Defaults to NewSystemIdentity().
	Identity SystemIdentityPort

	// IDs mints event identifiers. Defaults to NewULIDProvider().
	IDs IDProvider

	// Clock is used for rate limiting. Defaults to the system clock.
	Clock Clock

	// Now returns the current time for event timestamps. Defaults to
	// time.Now.
	Now func() time.Time
}

// effectiveThreshold returns specific if set, otherwise fallback. Both may
// be zero, meaning "leave the sink's own constructor default in place".
func effectiveThreshold(specific, fallback LogLevel) LogLevel {
	if specific != 0 {
		return specific
	}
	return fallback
}

func (c *Config) applyDefaults() {
	if c.MinLevel == 0 {
		c.MinLevel = InfoLevel
	}
	if c.RingBufferCapacity <= 0 {
		c.RingBufferCapacity = 10000
	}
	if c.Identity == nil {
		c.Identity = NewSystemIdentity()
	}
	if c.IDs == nil {
		c.IDs = NewULIDProvider()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Queue.Diagnostics == nil {
		c.Queue.Diagnostics = c.Diagnostics
	}
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Service) == "" {
		return fmt.Errorf("%w: Service must be set", ErrConfigInvalid)
	}
	if strings.TrimSpace(c.Environment) == "" {
		return fmt.Errorf("%w: Environment must be set", ErrConfigInvalid)
	}
	if c.RateLimitMax < 0 {
		return fmt.Errorf("%w: RateLimitMax must be >= 0", ErrConfigInvalid)
	}
	if c.RateLimitMax > 0 && c.RateLimitWindow <= 0 {
		return fmt.Errorf("%w: RateLimitWindow must be positive when RateLimitMax is set", ErrConfigInvalid)
	}
	return nil
}

// Runtime is the C1 façade: the single object a host application interacts
// with to bind context, obtain loggers, capture dumps and shut down.
type Runtime struct {
	cfg        Config
	binder     *ContextBinder
	ringBuffer *RingBuffer
	rateLimit  *RateLimiter
	scrubber   *Scrubber
	queue      *QueueAdapter
	fanOut     *FanOut
	dump       *DumpAdapter
}

var runtimeSingleton atomic.Pointer[Runtime]

// Init validates cfg, builds a Runtime and installs it as the process-wide
// singleton retrievable via Get. Returns ErrAlreadyInitialized if a
// Runtime is already installed; callers must Shutdown first.
func Init(ctx context.Context, cfg Config) (*Runtime, error) {
	if !runtimeSingleton.CompareAndSwap(nil, &Runtime{}) {
		return nil, ErrAlreadyInitialized
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		runtimeSingleton.Store(nil)
		return nil, err
	}

	scrubber, err := NewScrubber(cfg.ScrubPatterns)
	if err != nil {
		runtimeSingleton.Store(nil)
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	rt := &Runtime{
		cfg:        cfg,
		binder:     NewContextBinder(cfg.Identity, cfg.Service, cfg.Environment),
		ringBuffer: NewRingBuffer(cfg.RingBufferCapacity),
		rateLimit:  NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow, cfg.Clock),
		scrubber:   scrubber,
		dump:       NewDumpAdapter(),
		fanOut:     NewFanOut(cfg.Diagnostics),
	}
	for _, sink := range cfg.Sinks {
		rt.fanOut.Register(sink)
		switch s := sink.(type) {
		case *ConsoleBackend:
			if lvl := effectiveThreshold(cfg.ConsoleLevel, cfg.MinLevel); lvl != 0 {
				s.SetThreshold(lvl)
			}
		case *GraylogBackend:
			if lvl := effectiveThreshold(cfg.GraylogLevel, cfg.MinLevel); lvl != 0 {
				s.SetThreshold(lvl)
			}
		default:
			if lvl := effectiveThreshold(cfg.BackendLevel, cfg.MinLevel); lvl != 0 {
				sink.SetThreshold(lvl)
			}
		}
	}
	rt.queue = NewQueueAdapter(cfg.Queue, func(ctx context.Context, ev LogEvent) error {
		return rt.fanOut.Dispatch(ctx, ev)
	})
	if err := rt.queue.Start(ctx); err != nil {
		runtimeSingleton.Store(nil)
		return nil, err
	}

	runtimeSingleton.Store(rt)
	return rt, nil
}

// Get returns the installed Runtime singleton, or ErrNotInitialized if
// Init has not been called.
func Get() (*Runtime, error) {
	rt := runtimeSingleton.Load()
	if rt == nil || rt.binder == nil {
		return nil, ErrNotInitialized
	}
	return rt, nil
}

// Bind delegates to the runtime's ContextBinder.
func (r *Runtime) Bind(ctx context.Context, fields LogContext) (context.Context, error) {
	return r.binder.Bind(ctx, fields)
}

// WithBind delegates to the runtime's ContextBinder.
func (r *Runtime) WithBind(ctx context.Context, fields LogContext, fn func(context.Context) error) error {
	return r.binder.WithBind(ctx, fields, fn)
}

// Logger returns a LoggerProxy bound to name, the entry point for emitting
// events through this Runtime.
func (r *Runtime) Logger(name string) *LoggerProxy {
	return &LoggerProxy{name: name, rt: r}
}

// GetMinimumLogLevel returns the lowest level that could possibly reach any
// sink: the lowest per-sink Threshold currently registered, or DebugLevel
// when no sink is registered. Callers can use it the same way as
// LoggerProxy.V to skip expensive message construction.
func (r *Runtime) GetMinimumLogLevel() LogLevel {
	return r.fanOut.MinThreshold()
}

// Dump renders the currently retained events per opts, without flushing
// the ring buffer.
func (r *Runtime) Dump(opts DumpOptions) (string, error) {
	return captureDump(r.ringBuffer, r.dump, opts)
}

// FlushRingBuffer returns the currently retained events and clears the
// buffer, an explicit operation the caller must opt into (see resolved
// open question on dump/flush separation).
func (r *Runtime) FlushRingBuffer() []LogEvent {
	return r.ringBuffer.Flush()
}

// Shutdown stops the queue transactionally and closes every sink. If the
// queue fails to stop within its deadline, the runtime is left installed
// as the singleton so the caller can retry Shutdown rather than losing the
// ability to reach it; the singleton is only cleared once the queue has
// actually stopped.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r.queue != nil {
		if err := r.queue.Stop(ctx); err != nil {
			return err
		}
	}
	closeErr := r.fanOut.Close()
	runtimeSingleton.Store(nil)
	return closeErr
}
