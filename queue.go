package logrich

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// DropPolicy controls QueueAdapter behavior when its bounded channel is
// saturated.
type DropPolicy int

const (
	// BlockPolicy makes Enqueue wait for room, applying backpressure to
	// the caller.
	BlockPolicy DropPolicy = iota
	// DropPolicyOldest evicts the oldest queued event to make room for
	// the new one.
	DropPolicyOldest
	// DropPolicyNewest rejects the incoming event, returning ErrQueueFull.
	DropPolicyNewest
)

// QueueConfig configures a QueueAdapter.
type QueueConfig struct {
	Capacity          int
	Policy            DropPolicy
	ShutdownTimeout   time.Duration
	FailureResetAfter time.Duration

	// PutTimeout bounds how long Enqueue under BlockPolicy waits for room
	// before giving up and returning ErrQueueFull. Defaults to 1 second.
	PutTimeout time.Duration

	// FailureCooldown is how long the worker pauses after a handler error
	// before resuming consumption, giving a flaky downstream sink a moment
	// to recover instead of hot-looping worker_failed diagnostics.
	// Defaults to 1 second.
	FailureCooldown time.Duration

	Diagnostics DiagnosticFunc
}

// QueueAdapter is the single-consumer bounded async boundary between
// ProcessEvent and sink fan-out. Its worker runs as a suture.Service so a
// panicking worker goroutine is restarted automatically by the supervisor
// instead of silently wedging log delivery.
type QueueAdapter struct {
	cfg     QueueConfig
	handler func(context.Context, LogEvent) error

	mu           sync.Mutex
	ch           chan LogEvent
	sup          *suture.Supervisor
	supCancel    context.CancelFunc
	supDone      <-chan error
	workerFailed bool
	degraded     bool
	lastFailure  time.Time
}

// NewQueueAdapter returns a QueueAdapter delivering dequeued events to
// handler (typically the fan-out layer).
func NewQueueAdapter(cfg QueueConfig, handler func(context.Context, LogEvent) error) *QueueAdapter {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1024
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if cfg.FailureResetAfter <= 0 {
		cfg.FailureResetAfter = 30 * time.Second
	}
	if cfg.PutTimeout <= 0 {
		cfg.PutTimeout = time.Second
	}
	if cfg.FailureCooldown <= 0 {
		cfg.FailureCooldown = time.Second
	}
	return &QueueAdapter{
		cfg:     cfg,
		handler: handler,
		ch:      make(chan LogEvent, cfg.Capacity),
	}
}

// Start launches the supervised worker. It returns once the worker service
// has been registered; the worker itself runs until Stop is called or ctx
// is canceled.
func (q *QueueAdapter) Start(ctx context.Context) error {
	handler := &sutureslog.Handler{Logger: slog.Default()}
	sup := suture.New("logrich-queue", suture.Spec{
		EventHook:        handler.MustHook(),
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   time.Second,
		Timeout:          q.cfg.ShutdownTimeout,
	})
	sup.Add(&queueWorker{q: q})

	supCtx, cancel := context.WithCancel(ctx)
	q.mu.Lock()
	q.sup = sup
	q.supCancel = cancel
	q.supDone = sup.ServeBackground(supCtx)
	q.mu.Unlock()
	return nil
}

// Stop drains and stops the queue transactionally: it waits up to
// cfg.ShutdownTimeout for the worker to empty the channel, then cancels the
// worker and waits up to cfg.ShutdownTimeout again for the supervisor to
// stop. Enqueue stays open while Stop runs. Returns ErrShutdownTimeout if
// either deadline is exceeded, or ctx's error if ctx ends during the drain.
func (q *QueueAdapter) Stop(ctx context.Context) error {
	q.mu.Lock()
	sup := q.sup
	cancel := q.supCancel
	done := q.supDone
	q.mu.Unlock()
	if sup == nil {
		return nil
	}

	drained := make(chan struct{})
	go func() {
		for len(q.ch) > 0 {
			time.Sleep(time.Millisecond)
		}
		close(drained)
	}()

	select {
	case <-drained:
	case <-time.After(q.cfg.ShutdownTimeout):
		emit(q.cfg.Diagnostics, DiagQueueShutdownTimeout, map[string]any{"pending": len(q.ch)})
		return ErrShutdownTimeout
	case <-ctx.Done():
		return ctx.Err()
	}

	stopCtx, cancelTimeout := context.WithTimeout(context.Background(), q.cfg.ShutdownTimeout)
	defer cancelTimeout()
	cancel()
	select {
	case <-done:
	case <-stopCtx.Done():
		emit(q.cfg.Diagnostics, DiagQueueShutdownTimeout, nil)
		return ErrShutdownTimeout
	}
	return nil
}

// Enqueue submits ev for asynchronous delivery, applying the configured
// DropPolicy if the channel is full. While the queue is degraded after a
// worker failure, a full channel instead drops ev, emits queue_degraded and
// returns nil, whatever the DropPolicy.
func (q *QueueAdapter) Enqueue(ev LogEvent) error {
	q.mu.Lock()
	degraded := q.degraded
	q.mu.Unlock()
	if degraded {
		select {
		case q.ch <- ev:
		default:
			emit(q.cfg.Diagnostics, DiagQueueDegraded, map[string]any{"event_id": ev.EventID})
		}
		return nil
	}

	switch q.cfg.Policy {
	case BlockPolicy:
		select {
		case q.ch <- ev:
			return nil
		case <-time.After(q.cfg.PutTimeout):
			return ErrQueueFull
		}
	case DropPolicyNewest:
		select {
		case q.ch <- ev:
			return nil
		default:
			return ErrQueueFull
		}
	case DropPolicyOldest:
		for {
			select {
			case q.ch <- ev:
				return nil
			default:
				select {
				case <-q.ch:
				default:
				}
			}
		}
	default:
		return errors.New("logrich: unknown drop policy")
	}
}

func (q *QueueAdapter) markFailure() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.workerFailed = true
	q.lastFailure = time.Now()
	if !q.degraded {
		q.degraded = true
		emit(q.cfg.Diagnostics, DiagQueueDegraded, nil)
	}
}

func (q *QueueAdapter) maybeResetFailure() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.workerFailed && time.Since(q.lastFailure) > q.cfg.FailureResetAfter {
		q.workerFailed = false
		q.degraded = false
	}
}

// queueWorker is the suture.Service consuming q.ch. An error returned by
// handler does not stop it: the worker records the failure, emits
// worker_failed, pauses for FailureCooldown and resumes. A panic inside
// handler ends Serve, and the supervisor restarts the service under its
// backoff policy without losing events still in q.ch.
type queueWorker struct {
	q *QueueAdapter
}

func (w *queueWorker) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-w.q.ch:
			w.q.maybeResetFailure()
			if err := w.q.handler(ctx, ev); err != nil {
				w.q.markFailure()
				emit(w.q.cfg.Diagnostics, DiagWorkerFailed, map[string]any{"error": err.Error()})
				select {
				case <-time.After(w.q.cfg.FailureCooldown):
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}
