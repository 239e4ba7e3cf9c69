package logrich

import (
	"context"
	"fmt"
	"runtime/debug"
)

// LoggerProxy is a named handle onto a Runtime, the primary object
// application code calls Debug/Info/Warning/Error/Critical on. Multiple
// LoggerProxy values may coexist against the same Runtime, one per
// component name, unlike the teacher's single package-level logger.
type LoggerProxy struct {
	name string
	rt   *Runtime
}

// Name returns the logger's name.
func (p *LoggerProxy) Name() string { return p.name }

func (p *LoggerProxy) log(ctx context.Context, level LogLevel, message string, extra map[string]string, exception *ExceptionInfo) (ProcessResult, error) {
	tk := processEventToolkit{
		ids:             p.rt.cfg.IDs,
		rateLimiter:     p.rt.rateLimit,
		scrubber:        p.rt.scrubber,
		ringBuffer:      p.rt.ringBuffer,
		queue:           p.rt.queue,
		now:             p.rt.cfg.Now,
		diagnostics:     p.rt.cfg.Diagnostics,
		maxMessageBytes: p.rt.cfg.MaxMessageBytes,
		maxExtraBytes:   p.rt.cfg.MaxExtraBytes,
	}
	return processEvent(ctx, p.rt.binder, tk, p.name, level, message, extra, exception)
}

// Debug logs at DebugLevel.
func (p *LoggerProxy) Debug(ctx context.Context, message string, extra map[string]string) (ProcessResult, error) {
	return p.log(ctx, DebugLevel, message, extra, nil)
}

// Info logs at InfoLevel.
func (p *LoggerProxy) Info(ctx context.Context, message string, extra map[string]string) (ProcessResult, error) {
	return p.log(ctx, InfoLevel, message, extra, nil)
}

// Warning logs at WarningLevel.
func (p *LoggerProxy) Warning(ctx context.Context, message string, extra map[string]string) (ProcessResult, error) {
	return p.log(ctx, WarningLevel, message, extra, nil)
}

// Error logs at ErrorLevel.
func (p *LoggerProxy) Error(ctx context.Context, message string, extra map[string]string) (ProcessResult, error) {
	return p.log(ctx, ErrorLevel, message, extra, nil)
}

// Critical logs at CriticalLevel.
func (p *LoggerProxy) Critical(ctx context.Context, message string, extra map[string]string) (ProcessResult, error) {
	return p.log(ctx, CriticalLevel, message, extra, nil)
}

// Exception logs err at level with a captured stack trace attached as the
// event's ExceptionInfo, the entry point for reporting a caught error
// without losing where it happened.
func (p *LoggerProxy) Exception(ctx context.Context, level LogLevel, message string, err error, extra map[string]string) (ProcessResult, error) {
	info := &ExceptionInfo{
		Type:    fmt.Sprintf("%T", err),
		Message: err.Error(),
		Trace:   string(debug.Stack()),
	}
	return p.log(ctx, level, message, extra, info)
}

// V reports whether level is at or above Config.MinLevel, letting callers
// skip building an expensive message. It does not consult per-sink
// thresholds, and an event logged below MinLevel is still retained in the
// ring buffer.
func (p *LoggerProxy) V(level LogLevel) bool {
	return level >= p.rt.cfg.MinLevel
}
