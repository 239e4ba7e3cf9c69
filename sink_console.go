package logrich

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

type styleFunc func(string) string

// ConsoleBackend writes events to the writer given to NewConsoleBackend,
// with per-level colored styling when that writer is an attached terminal,
// and plain text otherwise.
type ConsoleBackend struct {
	thresholdGate
	mu       sync.Mutex
	writer   io.Writer
	styled   bool
	styleFor map[LogLevel]styleFunc
}

// NewConsoleBackend returns a ConsoleBackend writing to writer. Coloring is
// enabled automatically when writer is a terminal, matching the teacher's
// stderr backend but with real style detection instead of always-plain
// output.
func NewConsoleBackend(writer io.Writer) *ConsoleBackend {
	cb := &ConsoleBackend{thresholdGate: newThresholdGate(DebugLevel), writer: writer}
	if f, ok := writer.(*os.File); ok {
		cb.styled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	profile := termenv.ColorProfile()
	cb.styleFor = map[LogLevel]styleFunc{
		DebugLevel: func(s string) string {
			return termenv.String(s).Foreground(profile.Color("245")).String()
		},
		InfoLevel: func(s string) string {
			return termenv.String(s).Foreground(profile.Color("39")).String()
		},
		WarningLevel: func(s string) string {
			return termenv.String(s).Foreground(profile.Color("214")).Bold().String()
		},
		ErrorLevel: func(s string) string {
			return termenv.String(s).Foreground(profile.Color("196")).Bold().String()
		},
		CriticalLevel: func(s string) string {
			return termenv.String(s).Foreground(profile.Color("199")).Bold().Underline().String()
		},
	}
	return cb
}

// Name implements SinkPort.
func (cb *ConsoleBackend) Name() string { return "console" }

// Write implements SinkPort.
func (cb *ConsoleBackend) Write(_ context.Context, ev LogEvent) error {
	line := fmt.Sprintf("%s %s [%s] %s",
		ev.Timestamp.UTC().Format(time.RFC3339),
		ev.Level.Icon(),
		ev.LoggerName,
		ev.Message,
	)
	if cb.styled {
		if style, ok := cb.styleFor[ev.Level]; ok {
			line = style(line)
		}
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	_, err := fmt.Fprintln(cb.writer, line)
	if err != nil {
		return fmt.Errorf("logrich: console write: %w", err)
	}
	return nil
}

// Close implements SinkPort. Console output requires no cleanup.
func (cb *ConsoleBackend) Close() error { return nil }
