// Package logrich implements a structured, multi-sink application logging
// runtime: bound request/job context, a bounded async delivery queue, a
// pluggable set of sinks (console, journald, Windows event log, Graylog,
// Cloud Logging, serial), and an on-demand dump of recently retained
// events.
//
// # Initialization
//
// An application creates a Runtime once, registering whichever sinks it
// needs:
//
//	ctx := context.Background()
//	rt, err := logrich.Init(ctx, logrich.Config{
//		MinLevel: logrich.InfoLevel,
//		Sinks: []logrich.SinkPort{
//			logrich.NewConsoleBackend(os.Stderr),
//		},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer rt.Shutdown(ctx)
//
// # Context binding
//
// Go has no thread-local storage, so the bound context the rest of this
// package's design documents describe is carried as an ordinary
// context.Context value. Bind returns a derived context; once the caller
// stops threading it through, the previous frame reappears automatically:
//
//	ctx, err = rt.Bind(ctx, logrich.LogContext{JobID: "job-42"})
//	logger := rt.Logger("worker")
//	logger.Info(ctx, "started", nil)
//
// WithBind is the scope-guard equivalent for a single call:
//
//	err = rt.WithBind(ctx, logrich.LogContext{RequestID: "req-1"}, func(ctx context.Context) error {
//		_, err := logger.Info(ctx, "handling request", nil)
//		return err
//	})
//
// # Dumping recent history
//
// Dump snapshots the ring buffer without clearing it. Use
// FlushRingBuffer to clear it explicitly:
//
//	text, err := rt.Dump(logrich.DumpOptions{Format: logrich.DumpText, Preset: "short"})
package logrich
