package serviceutil

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext returns a context that is cancelled on SIGINT or SIGTERM. Running work is
// expected to stop submitting and let in-flight units finish.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case sig := <-signals:
			slog.Warn("interrupted, finishing in-flight work", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Fatal logs `err` and exits, it is only meant for command entrypoints.
func Fatal(message string, err error, attrs ...any) {
	slog.Error(message, append([]any{"err", err}, attrs...)...)
	os.Exit(1)
}
