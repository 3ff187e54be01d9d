package runtime

import (
	"context"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// Workers tracks long-running background loops (outbox publisher, sweep worker, consumers)
// so shutdown can wait for them after the servers stop.
type Workers struct {
	logger *slog.Logger
	wg     sync.WaitGroup
}

func NewWorkers(logger *slog.Logger) *Workers {
	return &Workers{logger: logger}
}

// Go runs fn in its own goroutine. A panic is logged and ends only that worker.
func (w *Workers) Go(ctx context.Context, name string, fn func(context.Context)) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				w.logger.Error("worker panicked", "worker", name, "panic", rec)
			}
		}()
		w.logger.Info("worker started", "worker", name)
		fn(ctx)
		w.logger.Info("worker stopped", "worker", name)
	}()
}

// Wait blocks until every worker returned or timeout passed. It reports whether all returned.
func (w *Workers) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
