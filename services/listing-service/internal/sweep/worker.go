package sweep

import (
	"context"
	"log/slog"
	"time"
)

type Worker struct {
	sweeper  *Sweeper
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
}

type WorkerConfig struct {
	Interval time.Duration
}

func NewWorker(sweeper *Sweeper, logger *slog.Logger, cfg WorkerConfig) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &Worker{
		sweeper:  sweeper,
		logger:   logger,
		interval: cfg.Interval,
		now:      time.Now,
	}
}

// Run sweeps once on start, then on every tick until ctx is done.
func (w *Worker) Run(ctx context.Context) {
	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	if _, err := w.sweeper.Sweep(ctx, w.now()); err != nil && ctx.Err() == nil {
		w.logger.Error("periodic sweep failed", "err", err)
	}
}
