package usecase

import (
	"context"
	"log/slog"
	"time"

	"pricetracker/internal/ports"
)

// Runner wires the scheduler driver with the watcher sweep.
type Runner struct {
	driver  ports.Scheduler
	watcher *Watcher
	logger  *slog.Logger
}

// NewRunner returns a helper to start/stop the recurring sweep.
func NewRunner(driver ports.Scheduler, watcher *Watcher, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{driver: driver, watcher: watcher, logger: logger}
}

// Start registers the sweep with the provided scheduler.
func (r *Runner) Start(ctx context.Context) error {
	if r.driver == nil || r.watcher == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if _, err := r.watcher.Sweep(ctx, trigger); err != nil {
			r.logger.Error("sweep failed", "error", err)
		}
	}

	return r.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (r *Runner) Stop(ctx context.Context) error {
	if r.driver == nil {
		return nil
	}

	return r.driver.Stop(ctx)
}
