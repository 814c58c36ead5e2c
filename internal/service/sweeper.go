package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/kf5fay/group-gifting/internal/metrics"
)

// Sweeper periodically deletes groups that have outlived the retention window.
// It operates on the aggregate table only and never assumes exclusive access
// to any single document, so it is safe alongside ordinary reads and writes:
// it can only ever touch documents that are already stale.
type Sweeper struct {
	service  *GroupService
	metrics  *metrics.Metrics
	maxAge   time.Duration
	interval time.Duration
}

// NewSweeper creates a sweeper that removes groups unmodified for maxAge,
// checking every interval.
func NewSweeper(svc *GroupService, m *metrics.Metrics, maxAge, interval time.Duration) *Sweeper {
	return &Sweeper{service: svc, metrics: m, maxAge: maxAge, interval: interval}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
// A failed sweep is logged and retried on the next tick; it is never fatal.
func (w *Sweeper) Run(ctx context.Context) {
	slog.Info("Retention sweeper started", "max_age", w.maxAge, "interval", w.interval)

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Retention sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Sweeper) sweep(ctx context.Context) {
	n, err := w.service.SweepExpired(ctx, w.maxAge)
	if err != nil {
		slog.Error("Sweep failed", "error", err)
		w.metrics.SweepFailures.Inc()
		return
	}
	w.metrics.GroupsSwept.Add(float64(n))
}
