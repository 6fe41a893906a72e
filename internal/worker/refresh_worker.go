package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"spendboard/internal/amqp"
	"spendboard/internal/dataset"
)

// Refresher reloads the dataset. *dataset.Store implements it.
type Refresher interface {
	Refresh(ctx context.Context) (*dataset.Dataset, error)
}

// RefreshConsumer delivers refresh requests. *amqp.Client implements it.
type RefreshConsumer interface {
	ConsumeRefresh(ctx context.Context, handler func(context.Context, *amqp.RefreshRequest) error) error
}

// RefreshWorker reloads the dataset when an upstream job announces new
// extracts, and optionally on a fixed interval so that page requests rarely
// pay for a load.
type RefreshWorker struct {
	store       Refresher
	minInterval time.Duration
	now         func() time.Time

	mu      sync.Mutex
	lastRun time.Time
}

// NewRefreshWorker creates a worker. Requests arriving less than
// minInterval after the previous refresh are acknowledged without reloading.
func NewRefreshWorker(store Refresher, minInterval time.Duration) *RefreshWorker {
	return &RefreshWorker{store: store, minInterval: minInterval, now: time.Now}
}

// HandleRefresh processes one refresh request. A returned error makes the
// consumer requeue the message.
func (w *RefreshWorker) HandleRefresh(ctx context.Context, req *amqp.RefreshRequest) error {
	slog.InfoContext(ctx, "Processing refresh request",
		"requested_by", req.RequestedBy,
		"reason", req.Reason)

	if w.recentlyRefreshed() {
		slog.InfoContext(ctx, "Skipping refresh, dataset was reloaded recently",
			"requested_by", req.RequestedBy,
			"min_interval", w.minInterval)
		return nil
	}

	ds, err := w.store.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh dataset: %w", err)
	}
	w.markRun()

	slog.InfoContext(ctx, "Dataset refreshed on request",
		"requested_by", req.RequestedBy,
		"fingerprint", ds.Fingerprint,
		"warnings", len(ds.Warnings))
	return nil
}

// Run consumes refresh requests until ctx is cancelled.
func (w *RefreshWorker) Run(ctx context.Context, consumer RefreshConsumer) error {
	return consumer.ConsumeRefresh(ctx, w.HandleRefresh)
}

// RunPeriodic refreshes the dataset every interval until ctx is cancelled.
// Failures are logged; the store keeps serving the previous dataset.
func (w *RefreshWorker) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Periodic refresh started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Periodic refresh stopped")
			return
		case <-ticker.C:
			if _, err := w.store.Refresh(ctx); err != nil {
				slog.WarnContext(ctx, "Periodic refresh failed", "error", err)
				continue
			}
			w.markRun()
		}
	}
}

func (w *RefreshWorker) recentlyRefreshed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.minInterval > 0 && !w.lastRun.IsZero() && w.now().Sub(w.lastRun) < w.minInterval
}

func (w *RefreshWorker) markRun() {
	w.mu.Lock()
	w.lastRun = w.now()
	w.mu.Unlock()
}
