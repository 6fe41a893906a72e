package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"spendboard/internal/amqp"
	"spendboard/internal/dataset"
	"spendboard/internal/metrics"
	"spendboard/internal/risk"
	"spendboard/internal/storage"
)

// SnapshotStore persists load history. *storage.SQLiteRepository implements it.
type SnapshotStore interface {
	Record(ctx context.Context, s storage.Snapshot) (int64, error)
	Previous(ctx context.Context, fingerprint string) (*storage.Snapshot, error)
}

// LoadPublisher announces new datasets. *amqp.Client implements it.
type LoadPublisher interface {
	PublishDatasetLoaded(ctx context.Context, msg *amqp.DatasetLoadedMessage) error
}

// LoadRecorder is registered as a dataset store hook. It records snapshots,
// publishes load events and updates metrics. Every collaborator is optional.
type LoadRecorder struct {
	register  *risk.Register
	snapshots SnapshotStore
	publisher LoadPublisher
	metrics   *metrics.Metrics

	mu         sync.Mutex
	lastFailed bool
}

func NewLoadRecorder(register *risk.Register, snapshots SnapshotStore, publisher LoadPublisher, m *metrics.Metrics) *LoadRecorder {
	return &LoadRecorder{
		register:  register,
		snapshots: snapshots,
		publisher: publisher,
		metrics:   m,
	}
}

// Hook has the dataset.Hook signature.
func (r *LoadRecorder) Hook(ctx context.Context, res dataset.Result) {
	var counts risk.Counts
	if res.Dataset != nil {
		counts = r.countsOf(res.Dataset)
	}
	r.observe(res, counts)

	if r.shouldRecord(res) && r.snapshots != nil {
		id, err := r.snapshots.Record(ctx, SnapshotOf(res, counts))
		if err != nil {
			slog.ErrorContext(ctx, "Failed to record load snapshot", "error", err)
		} else {
			slog.DebugContext(ctx, "Recorded load snapshot", "id", id, "status", statusOf(res))
		}
	}

	if res.Changed() && r.publisher != nil {
		if err := r.publisher.PublishDatasetLoaded(ctx, LoadedMessage(res.Dataset)); err != nil {
			// The dashboard keeps working without the broker.
			slog.WarnContext(ctx, "Failed to publish dataset loaded event",
				"fingerprint", res.Dataset.Fingerprint,
				"error", err)
		}
	}
}

// shouldRecord keeps history compact: a success is recorded when the content
// changed and a failure only when it starts a run of failures.
func (r *LoadRecorder) shouldRecord(res dataset.Result) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.Err != nil {
		first := !r.lastFailed
		r.lastFailed = true
		return first
	}
	recovered := r.lastFailed
	r.lastFailed = false
	return res.Changed() || recovered
}

func (r *LoadRecorder) observe(res dataset.Result, counts risk.Counts) {
	if r.metrics == nil {
		return
	}
	r.metrics.DatasetLoads.WithLabelValues(statusOf(res)).Inc()
	r.metrics.DatasetLoadDuration.Observe(res.Duration.Seconds())
	if res.Dataset == nil {
		return
	}
	rows := res.Dataset.Counts()
	r.metrics.DatasetRows.WithLabelValues("factories").Set(float64(rows.Factories))
	r.metrics.DatasetRows.WithLabelValues("suppliers").Set(float64(rows.Suppliers))
	r.metrics.DatasetRows.WithLabelValues("subcategories").Set(float64(rows.Subcategories))
	r.metrics.DatasetWarnings.Set(float64(len(res.Dataset.Warnings)))
	r.metrics.DatasetLastSuccess.Set(float64(res.Dataset.LoadedAt.Unix()))
	r.metrics.RiskIndicators.WithLabelValues("high_dependency").Set(float64(counts.HighDependency))
	r.metrics.RiskIndicators.WithLabelValues("significant_decline").Set(float64(counts.SignificantDecline))
	r.metrics.RiskIndicators.WithLabelValues("top5_share").Set(counts.Top5Share)
	r.metrics.RiskIndicators.WithLabelValues("exposed_suppliers").Set(float64(counts.Exposed))
}

func (r *LoadRecorder) countsOf(ds *dataset.Dataset) risk.Counts {
	exposed := 0
	if r.register != nil {
		exposed = risk.ExposedSuppliers(r.register, ds)
	}
	return risk.CountsOf(risk.ComputeIndicators(ds), exposed)
}

// Tracking compares the indicators of ds with the newest recorded dataset
// whose content differs.
func (r *LoadRecorder) Tracking(ctx context.Context, ds *dataset.Dataset) (risk.Tracking, error) {
	current := r.countsOf(ds)
	if r.snapshots == nil {
		return risk.NewTracking(current, nil), nil
	}
	prev, err := r.snapshots.Previous(ctx, ds.Fingerprint)
	if err != nil {
		return risk.NewTracking(current, nil), fmt.Errorf("load previous snapshot: %w", err)
	}
	if prev == nil {
		return risk.NewTracking(current, nil), nil
	}
	return risk.NewTracking(current, &risk.Counts{
		HighDependency:     prev.HighDependency,
		SignificantDecline: prev.SignificantDecline,
		Top5Share:          prev.Top5Share,
		Exposed:            prev.ExposedSuppliers,
	}), nil
}

// SnapshotOf converts a load result into a history row.
func SnapshotOf(res dataset.Result, counts risk.Counts) storage.Snapshot {
	s := storage.Snapshot{
		LoadedAt: res.At,
		Source:   res.Source,
		Status:   statusOf(res),
		Duration: res.Duration,
	}
	if res.Err != nil {
		s.Error = res.Err.Error()
		if res.Previous != nil {
			s.Fingerprint = res.Previous.Fingerprint
		}
		return s
	}

	ds := res.Dataset
	rows := ds.Counts()
	s.LoadedAt = ds.LoadedAt
	s.Fingerprint = ds.Fingerprint
	s.Source = ds.Source
	s.FactoryRows = rows.Factories
	s.SupplierRows = rows.Suppliers
	s.SubcategoryRows = rows.Subcategories
	s.Warnings = len(ds.Warnings)
	if total, ok := ds.Total(); ok {
		s.Total2024, s.Total2025 = total.Actual2024, total.Forecast2025
	} else {
		s.Total2024, s.Total2025 = ds.SupplierTotals()
	}
	s.HighDependency = counts.HighDependency
	s.SignificantDecline = counts.SignificantDecline
	s.Top5Share = counts.Top5Share
	s.ExposedSuppliers = counts.Exposed
	return s
}

// LoadedMessage builds the event announcing ds.
func LoadedMessage(ds *dataset.Dataset) *amqp.DatasetLoadedMessage {
	rows := ds.Counts()
	return &amqp.DatasetLoadedMessage{
		Fingerprint:   ds.Fingerprint,
		Source:        ds.Source,
		Factories:     rows.Factories,
		Suppliers:     rows.Suppliers,
		Subcategories: rows.Subcategories,
		Warnings:      len(ds.Warnings),
		LoadedAt:      ds.LoadedAt,
	}
}

func statusOf(res dataset.Result) string {
	if res.Err != nil || res.Dataset == nil {
		return storage.StatusError
	}
	return storage.StatusSuccess
}
