package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"spendboard/internal/amqp"
	"spendboard/internal/dataset"
)

type fakeRefresher struct {
	calls atomic.Int32
	err   error
}

func (f *fakeRefresher) Refresh(context.Context) (*dataset.Dataset, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &dataset.Dataset{Fingerprint: "abc"}, nil
}

type fakeConsumer struct {
	requests []*amqp.RefreshRequest
	errs     []error
}

func (f *fakeConsumer) ConsumeRefresh(ctx context.Context, handler func(context.Context, *amqp.RefreshRequest) error) error {
	for _, req := range f.requests {
		f.errs = append(f.errs, handler(ctx, req))
	}
	return nil
}

func TestHandleRefresh(t *testing.T) {
	store := &fakeRefresher{}
	w := NewRefreshWorker(store, 0)

	if err := w.HandleRefresh(context.Background(), amqp.NewRefreshRequest("etl", "nightly")); err != nil {
		t.Fatalf("HandleRefresh() error = %v", err)
	}
	if store.calls.Load() != 1 {
		t.Errorf("expected 1 refresh, got %d", store.calls.Load())
	}
}

func TestHandleRefresh_Error(t *testing.T) {
	store := &fakeRefresher{err: errors.New("missing file")}
	w := NewRefreshWorker(store, 0)

	err := w.HandleRefresh(context.Background(), amqp.NewRefreshRequest("etl", ""))
	if err == nil {
		t.Fatal("expected error when refresh fails")
	}
	if !errors.Is(err, store.err) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

func TestHandleRefresh_DebouncesBursts(t *testing.T) {
	store := &fakeRefresher{}
	w := NewRefreshWorker(store, time.Minute)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := w.HandleRefresh(ctx, amqp.NewRefreshRequest("etl", "")); err != nil {
			t.Fatalf("HandleRefresh() error = %v", err)
		}
	}
	if store.calls.Load() != 1 {
		t.Errorf("expected burst to collapse into 1 refresh, got %d", store.calls.Load())
	}

	now = now.Add(2 * time.Minute)
	if err := w.HandleRefresh(ctx, amqp.NewRefreshRequest("etl", "")); err != nil {
		t.Fatalf("HandleRefresh() error = %v", err)
	}
	if store.calls.Load() != 2 {
		t.Errorf("expected refresh after interval, got %d", store.calls.Load())
	}
}

func TestRun_DeliversToHandler(t *testing.T) {
	store := &fakeRefresher{}
	consumer := &fakeConsumer{requests: []*amqp.RefreshRequest{
		amqp.NewRefreshRequest("etl", "a"),
		amqp.NewRefreshRequest("etl", "b"),
	}}
	w := NewRefreshWorker(store, 0)

	if err := w.Run(context.Background(), consumer); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if store.calls.Load() != 2 {
		t.Errorf("expected 2 refreshes, got %d", store.calls.Load())
	}
	for i, err := range consumer.errs {
		if err != nil {
			t.Errorf("request %d: unexpected error %v", i, err)
		}
	}
}

func TestRunPeriodic(t *testing.T) {
	store := &fakeRefresher{}
	w := NewRefreshWorker(store, 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.RunPeriodic(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for store.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("periodic refresh did not run")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}
