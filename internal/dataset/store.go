package dataset

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	StateEmpty   = "empty"
	StateSuccess = "success"
	StateError   = "error"
)

var ErrNotLoaded = errors.New("dataset not loaded")

// DatasetLoader produces a fresh Dataset. *Loader implements it.
type DatasetLoader interface {
	Load(ctx context.Context) (*Dataset, error)
	Source() string
}

// Status describes the outcome of the latest load attempt.
type Status struct {
	State       string
	Source      string
	LastAttempt time.Time
	LastSuccess time.Time
	LastError   string
	Fingerprint string
	Warnings    int
	Duration    time.Duration
}

// Result is handed to load hooks after every attempt.
type Result struct {
	Dataset  *Dataset // nil when the attempt failed
	Previous *Dataset
	Err      error
	Duration time.Duration
	Source   string
	At       time.Time
}

// Changed reports whether a successful load produced different data.
func (r Result) Changed() bool {
	if r.Dataset == nil {
		return false
	}
	return r.Previous == nil || r.Previous.Fingerprint != r.Dataset.Fingerprint
}

// Hook runs synchronously after each load attempt.
type Hook func(ctx context.Context, r Result)

// Store holds the current dataset and reloads it once it is older than the
// TTL. Concurrent reloads collapse into one. A failed reload keeps serving
// the previous dataset.
type Store struct {
	loader DatasetLoader
	ttl    time.Duration
	now    func() time.Time
	group  singleflight.Group

	mu        sync.RWMutex
	current   *Dataset
	checkedAt time.Time
	lastErr   error
	status    Status
	hooks     []Hook
}

func NewStore(loader DatasetLoader, ttl time.Duration) *Store {
	return &Store{
		loader: loader,
		ttl:    ttl,
		now:    time.Now,
		status: Status{State: StateEmpty, Source: loader.Source()},
	}
}

// OnLoad registers a hook. Hooks must be registered before the first load.
func (s *Store) OnLoad(h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

// Current returns the dataset, reloading it first when stale.
func (s *Store) Current(ctx context.Context) (*Dataset, error) {
	s.mu.RLock()
	ds, checked, lastErr := s.current, s.checkedAt, s.lastErr
	s.mu.RUnlock()

	if !checked.IsZero() && s.now().Sub(checked) < s.ttl {
		if ds == nil {
			return nil, lastErr
		}
		return ds, nil
	}

	fresh, err := s.reload(ctx)
	if err != nil {
		if prev := s.Peek(); prev != nil {
			return prev, nil
		}
		return nil, err
	}
	return fresh, nil
}

// Refresh forces a reload. The error reports the failed attempt even when a
// previous dataset is still being served.
func (s *Store) Refresh(ctx context.Context) (*Dataset, error) {
	return s.reload(ctx)
}

// Peek returns the current dataset without loading.
func (s *Store) Peek() *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Ready reports whether a dataset has been loaded successfully.
func (s *Store) Ready() bool {
	return s.Peek() != nil
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Store) reload(ctx context.Context) (*Dataset, error) {
	v, err, _ := s.group.Do("load", func() (any, error) {
		// Callers that joined this flight must not lose it to the first
		// caller's cancellation.
		lctx := context.WithoutCancel(ctx)
		start := s.now()
		ds, err := s.loader.Load(lctx)
		elapsed := s.now().Sub(start)

		s.mu.Lock()
		prev := s.current
		s.checkedAt = s.now()
		s.lastErr = err
		s.status.LastAttempt = start
		s.status.Duration = elapsed
		if err != nil {
			s.status.State = StateError
			s.status.LastError = err.Error()
		} else {
			s.current = ds
			s.status = Status{
				State:       StateSuccess,
				Source:      ds.Source,
				LastAttempt: start,
				LastSuccess: ds.LoadedAt,
				Fingerprint: ds.Fingerprint,
				Warnings:    len(ds.Warnings),
				Duration:    elapsed,
			}
		}
		hooks := append([]Hook(nil), s.hooks...)
		s.mu.Unlock()

		res := Result{Dataset: ds, Previous: prev, Err: err, Duration: elapsed, Source: s.loader.Source(), At: start}
		for _, h := range hooks {
			h(lctx, res)
		}
		return ds, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}
