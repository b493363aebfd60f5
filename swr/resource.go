// Package swr binds API endpoints to a shared cache.Engine with
// stale-while-revalidate semantics.
package swr

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/totegamma/admindata/cache"
)

const DefaultStaleTime = 5 * time.Minute

// Fetcher loads the payload of endpoint.
type Fetcher[T any] func(ctx context.Context, endpoint string) (T, error)

// State is what a consumer renders.
type State[T any] struct {
	Data    T
	HasData bool
	Loading bool
	Err     error
}

type Option func(*options)

type options struct {
	staleTime time.Duration
	now       func() time.Time
}

// WithStaleTime sets how long cached data counts as fresh.
func WithStaleTime(d time.Duration) Option {
	return func(o *options) {
		o.staleTime = d
	}
}

func withClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// Resource is the binding of one endpoint. At most one fetch per Resource
// is in flight at any time.
type Resource[T any] struct {
	engine    *cache.Engine
	endpoint  string
	fetch     Fetcher[T]
	staleTime time.Duration
	now       func() time.Time

	mu       sync.Mutex
	state    State[T]
	revision uint64
	inflight bool
	refetch  bool
	changes  chan struct{}
	wg       sync.WaitGroup
}

// New binds endpoint. An empty endpoint yields a Resource that never
// fetches.
func New[T any](engine *cache.Engine, endpoint string, fetch Fetcher[T], opts ...Option) *Resource[T] {
	o := options{staleTime: DefaultStaleTime, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Resource[T]{
		engine:    engine,
		endpoint:  endpoint,
		fetch:     fetch,
		staleTime: o.staleTime,
		now:       o.now,
		changes:   make(chan struct{}),
	}

	if endpoint == "" {
		return r
	}
	if entry, ok := engine.Get(endpoint); ok {
		r.adopt(entry)
	} else {
		r.state.Loading = true
	}
	return r
}

// State returns a snapshot.
func (r *Resource[T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Changes returns a channel closed at the next state change.
func (r *Resource[T]) Changes() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.changes
}

// Wait blocks until no fetch is in flight.
func (r *Resource[T]) Wait() {
	r.wg.Wait()
}

// Evaluate compares the cache with the current state and fetches when the
// entry is missing or stale.
func (r *Resource[T]) Evaluate(ctx context.Context) {
	if r.endpoint == "" {
		return
	}
	entry, ok := r.engine.Get(r.endpoint)

	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case !ok:
		if !r.inflight {
			r.start(ctx, true)
		}
	case r.now().Sub(entry.Timestamp) > r.staleTime:
		if r.adopt(entry) {
			r.notify()
		}
		if !r.inflight {
			r.start(ctx, false)
		}
	case entry.Revision != r.revision:
		if r.adopt(entry) {
			r.notify()
		}
	}
}

// Refresh fetches in the foreground. When a fetch is already running, a
// new one follows as soon as it settles.
func (r *Resource[T]) Refresh(ctx context.Context) {
	if r.endpoint == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inflight {
		r.refetch = true
		if !r.state.Loading {
			r.state.Loading = true
			r.notify()
		}
		return
	}
	r.start(ctx, true)
}

// Watch evaluates now and again after every engine version change until
// ctx is done.
func (r *Resource[T]) Watch(ctx context.Context) {
	for {
		changed := r.engine.Changed()
		r.Evaluate(ctx)
		select {
		case <-ctx.Done():
			return
		case <-changed:
		}
	}
}

// start must be called with mu held.
func (r *Resource[T]) start(ctx context.Context, foreground bool) {
	r.inflight = true
	if foreground && !r.state.Loading {
		r.state.Loading = true
		r.notify()
	}

	seq := r.engine.Begin(r.endpoint)
	// fetches outlive the caller; late answers are dropped by seq
	ctx = context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		data, err := r.fetch(ctx, r.endpoint)
		r.settle(ctx, seq, data, err)
	}()
}

func (r *Resource[T]) settle(ctx context.Context, seq uint64, data T, err error) {
	var (
		entry   cache.Entry
		applied bool
	)
	if err == nil {
		entry, applied = r.engine.Commit(r.endpoint, seq, data)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.inflight = false
	r.state.Loading = false

	switch {
	case err != nil:
		slog.DebugContext(
			ctx, "fetch failed",
			slog.String("endpoint", r.endpoint),
			slog.String("error", err.Error()),
			slog.String("module", "swr"),
		)
		r.state.Err = err
	case applied:
		r.state.Err = nil
		r.adopt(entry)
	case entry.Key != "":
		// a newer payload won
		r.state.Err = nil
		r.adopt(entry)
	default:
		// invalidated while in flight
		r.refetch = true
	}

	if r.refetch {
		r.refetch = false
		r.start(ctx, true)
	}
	r.notify()
}

// adopt must be called with mu held. It reports whether the state changed.
func (r *Resource[T]) adopt(entry cache.Entry) bool {
	if entry.Revision == r.revision && r.state.HasData {
		return false
	}
	data, ok := entry.Data.(T)
	if !ok {
		return false
	}
	r.revision = entry.Revision
	r.state.Data = data
	r.state.HasData = true
	return true
}

// notify must be called with mu held.
func (r *Resource[T]) notify() {
	close(r.changes)
	r.changes = make(chan struct{})
}
