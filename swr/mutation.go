package swr

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/pkg/errors"

	"github.com/totegamma/admindata/cache"
)

// Doer performs one API call. *client.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, method, path string, body any, response any) error
}

// Result is the outcome of a mutation. Failures are reported here, never
// returned as errors.
type Result struct {
	Success bool
	Data    json.RawMessage
	Err     error
}

// Decode unmarshals the response body into v.
func (r Result) Decode(v any) error {
	if !r.Success {
		return errors.New("mutation did not succeed")
	}
	if len(r.Data) == 0 {
		return errors.New("empty response")
	}
	return json.Unmarshal(r.Data, v)
}

// Mutator sends writes for one endpoint and invalidates its cache family
// on success.
type Mutator struct {
	engine   *cache.Engine
	client   Doer
	endpoint string
	families []string

	mu      sync.Mutex
	pending int
	lastErr error
}

type MutatorOption func(*Mutator)

// WithFamilies replaces the invalidated families. The default is the
// endpoint itself.
func WithFamilies(families ...string) MutatorOption {
	return func(m *Mutator) {
		m.families = families
	}
}

func NewMutator(engine *cache.Engine, client Doer, endpoint string, opts ...MutatorOption) *Mutator {
	m := &Mutator{
		engine:   engine,
		client:   client,
		endpoint: endpoint,
		families: []string{endpoint},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create posts body to the endpoint.
func (m *Mutator) Create(ctx context.Context, body any) Result {
	return m.send(ctx, http.MethodPost, m.endpoint, body)
}

// Update puts body to endpoint/id.
func (m *Mutator) Update(ctx context.Context, id string, body any) Result {
	return m.send(ctx, http.MethodPut, m.endpoint+"/"+id, body)
}

// Delete removes endpoint/id.
func (m *Mutator) Delete(ctx context.Context, id string) Result {
	return m.send(ctx, http.MethodDelete, m.endpoint+"/"+id, nil)
}

// Loading reports whether a mutation is running.
func (m *Mutator) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending > 0
}

// Err is the error of the last finished mutation.
func (m *Mutator) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Mutator) send(ctx context.Context, method, path string, body any) Result {
	m.mu.Lock()
	m.pending++
	m.lastErr = nil
	m.mu.Unlock()

	var raw json.RawMessage
	err := m.client.Do(ctx, method, path, body, &raw)

	m.mu.Lock()
	m.pending--
	m.lastErr = err
	m.mu.Unlock()

	if err != nil {
		return Result{Err: err}
	}
	for _, family := range m.families {
		m.engine.InvalidateFamily(family)
	}
	return Result{Success: true, Data: raw}
}
