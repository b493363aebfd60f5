package swr

import (
	"context"

	"github.com/totegamma/admindata"
	"github.com/totegamma/admindata/cache"
	"github.com/totegamma/admindata/client"
)

// ClientFetcher decodes GET responses of c as T.
func ClientFetcher[T any](c *client.Client) Fetcher[T] {
	return func(ctx context.Context, endpoint string) (T, error) {
		return client.Get[T](ctx, c, endpoint)
	}
}

func Types(engine *cache.Engine, c *client.Client, opts ...Option) *Resource[[]admindata.RecordType] {
	return New(engine, admindata.TypesPath, ClientFetcher[[]admindata.RecordType](c), opts...)
}

// Entities binds the records of typeID. An empty typeID never fetches.
func Entities(engine *cache.Engine, c *client.Client, typeID string, opts ...Option) *Resource[[]admindata.Entity] {
	endpoint := ""
	if typeID != "" {
		endpoint = admindata.TypeEntitiesPath(typeID)
	}
	return New(engine, endpoint, ClientFetcher[[]admindata.Entity](c), opts...)
}

func EntityPage(engine *cache.Engine, c *client.Client, typeID string, page, limit int, opts ...Option) *Resource[admindata.Page[admindata.Entity]] {
	endpoint := ""
	if typeID != "" {
		endpoint = admindata.PagePath(typeID, page, limit)
	}
	return New(engine, endpoint, ClientFetcher[admindata.Page[admindata.Entity]](c), opts...)
}

// TypeMutations writes types. Deleting a type also drops its records from
// the cache.
type TypeMutations struct {
	*Mutator
	engine *cache.Engine
}

func NewTypeMutations(engine *cache.Engine, c Doer) *TypeMutations {
	return &TypeMutations{
		Mutator: NewMutator(engine, c, admindata.TypesPath),
		engine:  engine,
	}
}

func (m *TypeMutations) Delete(ctx context.Context, id string) Result {
	res := m.Mutator.Delete(ctx, id)
	if res.Success {
		m.engine.InvalidateFamily(admindata.TypeEntitiesPath(id))
	}
	return res
}

// EntityMutations writes the records of one type.
type EntityMutations struct {
	create  *Mutator
	records *Mutator
	reorder *Mutator
}

func NewEntityMutations(engine *cache.Engine, c Doer, typeID string) *EntityMutations {
	return &EntityMutations{
		create:  NewMutator(engine, c, admindata.TypeEntitiesPath(typeID)),
		records: NewMutator(engine, c, admindata.EntitiesPath),
		reorder: NewMutator(engine, c, admindata.ReorderPath, WithFamilies(admindata.EntitiesPath)),
	}
}

func (m *EntityMutations) Create(ctx context.Context, values admindata.Values) Result {
	return m.create.Create(ctx, values)
}

func (m *EntityMutations) Update(ctx context.Context, id string, values admindata.Values) Result {
	return m.records.Update(ctx, id, values)
}

func (m *EntityMutations) Delete(ctx context.Context, id string) Result {
	return m.records.Delete(ctx, id)
}

// Reorder assigns the given positions in one request.
func (m *EntityMutations) Reorder(ctx context.Context, updates []admindata.ReorderUpdate) Result {
	return m.reorder.Create(ctx, admindata.ReorderRequest{Updates: updates})
}

func (m *EntityMutations) Loading() bool {
	return m.create.Loading() || m.records.Loading() || m.reorder.Loading()
}
