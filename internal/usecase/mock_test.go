package usecase

import (
	"context"
	"sort"
	"strconv"

	"github.com/totegamma/admindata"
	"github.com/totegamma/admindata/internal/domain"
)

type mockTypeRepo struct {
	types map[string]admindata.RecordType
	gets  int
	next  int
	// afterRead runs once, between reading a row and returning it.
	afterRead func()
}

func newMockTypeRepo(types ...admindata.RecordType) *mockTypeRepo {
	m := &mockTypeRepo{types: map[string]admindata.RecordType{}}
	for _, t := range types {
		m.types[t.ID] = t
	}
	return m
}

func (m *mockTypeRepo) Create(ctx context.Context, t admindata.RecordType) (admindata.RecordType, error) {
	for _, existing := range m.types {
		if existing.Slug == t.Slug {
			return admindata.RecordType{}, domain.ValidationError{Message: "slug already exists"}
		}
	}
	m.next++
	t.ID = "type-" + strconv.Itoa(m.next)
	m.types[t.ID] = t
	return t, nil
}

func (m *mockTypeRepo) List(ctx context.Context) ([]admindata.RecordType, error) {
	out := make([]admindata.RecordType, 0, len(m.types))
	for _, t := range m.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockTypeRepo) Get(ctx context.Context, id string) (admindata.RecordType, error) {
	m.gets++
	t, ok := m.types[id]
	if hook := m.afterRead; hook != nil {
		m.afterRead = nil
		hook()
	}
	if !ok {
		return admindata.RecordType{}, domain.NotFoundError{Resource: "type"}
	}
	return t, nil
}

func (m *mockTypeRepo) GetBySlug(ctx context.Context, slug string) (admindata.RecordType, error) {
	for _, t := range m.types {
		if t.Slug == slug {
			return t, nil
		}
	}
	return admindata.RecordType{}, domain.NotFoundError{Resource: "type"}
}

func (m *mockTypeRepo) Update(ctx context.Context, t admindata.RecordType) (admindata.RecordType, error) {
	if _, ok := m.types[t.ID]; !ok {
		return admindata.RecordType{}, domain.NotFoundError{Resource: "type"}
	}
	m.types[t.ID] = t
	return t, nil
}

func (m *mockTypeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.types[id]; !ok {
		return domain.NotFoundError{Resource: "type"}
	}
	delete(m.types, id)
	return nil
}

type mockTypeCache struct {
	types   map[string]admindata.RecordType
	deleted []string
}

func newMockTypeCache() *mockTypeCache {
	return &mockTypeCache{types: map[string]admindata.RecordType{}}
}

func (m *mockTypeCache) Get(ctx context.Context, id string) (admindata.RecordType, bool) {
	t, ok := m.types[id]
	return t, ok
}
func (m *mockTypeCache) Set(ctx context.Context, t admindata.RecordType) { m.types[t.ID] = t }
func (m *mockTypeCache) Delete(ctx context.Context, id string) {
	delete(m.types, id)
	m.deleted = append(m.deleted, id)
}

type mockSignal struct {
	events []domain.Event
}

func (m *mockSignal) Publish(ctx context.Context, event domain.Event) error {
	m.events = append(m.events, event)
	return nil
}

type mockEntityRepo struct {
	entities map[string]admindata.Entity
	orders   map[string]int64
	next     int
}

func newMockEntityRepo(entities ...admindata.Entity) *mockEntityRepo {
	m := &mockEntityRepo{
		entities: map[string]admindata.Entity{},
		orders:   map[string]int64{},
	}
	for _, e := range entities {
		m.entities[e.ID] = e
	}
	return m
}

func (m *mockEntityRepo) Create(ctx context.Context, typeID string, values admindata.Values) (admindata.Entity, error) {
	order := int64(-1)
	for _, e := range m.entities {
		if e.TypeID == typeID && e.Order > order {
			order = e.Order
		}
	}
	m.next++
	e := admindata.Entity{ID: "entity-" + strconv.Itoa(m.next), TypeID: typeID, Order: order + 1, Values: values}
	m.entities[e.ID] = e
	return e, nil
}

func (m *mockEntityRepo) Get(ctx context.Context, id string) (admindata.Entity, error) {
	e, ok := m.entities[id]
	if !ok {
		return admindata.Entity{}, domain.NotFoundError{Resource: "entity"}
	}
	return e, nil
}

func (m *mockEntityRepo) GetMany(ctx context.Context, ids []string) ([]admindata.Entity, error) {
	var out []admindata.Entity
	for _, id := range ids {
		if e, ok := m.entities[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEntityRepo) Update(ctx context.Context, id string, values admindata.Values) (admindata.Entity, error) {
	e, ok := m.entities[id]
	if !ok {
		return admindata.Entity{}, domain.NotFoundError{Resource: "entity"}
	}
	e.Values = values
	m.entities[id] = e
	return e, nil
}

func (m *mockEntityRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.entities[id]; !ok {
		return domain.NotFoundError{Resource: "entity"}
	}
	delete(m.entities, id)
	return nil
}

func (m *mockEntityRepo) ListByType(ctx context.Context, typeID string) ([]admindata.Entity, error) {
	out := []admindata.Entity{}
	for _, e := range m.entities {
		if e.TypeID == typeID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m *mockEntityRepo) ListPaginated(ctx context.Context, typeID string, page, limit int) (admindata.Page[admindata.Entity], error) {
	return admindata.Page[admindata.Entity]{Page: page, Limit: limit}, nil
}

func (m *mockEntityRepo) CountByType(ctx context.Context, typeID string) (int64, error) {
	all, _ := m.ListByType(ctx, typeID)
	return int64(len(all)), nil
}

func (m *mockEntityRepo) SetOrder(ctx context.Context, id string, order int64) error {
	e, ok := m.entities[id]
	if !ok {
		return domain.NotFoundError{Resource: "entity"}
	}
	e.Order = order
	m.entities[id] = e
	m.orders[id] = order
	return nil
}
