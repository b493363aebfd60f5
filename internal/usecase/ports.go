package usecase

import (
	"context"

	"github.com/totegamma/admindata"
	"github.com/totegamma/admindata/internal/domain"
)

// TypeRepository defines storage operations for record types.
type TypeRepository interface {
	Create(ctx context.Context, t admindata.RecordType) (admindata.RecordType, error)
	List(ctx context.Context) ([]admindata.RecordType, error)
	Get(ctx context.Context, id string) (admindata.RecordType, error)
	GetBySlug(ctx context.Context, slug string) (admindata.RecordType, error)
	Update(ctx context.Context, t admindata.RecordType) (admindata.RecordType, error)
	// Delete removes the type together with its entities.
	Delete(ctx context.Context, id string) error
}

// EntityRepository defines storage operations for records of a type.
type EntityRepository interface {
	Create(ctx context.Context, typeID string, values admindata.Values) (admindata.Entity, error)
	Get(ctx context.Context, id string) (admindata.Entity, error)
	GetMany(ctx context.Context, ids []string) ([]admindata.Entity, error)
	Update(ctx context.Context, id string, values admindata.Values) (admindata.Entity, error)
	Delete(ctx context.Context, id string) error
	ListByType(ctx context.Context, typeID string) ([]admindata.Entity, error)
	ListPaginated(ctx context.Context, typeID string, page, limit int) (admindata.Page[admindata.Entity], error)
	CountByType(ctx context.Context, typeID string) (int64, error)
	SetOrder(ctx context.Context, id string, order int64) error
}

// TypeCache keeps recently loaded types; every entity mutation needs its
// parent type for the permission check.
type TypeCache interface {
	Get(ctx context.Context, id string) (admindata.RecordType, bool)
	Set(ctx context.Context, t admindata.RecordType)
	Delete(ctx context.Context, id string)
}

// Signal broadcasts invalidation events to other server instances.
type Signal interface {
	Publish(ctx context.Context, event domain.Event) error
}
