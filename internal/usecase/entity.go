package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/totegamma/admindata"
	"github.com/totegamma/admindata/form"
	"github.com/totegamma/admindata/internal/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type EntityUsecase struct {
	repo  EntityRepository
	types *TypeUsecase
}

func NewEntityUsecase(repo EntityRepository, types *TypeUsecase) *EntityUsecase {
	return &EntityUsecase{
		repo:  repo,
		types: types,
	}
}

func (uc *EntityUsecase) Create(ctx context.Context, typeID string, values admindata.Values) (admindata.Entity, error) {
	ctx, span := tracer.Start(ctx, "Entity.Usecase.Create")
	defer span.End()

	t, err := uc.types.Get(ctx, typeID)
	if err != nil {
		return admindata.Entity{}, err
	}
	if err := domain.CheckPermission(t, domain.ActionAdd); err != nil {
		return admindata.Entity{}, err
	}

	cleaned, err := validate(t, values, false)
	if err != nil {
		return admindata.Entity{}, err
	}

	created, err := uc.repo.Create(ctx, t.ID, cleaned)
	if err != nil {
		span.RecordError(err)
		return admindata.Entity{}, err
	}
	return created, nil
}

func (uc *EntityUsecase) Update(ctx context.Context, id string, values admindata.Values) (admindata.Entity, error) {
	ctx, span := tracer.Start(ctx, "Entity.Usecase.Update")
	defer span.End()

	current, err := uc.repo.Get(ctx, id)
	if err != nil {
		return admindata.Entity{}, err
	}
	t, err := uc.types.Get(ctx, current.TypeID)
	if err != nil {
		return admindata.Entity{}, err
	}
	if err := domain.CheckPermission(t, domain.ActionEdit); err != nil {
		return admindata.Entity{}, err
	}

	cleaned, err := validate(t, values, true)
	if err != nil {
		return admindata.Entity{}, err
	}

	updated, err := uc.repo.Update(ctx, id, current.Values.Merge(cleaned))
	if err != nil {
		span.RecordError(err)
		return admindata.Entity{}, err
	}
	return updated, nil
}

func (uc *EntityUsecase) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Entity.Usecase.Delete")
	defer span.End()

	current, err := uc.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	t, err := uc.types.Get(ctx, current.TypeID)
	if err != nil {
		return err
	}
	if err := domain.CheckPermission(t, domain.ActionDelete); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *EntityUsecase) Get(ctx context.Context, id string) (admindata.Entity, error) {
	return uc.repo.Get(ctx, id)
}

// List returns every entity of the type in display order. An unknown type
// simply has no entities.
func (uc *EntityUsecase) List(ctx context.Context, typeID string) ([]admindata.Entity, error) {
	return uc.repo.ListByType(ctx, typeID)
}

// ListPaginated applies the default page and limit and caps the limit.
func (uc *EntityUsecase) ListPaginated(ctx context.Context, typeID string, page, limit int) (admindata.Page[admindata.Entity], error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return uc.repo.ListPaginated(ctx, typeID, page, limit)
}

// Reorder assigns the given orders. All ids must exist and belong to one
// ordered type. Each record is updated on its own.
func (uc *EntityUsecase) Reorder(ctx context.Context, updates []admindata.ReorderUpdate) error {
	ctx, span := tracer.Start(ctx, "Entity.Usecase.Reorder")
	defer span.End()

	if len(updates) == 0 {
		return domain.ValidationError{Message: "updates must not be empty"}
	}

	ids := make([]string, 0, len(updates))
	seen := make(map[string]bool, len(updates))
	for _, u := range updates {
		if u.ID == "" {
			return domain.ValidationError{Message: "every update needs an id"}
		}
		if seen[u.ID] {
			return domain.ValidationError{Message: fmt.Sprintf("entity %s appears twice", u.ID)}
		}
		seen[u.ID] = true
		ids = append(ids, u.ID)
	}

	entities, err := uc.repo.GetMany(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[string]admindata.Entity, len(entities))
	for _, e := range entities {
		found[e.ID] = e
	}

	typeID := ""
	for _, id := range ids {
		e, ok := found[id]
		if !ok {
			return domain.NotFoundError{Resource: "entity " + id}
		}
		if typeID == "" {
			typeID = e.TypeID
		} else if e.TypeID != typeID {
			return domain.ValidationError{Message: "reorder updates must target a single type"}
		}
	}

	t, err := uc.types.Get(ctx, typeID)
	if err != nil {
		return err
	}
	if !t.IsOrdered {
		return domain.ValidationError{Message: fmt.Sprintf("type %s is not ordered", t.Name)}
	}
	if err := domain.CheckPermission(t, domain.ActionReorder); err != nil {
		return err
	}

	for _, u := range updates {
		if err := uc.repo.SetOrder(ctx, u.ID, u.Order); err != nil {
			span.RecordError(err)
			return err
		}
	}

	slog.DebugContext(
		ctx, "entities reordered",
		slog.String("type", t.ID),
		slog.Int("count", len(updates)),
		slog.String("module", "usecase"),
	)
	return nil
}

func validate(t admindata.RecordType, values admindata.Values, partial bool) (admindata.Values, error) {
	cleaned, err := form.Validate(t, values.Without(admindata.SystemKeys...), partial)
	if err != nil {
		return nil, domain.ValidationError{Message: err.Error()}
	}
	return cleaned, nil
}
