package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/totegamma/admindata"
	"github.com/totegamma/admindata/internal/domain"
)

var tracer = otel.Tracer("usecase")

type TypeUsecase struct {
	repo   TypeRepository
	cache  TypeCache
	signal Signal

	// evictions counts cache evictions; a read that raced one is not cached.
	mu        sync.Mutex
	evictions uint64
}

// NewTypeUsecase builds the type usecase. cache and signal may be nil.
func NewTypeUsecase(repo TypeRepository, cache TypeCache, signal Signal) *TypeUsecase {
	return &TypeUsecase{
		repo:   repo,
		cache:  cache,
		signal: signal,
	}
}

func (uc *TypeUsecase) Create(ctx context.Context, config admindata.TypeConfig) (admindata.RecordType, error) {
	ctx, span := tracer.Start(ctx, "Type.Usecase.Create")
	defer span.End()

	name := strings.TrimSpace(config.Name)
	if name == "" {
		return admindata.RecordType{}, domain.ValidationError{Message: "name is required"}
	}

	var slug string
	if config.Slug != "" {
		slug = admindata.Slugify(config.Slug)
		if slug == "" {
			return admindata.RecordType{}, domain.ValidationError{Message: "slug must contain at least one letter or digit"}
		}
	} else {
		slug = admindata.Slugify(name)
		if slug == "" {
			// names made only of symbols still need an address
			slug = "type-" + uuid.NewString()[:8]
		}
	}

	fields, err := normalizeFields(config.Fields)
	if err != nil {
		return admindata.RecordType{}, err
	}

	created, err := uc.repo.Create(ctx, admindata.RecordType{
		Name:        name,
		Description: config.Description,
		Slug:        slug,
		Fields:      fields,
		IsOrdered:   config.IsOrdered,
		Permissions: config.Permissions.Resolve(),
	})
	if err != nil {
		span.RecordError(err)
		return admindata.RecordType{}, err
	}

	slog.InfoContext(
		ctx, "record type created",
		slog.String("id", created.ID),
		slog.String("slug", created.Slug),
		slog.String("module", "usecase"),
	)
	return created, nil
}

// List returns every type sorted by name.
func (uc *TypeUsecase) List(ctx context.Context) ([]admindata.RecordType, error) {
	return uc.repo.List(ctx)
}

// Get loads a type by id, going through the type cache.
func (uc *TypeUsecase) Get(ctx context.Context, id string) (admindata.RecordType, error) {
	if uc.cache == nil {
		return uc.repo.Get(ctx, id)
	}
	if t, ok := uc.cache.Get(ctx, id); ok {
		return t, nil
	}

	uc.mu.Lock()
	seen := uc.evictions
	uc.mu.Unlock()

	t, err := uc.repo.Get(ctx, id)
	if err != nil {
		return admindata.RecordType{}, err
	}

	uc.mu.Lock()
	if uc.evictions == seen {
		uc.cache.Set(ctx, t)
	}
	uc.mu.Unlock()
	return t, nil
}

// Find resolves either an id or a slug.
func (uc *TypeUsecase) Find(ctx context.Context, idOrSlug string) (admindata.RecordType, error) {
	t, err := uc.Get(ctx, idOrSlug)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return admindata.RecordType{}, err
	}
	return uc.repo.GetBySlug(ctx, idOrSlug)
}

func (uc *TypeUsecase) Update(ctx context.Context, id string, patch admindata.TypePatch) (admindata.RecordType, error) {
	ctx, span := tracer.Start(ctx, "Type.Usecase.Update")
	defer span.End()

	current, err := uc.repo.Get(ctx, id)
	if err != nil {
		return admindata.RecordType{}, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return admindata.RecordType{}, domain.ValidationError{Message: "name is required"}
		}
		current.Name = name
	}
	if patch.Description != nil {
		current.Description = *patch.Description
	}
	if patch.Slug != nil {
		slug := admindata.Slugify(*patch.Slug)
		if slug == "" {
			return admindata.RecordType{}, domain.ValidationError{Message: "slug must contain at least one letter or digit"}
		}
		current.Slug = slug
	}
	if patch.Fields != nil {
		fields, err := normalizeFields(*patch.Fields)
		if err != nil {
			return admindata.RecordType{}, err
		}
		current.Fields = fields
	}
	if patch.IsOrdered != nil {
		current.IsOrdered = *patch.IsOrdered
	}
	if patch.Permissions != nil {
		current.Permissions = patch.Permissions.Resolve()
	}

	updated, err := uc.repo.Update(ctx, current)
	if err != nil {
		span.RecordError(err)
		return admindata.RecordType{}, err
	}

	uc.evict(ctx, id, domain.EventTypeUpdated)
	return updated, nil
}

// Delete removes a type and every entity of that type.
func (uc *TypeUsecase) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Type.Usecase.Delete")
	defer span.End()

	if err := uc.repo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}
	uc.evict(ctx, id, domain.EventTypeDeleted)
	return nil
}

// Forget drops id from the type cache without notifying other instances.
func (uc *TypeUsecase) Forget(ctx context.Context, id string) {
	if uc.cache == nil {
		return
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.evictions++
	uc.cache.Delete(ctx, id)
}

func (uc *TypeUsecase) evict(ctx context.Context, id, kind string) {
	uc.Forget(ctx, id)
	if uc.signal == nil {
		return
	}
	err := uc.signal.Publish(ctx, domain.Event{Kind: kind, TypeID: id})
	if err != nil {
		slog.WarnContext(
			ctx, "failed to publish type invalidation",
			slog.String("error", err.Error()),
			slog.String("module", "usecase"),
		)
	}
}

func normalizeFields(fields []admindata.Field) ([]admindata.Field, error) {
	out := make([]admindata.Field, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" {
			return nil, domain.ValidationError{Message: fmt.Sprintf("field %d has no name", i)}
		}
		if admindata.IsSystemKey(f.Name) {
			return nil, domain.ValidationError{Message: fmt.Sprintf("field name %q is reserved", f.Name)}
		}
		if seen[f.Name] {
			return nil, domain.ValidationError{Message: fmt.Sprintf("duplicate field %q", f.Name)}
		}
		seen[f.Name] = true

		if f.Kind == "" {
			f.Kind = admindata.FieldText
		}
		if !f.Kind.Valid() {
			return nil, domain.ValidationError{Message: fmt.Sprintf("field %q has unknown kind %q", f.Name, f.Kind)}
		}
		out = append(out, f)
	}
	return out, nil
}
