package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/totegamma/admindata"
	"github.com/totegamma/admindata/internal/domain"
	"github.com/totegamma/admindata/internal/infra/database"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSqlite(filepath.Join(t.TempDir(), "admindata_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createBrands(t *testing.T, repo *TypeRepository) admindata.RecordType {
	t.Helper()
	no := false
	created, err := repo.Create(context.Background(), admindata.RecordType{
		Name:      "Brands",
		Slug:      "brands",
		IsOrdered: true,
		Fields: []admindata.Field{
			{Name: "Name", Kind: admindata.FieldText, Required: true},
			{Name: "Rank", Kind: admindata.FieldNumber},
		},
		Permissions: (&admindata.PermissionsInput{CanDelete: &no}).Resolve(),
	})
	if err != nil {
		t.Fatalf("create type: %v", err)
	}
	return created
}

func TestTypeRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewTypeRepository(openTestDB(t))

	created := createBrands(t, repo)
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp: %+v", created)
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Fields) != 2 || got.Fields[1].Kind != admindata.FieldNumber {
		t.Fatalf("fields lost: %+v", got.Fields)
	}
	if got.Permissions.CanDelete || !got.Permissions.CanAdd {
		t.Fatalf("permissions lost: %+v", got.Permissions)
	}

	bySlug, err := repo.GetBySlug(ctx, "brands")
	if err != nil || bySlug.ID != created.ID {
		t.Fatalf("get by slug: %v", err)
	}

	_, err = repo.Create(ctx, admindata.RecordType{Name: "Other", Slug: "brands"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected duplicate slug to fail validation, got %v", err)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestTypeRepositoryListSortedByName(t *testing.T) {
	ctx := context.Background()
	repo := NewTypeRepository(openTestDB(t))

	for _, name := range []string{"Posts", "Authors", "Menus"} {
		_, err := repo.Create(ctx, admindata.RecordType{Name: name, Slug: admindata.Slugify(name)})
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].Name != "Authors" || list[2].Name != "Posts" {
		t.Fatalf("unexpected order %+v", list)
	}
	if list[0].Fields == nil {
		t.Fatalf("fields should default to an empty list")
	}
}

func TestTypeRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewTypeRepository(openTestDB(t))
	brands := createBrands(t, repo)
	_, err := repo.Create(ctx, admindata.RecordType{Name: "Posts", Slug: "posts"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	brands.Name = "Labels"
	brands.IsOrdered = false
	updated, err := repo.Update(ctx, brands)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Labels" || updated.IsOrdered {
		t.Fatalf("unexpected update result %+v", updated)
	}

	brands.Slug = "posts"
	if _, err := repo.Update(ctx, brands); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("slug collision should fail, got %v", err)
	}
}

func TestEntityRepositoryCreateAssignsSequentialOrder(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	types := NewTypeRepository(db)
	repo := NewEntityRepository(db)
	brands := createBrands(t, types)

	for i, name := range []string{"A", "B", "C"} {
		e, err := repo.Create(ctx, brands.ID, admindata.Values{{Name: "Name", Value: admindata.TextValue(name)}})
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if e.Order != int64(i) {
			t.Fatalf("expected order %d got %d", i, e.Order)
		}
	}

	if _, err := repo.Create(ctx, "missing", nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown type should be not found, got %v", err)
	}
}

func TestEntityRepositoryConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	types := NewTypeRepository(db)
	repo := NewEntityRepository(db)
	brands := createBrands(t, types)

	const n = 12
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(ctx, brands.ID, admindata.Values{{Name: "Name", Value: admindata.TextValue(fmt.Sprint(i))}})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent create: %v", err)
		}
	}

	list, err := repo.ListByType(ctx, brands.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	seen := map[int64]bool{}
	for _, e := range list {
		if seen[e.Order] {
			t.Fatalf("order %d assigned twice", e.Order)
		}
		seen[e.Order] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct orders got %d", n, len(seen))
	}
}

func TestEntityRepositoryOrderingAndPagination(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	types := NewTypeRepository(db)
	repo := NewEntityRepository(db)
	brands := createBrands(t, types)

	ids := map[string]string{}
	for _, name := range []string{"A", "B", "C"} {
		e, err := repo.Create(ctx, brands.ID, admindata.Values{{Name: "Name", Value: admindata.TextValue(name)}})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids[name] = e.ID
	}

	for id, order := range map[string]int64{ids["C"]: 0, ids["A"]: 1, ids["B"]: 2} {
		if err := repo.SetOrder(ctx, id, order); err != nil {
			t.Fatalf("set order: %v", err)
		}
	}
	list, err := repo.ListByType(ctx, brands.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list[0].ID != ids["C"] || list[1].ID != ids["A"] || list[2].ID != ids["B"] {
		t.Fatalf("unexpected order after reorder")
	}

	page, err := repo.ListPaginated(ctx, brands.ID, 2, 2)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if page.Total != 3 || page.TotalPages != 2 || len(page.Data) != 1 || page.Data[0].ID != ids["B"] {
		t.Fatalf("unexpected page %+v", page)
	}

	if err := repo.SetOrder(ctx, "missing", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestEntityRepositoryUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	types := NewTypeRepository(db)
	repo := NewEntityRepository(db)
	brands := createBrands(t, types)

	e, err := repo.Create(ctx, brands.ID, admindata.Values{
		{Name: "Name", Value: admindata.TextValue("Acme")},
		{Name: "Rank", Value: admindata.NumberValue(1)},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := repo.Update(ctx, e.ID, e.Values.Set("Rank", admindata.NumberValue(9)))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	rank, _ := updated.Values.Get("Rank")
	if rank.Number != 9 || updated.Order != e.Order || updated.TypeID != brands.ID {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if updated.Values[0].Name != "Name" {
		t.Fatalf("value order lost: %+v", updated.Values)
	}

	if err := repo.Delete(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, e.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
	if _, err := repo.Update(ctx, e.ID, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update of deleted entity should be not found, got %v", err)
	}
}

func TestDeleteTypeCascades(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	types := NewTypeRepository(db)
	repo := NewEntityRepository(db)
	brands := createBrands(t, types)

	for i := 0; i < 3; i++ {
		if _, err := repo.Create(ctx, brands.ID, nil); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := types.Delete(ctx, brands.ID); err != nil {
		t.Fatalf("delete type: %v", err)
	}
	count, err := repo.CountByType(ctx, brands.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected entities to be deleted, %d left", count)
	}
	if err := types.Delete(ctx, brands.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
}
