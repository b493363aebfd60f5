package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/totegamma/admindata"
	"github.com/totegamma/admindata/internal/domain"
	"github.com/totegamma/admindata/internal/infra/database/models"
)

type TypeRepository struct {
	db *gorm.DB
}

func NewTypeRepository(db *gorm.DB) *TypeRepository {
	return &TypeRepository{db: db}
}

func (r *TypeRepository) Create(ctx context.Context, t admindata.RecordType) (admindata.RecordType, error) {
	fields, err := json.Marshal(nonNilFields(t.Fields))
	if err != nil {
		return admindata.RecordType{}, err
	}

	model := models.DataType{
		ID:          uuid.NewString(),
		Name:        t.Name,
		Description: t.Description,
		Slug:        t.Slug,
		Fields:      string(fields),
		IsOrdered:   t.IsOrdered,
		CanAdd:      t.Permissions.CanAdd,
		CanEdit:     t.Permissions.CanEdit,
		CanDelete:   t.Permissions.CanDelete,
		CanReorder:  t.Permissions.CanReorder,
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkSlugFree(tx, t.Slug, ""); err != nil {
			return err
		}
		return tx.Create(&model).Error
	})
	if err != nil {
		return admindata.RecordType{}, translate(err, "type", "create type")
	}

	return toRecordType(model)
}

func (r *TypeRepository) List(ctx context.Context) ([]admindata.RecordType, error) {
	var rows []models.DataType
	err := r.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "list types")
	}

	types := make([]admindata.RecordType, 0, len(rows))
	for _, row := range rows {
		t, err := toRecordType(row)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

func (r *TypeRepository) Get(ctx context.Context, id string) (admindata.RecordType, error) {
	var model models.DataType
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&model).Error
	if err != nil {
		return admindata.RecordType{}, translate(err, "type", "get type")
	}
	return toRecordType(model)
}

func (r *TypeRepository) GetBySlug(ctx context.Context, slug string) (admindata.RecordType, error) {
	var model models.DataType
	err := r.db.WithContext(ctx).Where("slug = ?", slug).Take(&model).Error
	if err != nil {
		return admindata.RecordType{}, translate(err, "type", "get type by slug")
	}
	return toRecordType(model)
}

func (r *TypeRepository) Update(ctx context.Context, t admindata.RecordType) (admindata.RecordType, error) {
	fields, err := json.Marshal(nonNilFields(t.Fields))
	if err != nil {
		return admindata.RecordType{}, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkSlugFree(tx, t.Slug, t.ID); err != nil {
			return err
		}
		result := tx.Model(&models.DataType{}).
			Where("id = ?", t.ID).
			Updates(map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"slug":        t.Slug,
				"fields":      string(fields),
				"is_ordered":  t.IsOrdered,
				"can_add":     t.Permissions.CanAdd,
				"can_edit":    t.Permissions.CanEdit,
				"can_delete":  t.Permissions.CanDelete,
				"can_reorder": t.Permissions.CanReorder,
				"updated_at":  time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return admindata.RecordType{}, translate(err, "type", "update type")
	}

	return r.Get(ctx, t.ID)
}

// Delete removes the type and all of its entities in one transaction.
func (r *TypeRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("type_id = ?", id).Delete(&models.DataEntity{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.DataType{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err, "type", "delete type")
}

func checkSlugFree(tx *gorm.DB, slug, exceptID string) error {
	q := tx.Model(&models.DataType{}).Where("slug = ?", slug)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return domain.ValidationError{Message: "slug already exists"}
	}
	return nil
}

func nonNilFields(fields []admindata.Field) []admindata.Field {
	if fields == nil {
		return []admindata.Field{}
	}
	return fields
}

func toRecordType(m models.DataType) (admindata.RecordType, error) {
	fields := []admindata.Field{}
	if m.Fields != "" {
		if err := json.Unmarshal([]byte(m.Fields), &fields); err != nil {
			return admindata.RecordType{}, errors.Wrapf(err, "decode fields of type %s", m.ID)
		}
	}
	return admindata.RecordType{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Slug:        m.Slug,
		Fields:      fields,
		IsOrdered:   m.IsOrdered,
		Permissions: admindata.Permissions{
			CanAdd:     m.CanAdd,
			CanEdit:    m.CanEdit,
			CanDelete:  m.CanDelete,
			CanReorder: m.CanReorder,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}
