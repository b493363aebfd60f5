package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/totegamma/admindata"
	"github.com/totegamma/admindata/internal/infra/database/models"
)

type EntityRepository struct {
	db *gorm.DB
}

func NewEntityRepository(db *gorm.DB) *EntityRepository {
	return &EntityRepository{db: db}
}

// display order within a type
func ordered(tx *gorm.DB) *gorm.DB {
	return tx.Order("sort_order ASC").Order("created_at ASC").Order("id ASC")
}

// Create appends a new entity at the end of its type. The parent row is
// written first so concurrent creates on one type serialize and each one
// sees the order assigned by the previous.
func (r *EntityRepository) Create(ctx context.Context, typeID string, values admindata.Values) (admindata.Entity, error) {
	encoded, err := encodeValues(values)
	if err != nil {
		return admindata.Entity{}, err
	}

	var model models.DataEntity
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.DataType{}).
			Where("id = ?", typeID).
			UpdateColumn("entity_seq", gorm.Expr("entity_seq + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var last sql.NullInt64
		err := tx.Model(&models.DataEntity{}).
			Select("MAX(sort_order)").
			Where("type_id = ?", typeID).
			Row().
			Scan(&last)
		if err != nil {
			return err
		}
		next := int64(0)
		if last.Valid {
			next = last.Int64 + 1
		}

		model = models.DataEntity{
			ID:        uuid.NewString(),
			TypeID:    typeID,
			SortOrder: next,
			Values:    encoded,
		}
		return tx.Create(&model).Error
	})
	if err != nil {
		return admindata.Entity{}, translate(err, "type", "create entity")
	}

	return toEntity(model)
}

func (r *EntityRepository) Get(ctx context.Context, id string) (admindata.Entity, error) {
	var model models.DataEntity
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&model).Error
	if err != nil {
		return admindata.Entity{}, translate(err, "entity", "get entity")
	}
	return toEntity(model)
}

// GetMany returns the entities that exist among ids, in display order.
func (r *EntityRepository) GetMany(ctx context.Context, ids []string) ([]admindata.Entity, error) {
	if len(ids) == 0 {
		return []admindata.Entity{}, nil
	}
	var rows []models.DataEntity
	err := ordered(r.db.WithContext(ctx)).Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "get entities")
	}
	return toEntities(rows)
}

// Update replaces the stored values. Merging is done by the caller.
func (r *EntityRepository) Update(ctx context.Context, id string, values admindata.Values) (admindata.Entity, error) {
	encoded, err := encodeValues(values)
	if err != nil {
		return admindata.Entity{}, err
	}

	result := r.db.WithContext(ctx).
		Model(&models.DataEntity{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"field_values": encoded,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return admindata.Entity{}, errors.Wrap(result.Error, "update entity")
	}
	if result.RowsAffected == 0 {
		return admindata.Entity{}, translate(gorm.ErrRecordNotFound, "entity", "update entity")
	}
	return r.Get(ctx, id)
}

func (r *EntityRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.DataEntity{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "delete entity")
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "entity", "delete entity")
	}
	return nil
}

func (r *EntityRepository) ListByType(ctx context.Context, typeID string) ([]admindata.Entity, error) {
	var rows []models.DataEntity
	err := ordered(r.db.WithContext(ctx)).Where("type_id = ?", typeID).Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "list entities")
	}
	return toEntities(rows)
}

func (r *EntityRepository) ListPaginated(ctx context.Context, typeID string, page, limit int) (admindata.Page[admindata.Entity], error) {
	total, err := r.CountByType(ctx, typeID)
	if err != nil {
		return admindata.Page[admindata.Entity]{}, err
	}

	var rows []models.DataEntity
	err = ordered(r.db.WithContext(ctx)).
		Where("type_id = ?", typeID).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return admindata.Page[admindata.Entity]{}, errors.Wrap(err, "list entities")
	}

	data, err := toEntities(rows)
	if err != nil {
		return admindata.Page[admindata.Entity]{}, err
	}

	return admindata.Page[admindata.Entity]{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

func (r *EntityRepository) CountByType(ctx context.Context, typeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DataEntity{}).Where("type_id = ?", typeID).Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "count entities")
	}
	return count, nil
}

// SetOrder writes one record's order on its own.
func (r *EntityRepository) SetOrder(ctx context.Context, id string, order int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.DataEntity{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"sort_order": order,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "set order")
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "entity", "set order")
	}
	return nil
}

func encodeValues(values admindata.Values) (string, error) {
	if values == nil {
		values = admindata.Values{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", errors.Wrap(err, "encode values")
	}
	return string(b), nil
}

func toEntity(m models.DataEntity) (admindata.Entity, error) {
	values := admindata.Values{}
	if m.Values != "" {
		if err := json.Unmarshal([]byte(m.Values), &values); err != nil {
			return admindata.Entity{}, errors.Wrapf(err, "decode values of entity %s", m.ID)
		}
	}
	return admindata.Entity{
		ID:        m.ID,
		TypeID:    m.TypeID,
		Order:     m.SortOrder,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		Values:    values,
	}, nil
}

func toEntities(rows []models.DataEntity) ([]admindata.Entity, error) {
	entities := make([]admindata.Entity, 0, len(rows))
	for _, row := range rows {
		e, err := toEntity(row)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}
