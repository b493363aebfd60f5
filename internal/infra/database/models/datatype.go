package models

import (
	"time"
)

type DataType struct {
	ID          string `json:"id" gorm:"primaryKey;type:text"`
	Name        string `json:"name" gorm:"type:text;not null;index"`
	Description string `json:"description" gorm:"type:text"`
	Slug        string `json:"slug" gorm:"type:text;not null;uniqueIndex:data_types_slug"`
	// Fields is the JSON encoded field declaration list.
	Fields     string `json:"fields" gorm:"type:text;not null;default:'[]'"`
	IsOrdered  bool   `json:"isOrdered" gorm:"not null"`
	CanAdd     bool   `json:"canAdd" gorm:"not null"`
	CanEdit    bool   `json:"canEdit" gorm:"not null"`
	CanDelete  bool   `json:"canDelete" gorm:"not null"`
	CanReorder bool   `json:"canReorder" gorm:"not null"`
	// EntitySeq is bumped by every entity insert to serialize order
	// assignment on the type row.
	EntitySeq int64     `json:"-" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (DataType) TableName() string {
	return "data_types"
}
