package models

import (
	"time"
)

type DataEntity struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	TypeID    string    `json:"typeId" gorm:"type:text;not null;index:data_entities_type_order,priority:1"`
	Type      DataType  `json:"-" gorm:"foreignKey:TypeID;references:ID;constraint:OnDelete:CASCADE;"`
	SortOrder int64     `json:"order" gorm:"column:sort_order;not null;default:0;index:data_entities_type_order,priority:2"`
	Values    string    `json:"values" gorm:"column:field_values;type:text;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (DataEntity) TableName() string {
	return "data_entities"
}
