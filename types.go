package admindata

import (
	"encoding/json"
	"time"
)

type FieldKind string

const (
	FieldText    FieldKind = "text"
	FieldNumber  FieldKind = "number"
	FieldBoolean FieldKind = "boolean"
	FieldDate    FieldKind = "date"
)

// Valid reports whether k is one of the supported field kinds.
func (k FieldKind) Valid() bool {
	switch k {
	case FieldText, FieldNumber, FieldBoolean, FieldDate:
		return true
	default:
		return false
	}
}

// Field is one declared field of a RecordType.
type Field struct {
	Name        string    `json:"name"`
	Kind        FieldKind `json:"kind"`
	Required    bool      `json:"required"`
	Description string    `json:"description,omitempty"`
}

// UnmarshalJSON accepts the legacy "type" key as an alias of "kind".
func (f *Field) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name        string    `json:"name"`
		Kind        FieldKind `json:"kind"`
		Type        FieldKind `json:"type"`
		Required    bool      `json:"required"`
		Description string    `json:"description"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	f.Name = raw.Name
	f.Kind = raw.Kind
	if f.Kind == "" {
		f.Kind = raw.Type
	}
	f.Required = raw.Required
	f.Description = raw.Description
	return nil
}

type Permissions struct {
	CanAdd     bool `json:"canAdd"`
	CanEdit    bool `json:"canEdit"`
	CanDelete  bool `json:"canDelete"`
	CanReorder bool `json:"canReorder"`
}

// PermissionsInput is the client-supplied form of Permissions. A flag that
// is missing resolves to true; only an explicit false denies.
type PermissionsInput struct {
	CanAdd     *bool `json:"canAdd,omitempty"`
	CanEdit    *bool `json:"canEdit,omitempty"`
	CanDelete  *bool `json:"canDelete,omitempty"`
	CanReorder *bool `json:"canReorder,omitempty"`
}

func (p *PermissionsInput) Resolve() Permissions {
	if p == nil {
		return Permissions{CanAdd: true, CanEdit: true, CanDelete: true, CanReorder: true}
	}
	return Permissions{
		CanAdd:     p.CanAdd == nil || *p.CanAdd,
		CanEdit:    p.CanEdit == nil || *p.CanEdit,
		CanDelete:  p.CanDelete == nil || *p.CanDelete,
		CanReorder: p.CanReorder == nil || *p.CanReorder,
	}
}

// RecordType is a user-defined schema describing a category of records.
type RecordType struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Slug        string      `json:"slug"`
	Fields      []Field     `json:"fields"`
	IsOrdered   bool        `json:"isOrdered"`
	Permissions Permissions `json:"permissions"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Field looks up a declared field by name.
func (t RecordType) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// TypeConfig is the payload of a type creation.
type TypeConfig struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Slug        string            `json:"slug,omitempty"`
	Fields      []Field           `json:"fields,omitempty"`
	IsOrdered   bool              `json:"isOrdered"`
	Permissions *PermissionsInput `json:"permissions,omitempty"`
}

// TypePatch is the payload of a type update. Nil members are left as they are.
type TypePatch struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Slug        *string           `json:"slug,omitempty"`
	Fields      *[]Field          `json:"fields,omitempty"`
	IsOrdered   *bool             `json:"isOrdered,omitempty"`
	Permissions *PermissionsInput `json:"permissions,omitempty"`
}

// Entity is one stored record. Its field values are flattened into the
// same JSON object as the system keys.
type Entity struct {
	ID        string
	TypeID    string
	Order     int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Values    Values
}

// SystemKeys are owned by the store and never accepted from a payload.
var SystemKeys = []string{"id", "_id", "typeId", "order", "createdAt", "updatedAt"}

func IsSystemKey(key string) bool {
	for _, k := range SystemKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (e Entity) MarshalJSON() ([]byte, error) {
	values, err := json.Marshal(e.Values)
	if err != nil {
		return nil, err
	}
	system, err := json.Marshal(struct {
		ID        string    `json:"id"`
		TypeID    string    `json:"typeId"`
		Order     int64     `json:"order"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}{e.ID, e.TypeID, e.Order, e.CreatedAt, e.UpdatedAt})
	if err != nil {
		return nil, err
	}
	if len(values) <= 2 {
		return system, nil
	}
	// splice "{...system}" and "{...values}" into one object
	out := make([]byte, 0, len(system)+len(values))
	out = append(out, system[:len(system)-1]...)
	out = append(out, ',')
	out = append(out, values[1:]...)
	return out, nil
}

func (e *Entity) UnmarshalJSON(b []byte) error {
	*e = Entity{}
	return decodeObject(b, func(key string, raw json.RawMessage) error {
		switch key {
		case "id", "_id":
			return json.Unmarshal(raw, &e.ID)
		case "typeId":
			return json.Unmarshal(raw, &e.TypeID)
		case "order":
			return json.Unmarshal(raw, &e.Order)
		case "createdAt":
			return json.Unmarshal(raw, &e.CreatedAt)
		case "updatedAt":
			return json.Unmarshal(raw, &e.UpdatedAt)
		}
		var v Value
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		e.Values = append(e.Values, FieldValue{Name: key, Value: v})
		return nil
	})
}

// Page is the paginated listing envelope.
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type ReorderUpdate struct {
	ID    string `json:"id"`
	Order int64  `json:"order"`
}

type ReorderRequest struct {
	Updates []ReorderUpdate `json:"updates"`
}

// Message is the body of acknowledgements and errors.
type Message struct {
	Message string `json:"message"`
}
