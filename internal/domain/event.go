package domain

const (
	EventTypeUpdated = "type.updated"
	EventTypeDeleted = "type.deleted"
)

// Event tells other server instances that their cached copy of a type is
// stale.
type Event struct {
	Kind   string `json:"kind"`
	TypeID string `json:"typeId"`
	Origin string `json:"origin"`
}
