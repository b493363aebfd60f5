package domain

const (
	SessionCtxKey = "ad-session"
)

const (
	SessionCookieName = "session"
)

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

type Action int

const (
	ActionUnknown Action = iota
	ActionAdd
	ActionEdit
	ActionDelete
	ActionReorder
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionEdit:
		return "edit"
	case ActionDelete:
		return "delete"
	case ActionReorder:
		return "reorder"
	default:
		return "unknown"
	}
}
