package domain

// Session is the authenticated requester.
type Session struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// CanWrite reports whether the role may use mutating endpoints.
func (s Session) CanWrite() bool {
	return s.Role == RoleAdmin || s.Role == RoleEditor
}
