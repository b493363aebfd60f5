package domain

import (
	"fmt"

	"github.com/totegamma/admindata"
)

// CheckPermission fails with PermissionError when t does not allow a.
func CheckPermission(t admindata.RecordType, a Action) error {
	var allowed bool
	switch a {
	case ActionAdd:
		allowed = t.Permissions.CanAdd
	case ActionEdit:
		allowed = t.Permissions.CanEdit
	case ActionDelete:
		allowed = t.Permissions.CanDelete
	case ActionReorder:
		allowed = t.Permissions.CanReorder
	}
	if !allowed {
		return PermissionError{Message: fmt.Sprintf("%s is not allowed on type %s", a, t.Name)}
	}
	return nil
}
