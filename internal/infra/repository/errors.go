package repository

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/totegamma/admindata/internal/domain"
)

// translate maps driver errors onto domain errors and wraps the rest.
func translate(err error, resource, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFoundError{Resource: resource}
	}
	if isDuplicate(err) {
		return domain.ValidationError{Message: "slug already exists"}
	}
	return errors.Wrap(err, op)
}

// isDuplicate also matches the message of drivers gorm cannot translate.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
