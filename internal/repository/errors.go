package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"bonneaffaire/pkg/apperrors"
)

// translateError maps gorm errors onto the application taxonomy.
func translateError(err error, resource, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &apperrors.NotFoundError{Resource: resource, ID: id}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &apperrors.ConflictError{Message: fmt.Sprintf("%s already exists", resource)}
	}
	return fmt.Errorf("%s: %w", resource, err)
}
