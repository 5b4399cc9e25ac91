// Package service implements the staff-facing business operations over the
// repositories, cache and search index.
package service

import (
	"errors"

	apperrors "loandesk/internal/common/errors"
	"loandesk/internal/store"
)

// fromStore maps repository sentinels onto API errors.
func fromStore(resource, id, op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperrors.NewResourceNotFoundError(resource, id)
	case errors.Is(err, store.ErrConflict):
		return apperrors.NewConflictError(resource, err.Error())
	case errors.Is(err, store.ErrInvalidReference):
		return apperrors.NewValidationError(err.Error())
	default:
		return apperrors.NewDatabaseQueryFailedError(op, err)
	}
}
