// Package store holds the PostgreSQL repositories and the Redis lead cache.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"loandesk/internal/models"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned on a unique constraint violation.
	ErrConflict = errors.New("already exists")
	// ErrInvalidReference is returned when a foreign key points nowhere.
	ErrInvalidReference = errors.New("invalid reference")
)

type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
	Get(ctx context.Context, id string) (*models.Lead, error)
	List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error)
	Update(ctx context.Context, lead *models.Lead) error
	UpdateStatus(ctx context.Context, id string, status models.LeadStatus) error
	Assign(ctx context.Context, id string, assignment models.LeadAssignment) error
	Delete(ctx context.Context, id string) error
}

type StaffRepository interface {
	Create(ctx context.Context, staff *models.Staff) error
	Get(ctx context.Context, id string) (*models.Staff, error)
	GetByEmail(ctx context.Context, email string) (*models.Staff, error)
	List(ctx context.Context, branchID string) ([]models.Staff, error)
	Update(ctx context.Context, staff *models.Staff) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type BranchRepository interface {
	Create(ctx context.Context, branch *models.Branch) error
	Get(ctx context.Context, id string) (*models.Branch, error)
	List(ctx context.Context) ([]models.Branch, error)
	Update(ctx context.Context, branch *models.Branch) error
	Delete(ctx context.Context, id string) error
}

type BankRepository interface {
	Create(ctx context.Context, bank *models.Bank) error
	Get(ctx context.Context, id string) (*models.Bank, error)
	List(ctx context.Context) ([]models.Bank, error)
	Update(ctx context.Context, bank *models.Bank) error
	Delete(ctx context.Context, id string) error
}

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// mapError translates driver errors into store sentinels.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, ErrConflict, pqErr.Constraint)
		case pqForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, ErrInvalidReference, pqErr.Constraint)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// expectAffected returns ErrNotFound when an update or delete touched nothing.
func expectAffected(op string, res sql.Result, err error) error {
	if err != nil {
		return mapError(op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapError(op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
