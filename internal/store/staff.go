package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"loandesk/internal/models"

	"github.com/jmoiron/sqlx"
)

const staffColumns = `id, name, email, phone, role, branch_id, password_hash, active, created_at, updated_at`

type StaffStore struct {
	db *sqlx.DB
}

func NewStaffStore(db *sqlx.DB) *StaffStore {
	return &StaffStore{db: db}
}

func (s *StaffStore) Create(ctx context.Context, staff *models.Staff) error {
	staff.Email = strings.ToLower(strings.TrimSpace(staff.Email))
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO staff (`+staffColumns+`) VALUES (
			:id, :name, :email, :phone, :role, :branch_id, :password_hash, :active, :created_at, :updated_at)`,
		staff)
	return mapError("insert staff", err)
}

func (s *StaffStore) Get(ctx context.Context, id string) (*models.Staff, error) {
	return s.getOne(ctx, "get staff", `SELECT `+staffColumns+` FROM staff WHERE id = $1`, id)
}

// GetByEmail matches case-insensitively.
func (s *StaffStore) GetByEmail(ctx context.Context, email string) (*models.Staff, error) {
	return s.getOne(ctx, "get staff by email",
		`SELECT `+staffColumns+` FROM staff WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
}

func (s *StaffStore) getOne(ctx context.Context, op, query string, arg interface{}) (*models.Staff, error) {
	var staff models.Staff
	err := s.db.GetContext(ctx, &staff, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, mapError(op, err)
	}
	return &staff, nil
}

// List returns staff ordered by name; an empty branchID lists every branch.
func (s *StaffStore) List(ctx context.Context, branchID string) ([]models.Staff, error) {
	staff := []models.Staff{}
	var err error
	if branchID == "" {
		err = s.db.SelectContext(ctx, &staff, `SELECT `+staffColumns+` FROM staff ORDER BY name`)
	} else {
		err = s.db.SelectContext(ctx, &staff, `SELECT `+staffColumns+` FROM staff WHERE branch_id = $1 ORDER BY name`, branchID)
	}
	if err != nil {
		return nil, mapError("list staff", err)
	}
	return staff, nil
}

func (s *StaffStore) Update(ctx context.Context, staff *models.Staff) error {
	staff.UpdatedAt = time.Now().UTC()
	staff.Email = strings.ToLower(strings.TrimSpace(staff.Email))
	res, err := s.db.NamedExecContext(ctx,
		`UPDATE staff SET name = :name, email = :email, phone = :phone, role = :role,
			branch_id = :branch_id, password_hash = :password_hash, active = :active, updated_at = :updated_at
		WHERE id = :id`,
		staff)
	return expectAffected("update staff", res, err)
}

func (s *StaffStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM staff WHERE id = $1`, id)
	return expectAffected("delete staff", res, err)
}

func (s *StaffStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM staff`); err != nil {
		return 0, mapError("count staff", err)
	}
	return n, nil
}
