package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"loandesk/internal/models"

	"github.com/jmoiron/sqlx"
)

type BranchStore struct {
	db *sqlx.DB
}

func NewBranchStore(db *sqlx.DB) *BranchStore {
	return &BranchStore{db: db}
}

func (s *BranchStore) Create(ctx context.Context, branch *models.Branch) error {
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO branches (id, name, code, address, phone, created_at, updated_at)
		VALUES (:id, :name, :code, :address, :phone, :created_at, :updated_at)`,
		branch)
	return mapError("insert branch", err)
}

func (s *BranchStore) Get(ctx context.Context, id string) (*models.Branch, error) {
	var branch models.Branch
	err := s.db.GetContext(ctx, &branch,
		`SELECT id, name, code, address, phone, created_at, updated_at FROM branches WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get branch %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, mapError("get branch", err)
	}
	return &branch, nil
}

func (s *BranchStore) List(ctx context.Context) ([]models.Branch, error) {
	branches := []models.Branch{}
	err := s.db.SelectContext(ctx, &branches,
		`SELECT id, name, code, address, phone, created_at, updated_at FROM branches ORDER BY name`)
	if err != nil {
		return nil, mapError("list branches", err)
	}
	return branches, nil
}

func (s *BranchStore) Update(ctx context.Context, branch *models.Branch) error {
	branch.UpdatedAt = time.Now().UTC()
	res, err := s.db.NamedExecContext(ctx,
		`UPDATE branches SET name = :name, code = :code, address = :address, phone = :phone,
			updated_at = :updated_at WHERE id = :id`,
		branch)
	return expectAffected("update branch", res, err)
}

func (s *BranchStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM branches WHERE id = $1`, id)
	return expectAffected("delete branch", res, err)
}
