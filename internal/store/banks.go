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

const bankColumns = `id, name, contact_person, contact_number, email, created_at, updated_at`

type BankStore struct {
	db *sqlx.DB
}

func NewBankStore(db *sqlx.DB) *BankStore {
	return &BankStore{db: db}
}

func (s *BankStore) Create(ctx context.Context, bank *models.Bank) error {
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO banks (`+bankColumns+`)
		VALUES (:id, :name, :contact_person, :contact_number, :email, :created_at, :updated_at)`,
		bank)
	return mapError("insert bank", err)
}

func (s *BankStore) Get(ctx context.Context, id string) (*models.Bank, error) {
	var bank models.Bank
	err := s.db.GetContext(ctx, &bank, `SELECT `+bankColumns+` FROM banks WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get bank %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, mapError("get bank", err)
	}
	return &bank, nil
}

func (s *BankStore) List(ctx context.Context) ([]models.Bank, error) {
	banks := []models.Bank{}
	if err := s.db.SelectContext(ctx, &banks, `SELECT `+bankColumns+` FROM banks ORDER BY name`); err != nil {
		return nil, mapError("list banks", err)
	}
	return banks, nil
}

func (s *BankStore) Update(ctx context.Context, bank *models.Bank) error {
	bank.UpdatedAt = time.Now().UTC()
	res, err := s.db.NamedExecContext(ctx,
		`UPDATE banks SET name = :name, contact_person = :contact_person, contact_number = :contact_number,
			email = :email, updated_at = :updated_at WHERE id = :id`,
		bank)
	return expectAffected("update bank", res, err)
}

func (s *BankStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM banks WHERE id = $1`, id)
	return expectAffected("delete bank", res, err)
}
