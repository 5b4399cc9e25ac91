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

const leadColumns = `id, lead_name, client_name, contact_number, email, address, loan_type,
	lead_type, lead_source, application_status, branch_id, assigned_staff_id, bank_id,
	loan_amount, processing_cost, credit_score, additional_info, notes, provider_lead_id,
	created_at, updated_at`

const defaultListLimit = 100

type LeadStore struct {
	db *sqlx.DB
}

func NewLeadStore(db *sqlx.DB) *LeadStore {
	return &LeadStore{db: db}
}

func (s *LeadStore) Create(ctx context.Context, lead *models.Lead) error {
	query := `INSERT INTO leads (` + leadColumns + `) VALUES (
		:id, :lead_name, :client_name, :contact_number, :email, :address, :loan_type,
		:lead_type, :lead_source, :application_status, :branch_id, :assigned_staff_id, :bank_id,
		:loan_amount, :processing_cost, :credit_score, :additional_info, :notes, :provider_lead_id,
		:created_at, :updated_at)`

	_, err := s.db.NamedExecContext(ctx, query, lead)
	return mapError("insert lead", err)
}

func (s *LeadStore) Get(ctx context.Context, id string) (*models.Lead, error) {
	var lead models.Lead
	err := s.db.GetContext(ctx, &lead, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get lead %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, mapError("get lead", err)
	}
	return &lead, nil
}

func (s *LeadStore) List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(column string, value interface{}) {
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.BranchID != "" {
		add("branch_id", filter.BranchID)
	}
	if filter.AssignedStaffID != "" {
		add("assigned_staff_id", filter.AssignedStaffID)
	}
	if filter.Status != "" {
		add("application_status", filter.Status)
	}
	if filter.LeadSource != "" {
		add("lead_source", filter.LeadSource)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	leads := []models.Lead{}
	if err := s.db.SelectContext(ctx, &leads, query, args...); err != nil {
		return nil, mapError("list leads", err)
	}
	return leads, nil
}

func (s *LeadStore) Update(ctx context.Context, lead *models.Lead) error {
	lead.UpdatedAt = time.Now().UTC()
	query := `UPDATE leads SET
		lead_name = :lead_name, client_name = :client_name, contact_number = :contact_number,
		email = :email, address = :address, loan_type = :loan_type, lead_type = :lead_type,
		lead_source = :lead_source, application_status = :application_status, branch_id = :branch_id,
		assigned_staff_id = :assigned_staff_id, bank_id = :bank_id, loan_amount = :loan_amount,
		processing_cost = :processing_cost, credit_score = :credit_score,
		additional_info = :additional_info, notes = :notes, updated_at = :updated_at
		WHERE id = :id`

	res, err := s.db.NamedExecContext(ctx, query, lead)
	return expectAffected("update lead", res, err)
}

func (s *LeadStore) UpdateStatus(ctx context.Context, id string, status models.LeadStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET application_status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	return expectAffected("update lead status", res, err)
}

func (s *LeadStore) Assign(ctx context.Context, id string, assignment models.LeadAssignment) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET
			assigned_staff_id = COALESCE($1, assigned_staff_id),
			bank_id = COALESCE($2, bank_id),
			updated_at = $3
		WHERE id = $4`,
		assignment.AssignedStaffID, assignment.BankID, time.Now().UTC(), id)
	return expectAffected("assign lead", res, err)
}

func (s *LeadStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	return expectAffected("delete lead", res, err)
}
