package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"loandesk/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return sqlx.NewDb(db, "postgres"), mock
}

var leadRowColumns = []string{
	"id", "lead_name", "client_name", "contact_number", "email", "address", "loan_type",
	"lead_type", "lead_source", "application_status", "branch_id", "assigned_staff_id", "bank_id",
	"loan_amount", "processing_cost", "credit_score", "additional_info", "notes", "provider_lead_id",
	"created_at", "updated_at",
}

func createTestLeadRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows(leadRowColumns)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for _, id := range ids {
		rows.AddRow(id, "FB Lead - "+id, "Asha Rao", "9876543210", "asha@example.com", "Pune",
			"Personal Loan", "Facebook Lead", "Facebook", "login", "main", nil, nil,
			"250000.00", nil, nil, "", "", "fb-"+id, now, now)
	}
	return rows
}

func createTestLead(id string) *models.Lead {
	now := time.Now().UTC()
	return &models.Lead{
		ID:                id,
		LeadName:          "Walk-in",
		ClientName:        "Ravi",
		ContactNumber:     "9876543210",
		LoanType:          "Home Loan",
		ApplicationStatus: models.LeadStatusLogin,
		BranchID:          models.StringPtr("main"),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// ==========================
// Lead store
// ==========================

func TestLeadStore_Create(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewLeadStore(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO leads")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Create(context.Background(), createTestLead("L1")))
}

func TestLeadStore_Create_ForeignKeyViolation(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewLeadStore(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO leads")).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "leads_branch_id_fkey"})

	err := s.Create(context.Background(), createTestLead("L1"))
	assert.True(t, errors.Is(err, ErrInvalidReference))
	assert.Contains(t, err.Error(), "leads_branch_id_fkey")
}

func TestLeadStore_Get(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewLeadStore(db)

	mock.ExpectQuery(`SELECT .+ FROM leads WHERE id = \$1`).
		WithArgs("L1").
		WillReturnRows(createTestLeadRows("L1"))

	lead, err := s.Get(context.Background(), "L1")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", lead.ClientName)
	assert.Equal(t, models.LeadStatusLogin, lead.ApplicationStatus)
	assert.Equal(t, "main", models.Deref(lead.BranchID))
	assert.Nil(t, lead.AssignedStaffID)
	require.NotNil(t, lead.LoanAmount)
	assert.Equal(t, 250000.0, *lead.LoanAmount)
	assert.Equal(t, "fb-L1", models.Deref(lead.ProviderLeadID))
}

func TestLeadStore_Get_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewLeadStore(db)

	mock.ExpectQuery(`SELECT .+ FROM leads WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLeadStore_List(t *testing.T) {
	tests := []struct {
		name   string
		filter models.LeadFilter
		query  string
		args   []driver.Value
	}{
		{
			name:   "no filter uses default page",
			filter: models.LeadFilter{},
			query:  `FROM leads ORDER BY created_at DESC LIMIT \$1 OFFSET \$2`,
			args:   []driver.Value{100, 0},
		},
		{
			name:   "branch and status",
			filter: models.LeadFilter{BranchID: "b1", Status: models.LeadStatusPending, Limit: 20, Offset: 40},
			query:  `FROM leads WHERE branch_id = \$1 AND application_status = \$2 ORDER BY created_at DESC LIMIT \$3 OFFSET \$4`,
			args:   []driver.Value{"b1", "pending", 20, 40},
		},
		{
			name:   "assignee and source",
			filter: models.LeadFilter{AssignedStaffID: "s1", LeadSource: "Facebook"},
			query:  `WHERE assigned_staff_id = \$1 AND lead_source = \$2 ORDER BY`,
			args:   []driver.Value{"s1", "Facebook", 100, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			s := NewLeadStore(db)

			mock.ExpectQuery(tt.query).
				WithArgs(tt.args...).
				WillReturnRows(createTestLeadRows("L1", "L2"))

			leads, err := s.List(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Len(t, leads, 2)
		})
	}
}

func TestLeadStore_List_EmptyIsNonNil(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewLeadStore(db)

	mock.ExpectQuery(`FROM leads`).WillReturnRows(sqlmock.NewRows(leadRowColumns))

	leads, err := s.List(context.Background(), models.LeadFilter{})
	require.NoError(t, err)
	assert.NotNil(t, leads)
	assert.Empty(t, leads)
}

func TestLeadStore_UpdateStatus(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE leads SET application_status = $1")).
			WithArgs("sanctioned", sqlmock.AnyArg(), "L1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewLeadStore(db).UpdateStatus(context.Background(), "L1", models.LeadStatusSanctioned))
	})

	t.Run("no such lead", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE leads SET application_status = $1")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewLeadStore(db).UpdateStatus(context.Background(), "L9", models.LeadStatusRejected)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestLeadStore_Assign(t *testing.T) {
	db, mock := newMockDB(t)
	staffID := "s1"

	mock.ExpectExec(regexp.QuoteMeta("COALESCE($1, assigned_staff_id)")).
		WithArgs(staffID, nil, sqlmock.AnyArg(), "L1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewLeadStore(db).Assign(context.Background(), "L1", models.LeadAssignment{AssignedStaffID: &staffID})
	assert.NoError(t, err)
}

func TestLeadStore_UpdateAndDelete(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewLeadStore(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE leads SET")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM leads WHERE id = $1")).
		WithArgs("L1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	lead := createTestLead("L1")
	before := lead.UpdatedAt
	require.NoError(t, s.Update(context.Background(), lead))
	assert.False(t, lead.UpdatedAt.Before(before))

	assert.True(t, errors.Is(s.Delete(context.Background(), "L1"), ErrNotFound))
}

// ==========================
// Staff, branch and bank stores
// ==========================

func TestStaffStore_Create_DuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO staff")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "staff_email_key"})

	staff := &models.Staff{ID: "s1", Email: "  Asha@Example.com ", Role: models.RoleStaff}
	err := NewStaffStore(db).Create(context.Background(), staff)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "asha@example.com", staff.Email)
}

func TestStaffStore_GetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(`FROM staff WHERE email = \$1`).
		WithArgs("asha@example.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "phone", "role", "branch_id", "password_hash", "active", "created_at", "updated_at",
		}).AddRow("s1", "Asha", "asha@example.com", "", "manager", "main", "$2a$hash", true, now, now))

	staff, err := NewStaffStore(db).GetByEmail(context.Background(), "ASHA@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, staff.Role)
	assert.Equal(t, "$2a$hash", staff.PasswordHash)
	assert.True(t, staff.Active)
}

func TestStaffStore_ListAndCount(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewStaffStore(db)

	mock.ExpectQuery(`FROM staff WHERE branch_id = \$1 ORDER BY name`).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "role"}).AddRow("s1", "Asha", "staff"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM staff")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	staff, err := s.List(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, "Asha", staff[0].Name)

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestBranchStore_Get_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM branches WHERE id = \$1`).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := NewBranchStore(db).Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBranchStore_Create_DuplicateCode(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO branches")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "branches_code_key"})

	err := NewBranchStore(db).Create(context.Background(), &models.Branch{ID: "b2", Code: "MAIN"})
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestBankStore_ListAndUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewBankStore(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM banks ORDER BY name")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "contact_person", "contact_number", "email", "created_at", "updated_at"}).
			AddRow("k1", "HDFC", "Meera", "022-1234", "meera@hdfc.example", now, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE banks SET")).WillReturnResult(sqlmock.NewResult(0, 1))

	banks, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, banks, 1)

	banks[0].ContactPerson = "Kiran"
	assert.NoError(t, s.Update(context.Background(), &banks[0]))
}
