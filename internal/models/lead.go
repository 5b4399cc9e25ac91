// internal/models/lead.go
package models

import "time"

// LeadStatus is the application status of a lead.
type LeadStatus string

const (
	LeadStatusLogin      LeadStatus = "login"
	LeadStatusPending    LeadStatus = "pending"
	LeadStatusSanctioned LeadStatus = "sanctioned"
	LeadStatusRejected   LeadStatus = "rejected"
)

// LeadStatuses lists every valid status in workflow order.
var LeadStatuses = []LeadStatus{LeadStatusLogin, LeadStatusPending, LeadStatusSanctioned, LeadStatusRejected}

func (s LeadStatus) Valid() bool {
	for _, v := range LeadStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Lead struct {
	ID                string     `json:"id" db:"id"`
	LeadName          string     `json:"leadName" db:"lead_name"`
	ClientName        string     `json:"clientName" db:"client_name"`
	ContactNumber     string     `json:"contactNumber" db:"contact_number"`
	Email             string     `json:"email" db:"email"`
	Address           string     `json:"address" db:"address"`
	LoanType          string     `json:"loanType" db:"loan_type"`
	LeadType          string     `json:"leadType" db:"lead_type"`
	LeadSource        string     `json:"leadSource" db:"lead_source"`
	ApplicationStatus LeadStatus `json:"applicationStatus" db:"application_status"`
	BranchID          *string    `json:"branchId,omitempty" db:"branch_id"`
	AssignedStaffID   *string    `json:"assignedStaffId,omitempty" db:"assigned_staff_id"`
	BankID            *string    `json:"bankId,omitempty" db:"bank_id"`
	LoanAmount        *float64   `json:"loanAmount,omitempty" db:"loan_amount"`
	ProcessingCost    *float64   `json:"processingCost,omitempty" db:"processing_cost"`
	CreditScore       *int       `json:"creditScore,omitempty" db:"credit_score"`
	AdditionalInfo    string     `json:"additionalInfo" db:"additional_info"`
	Notes             string     `json:"notes" db:"notes"`
	ProviderLeadID    *string    `json:"providerLeadId,omitempty" db:"provider_lead_id"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time  `json:"updatedAt" db:"updated_at"`
}

// LeadFilter narrows lead listings. Empty fields are ignored.
type LeadFilter struct {
	BranchID        string
	AssignedStaffID string
	Status          LeadStatus
	LeadSource      string
	Limit           int
	Offset          int
}

// LeadAssignment sets the handling staff member and/or bank. Nil leaves the
// current value untouched.
type LeadAssignment struct {
	AssignedStaffID *string `json:"assignedStaffId,omitempty"`
	BankID          *string `json:"bankId,omitempty"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
