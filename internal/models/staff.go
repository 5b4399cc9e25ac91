// internal/models/staff.go
package models

import "time"

type Staff struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	Role         Role      `json:"role" db:"role"`
	BranchID     *string   `json:"branchId,omitempty" db:"branch_id"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Actor returns the authorization identity of the staff member.
func (s *Staff) Actor() Actor {
	return Actor{StaffID: s.ID, Role: s.Role, BranchID: Deref(s.BranchID)}
}
