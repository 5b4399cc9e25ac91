// internal/models/auth.go
package models

import "time"

// Role is a staff role name.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleBranchHead Role = "branch_head"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
	RoleStaff      Role = "staff"
)

// Roles lists every known role, most privileged first.
var Roles = []Role{RoleOwner, RoleBranchHead, RoleManager, RoleAdmin, RoleStaff}

func (r Role) Valid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

// Actor is the authenticated identity a permission check is made for.
type Actor struct {
	StaffID  string `json:"staffId"`
	Role     Role   `json:"role"`
	BranchID string `json:"branchId,omitempty"`
}

// SeesAllBranches reports whether the actor's lead listings span every branch.
func (a Actor) SeesAllBranches() bool {
	return a.Role == RoleOwner || a.Role == RoleAdmin
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Staff     *Staff    `json:"staff"`
}
