package permissions

import "loandesk/internal/models"

// Grant decides whether a role holds a permission.
type Grant interface {
	Allows(permissionID string) bool
	// IDs returns the explicitly granted ids; nil for unconditional grants.
	IDs() []string
}

// UnconditionalGrant holds every permission, present and future.
type UnconditionalGrant struct{}

func (UnconditionalGrant) Allows(string) bool { return true }
func (UnconditionalGrant) IDs() []string      { return nil }

// SetMembership holds exactly the listed permissions.
type SetMembership struct {
	ids []string
	set map[string]struct{}
}

func NewSetMembership(ids ...string) SetMembership {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return SetMembership{ids: ids, set: set}
}

func (s SetMembership) Allows(permissionID string) bool {
	_, ok := s.set[permissionID]
	return ok
}

func (s SetMembership) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// DefaultGrants is the production role table.
func DefaultGrants() map[models.Role]Grant {
	return map[models.Role]Grant{
		models.RoleOwner: UnconditionalGrant{},
		models.RoleBranchHead: NewSetMembership(
			LeadsView, LeadsCreate, LeadsEdit, LeadsDelete, LeadsAssign, LeadsExport,
			StaffView, StaffCreate, StaffEdit,
			DocumentsView, DocumentsUpload, DocumentsDelete,
			ReportsView, ReportsExport,
			BranchesView,
			SettingsView,
		),
		models.RoleManager: NewSetMembership(
			LeadsView, LeadsCreate, LeadsEdit, LeadsAssign, LeadsExport,
			StaffView,
			DocumentsView, DocumentsUpload,
			ReportsView,
		),
		models.RoleAdmin: NewSetMembership(
			LeadsView, LeadsCreate, LeadsEdit, LeadsDelete, LeadsAssign,
			StaffView, StaffCreate, StaffEdit,
			DocumentsView, DocumentsUpload, DocumentsDelete,
			ReportsView,
			SettingsView, SettingsEdit,
			BranchesView,
		),
		models.RoleStaff: NewSetMembership(
			LeadsView, LeadsCreate, LeadsEdit,
			DocumentsView, DocumentsUpload,
		),
	}
}
