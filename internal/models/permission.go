// internal/models/permission.go
package models

// PermissionCategory groups permissions by the resource they guard.
type PermissionCategory string

const (
	CategoryLeads     PermissionCategory = "leads"
	CategoryStaff     PermissionCategory = "staff"
	CategoryDocuments PermissionCategory = "documents"
	CategoryReports   PermissionCategory = "reports"
	CategorySettings  PermissionCategory = "settings"
	CategoryBranches  PermissionCategory = "branches"
)

// Permission is immutable reference data; ID has the form "<resource>.<action>".
type Permission struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Category    PermissionCategory `json:"category"`
}
