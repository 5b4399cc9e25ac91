// Package permissions answers "may this actor perform this action" against a
// static catalog and role table.
package permissions

import "loandesk/internal/models"

// Permission ids.
const (
	LeadsView   = "leads.view"
	LeadsCreate = "leads.create"
	LeadsEdit   = "leads.edit"
	LeadsDelete = "leads.delete"
	LeadsAssign = "leads.assign"
	LeadsExport = "leads.export"

	StaffView   = "staff.view"
	StaffCreate = "staff.create"
	StaffEdit   = "staff.edit"
	StaffDelete = "staff.delete"

	DocumentsView   = "documents.view"
	DocumentsUpload = "documents.upload"
	DocumentsDelete = "documents.delete"

	ReportsView   = "reports.view"
	ReportsExport = "reports.export"

	SettingsView = "settings.view"
	SettingsEdit = "settings.edit"

	BranchesView   = "branches.view"
	BranchesCreate = "branches.create"
	BranchesEdit   = "branches.edit"
	BranchesDelete = "branches.delete"
)

// Catalog is every permission the system knows, in display order.
func Catalog() []models.Permission {
	out := make([]models.Permission, len(catalog))
	copy(out, catalog)
	return out
}

var catalog = []models.Permission{
	{ID: LeadsView, Name: "View Leads", Description: "View lead records", Category: models.CategoryLeads},
	{ID: LeadsCreate, Name: "Create Leads", Description: "Create new leads", Category: models.CategoryLeads},
	{ID: LeadsEdit, Name: "Edit Leads", Description: "Edit lead details and status", Category: models.CategoryLeads},
	{ID: LeadsDelete, Name: "Delete Leads", Description: "Delete lead records", Category: models.CategoryLeads},
	{ID: LeadsAssign, Name: "Assign Leads", Description: "Assign leads to staff and banks", Category: models.CategoryLeads},
	{ID: LeadsExport, Name: "Export Leads", Description: "Export lead data", Category: models.CategoryLeads},

	{ID: StaffView, Name: "View Staff", Description: "View staff members", Category: models.CategoryStaff},
	{ID: StaffCreate, Name: "Create Staff", Description: "Add staff members", Category: models.CategoryStaff},
	{ID: StaffEdit, Name: "Edit Staff", Description: "Edit staff members", Category: models.CategoryStaff},
	{ID: StaffDelete, Name: "Delete Staff", Description: "Remove staff members", Category: models.CategoryStaff},

	{ID: DocumentsView, Name: "View Documents", Description: "View lead documents", Category: models.CategoryDocuments},
	{ID: DocumentsUpload, Name: "Upload Documents", Description: "Upload lead documents", Category: models.CategoryDocuments},
	{ID: DocumentsDelete, Name: "Delete Documents", Description: "Delete lead documents", Category: models.CategoryDocuments},

	{ID: ReportsView, Name: "View Reports", Description: "View business reports", Category: models.CategoryReports},
	{ID: ReportsExport, Name: "Export Reports", Description: "Export business reports", Category: models.CategoryReports},

	{ID: SettingsView, Name: "View Settings", Description: "View system settings and banks", Category: models.CategorySettings},
	{ID: SettingsEdit, Name: "Edit Settings", Description: "Edit system settings and banks", Category: models.CategorySettings},

	{ID: BranchesView, Name: "View Branches", Description: "View branches", Category: models.CategoryBranches},
	{ID: BranchesCreate, Name: "Create Branches", Description: "Create branches", Category: models.CategoryBranches},
	{ID: BranchesEdit, Name: "Edit Branches", Description: "Edit branches", Category: models.CategoryBranches},
	{ID: BranchesDelete, Name: "Delete Branches", Description: "Delete branches", Category: models.CategoryBranches},
}
