package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRegistry() *PermissionRegistry {
	return &PermissionRegistry{
		Version: "1.0.0",
		Permissions: []PermissionEntry{
			{ID: "leads.view", Name: "View Leads", Category: "leads"},
			{ID: "leads.edit", Name: "Edit Leads", Category: "leads"},
		},
		Roles: []RoleEntry{
			{Role: "owner", Unconditional: true, Permissions: []string{"leads.view", "leads.edit"}},
			{Role: "staff", Permissions: []string{"leads.view"}},
		},
	}
}

func TestSaveAndLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "permissions.json")
	require.NoError(t, SaveRegistry(sampleRegistry(), path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, sampleRegistry(), loaded)
}

func TestLoadRegistry_Missing(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestValidate(t *testing.T) {
	require.NoError(t, sampleRegistry().Validate())

	tests := []struct {
		name   string
		mutate func(r *PermissionRegistry)
		errMsg string
	}{
		{"empty", func(r *PermissionRegistry) { r.Permissions = nil }, "no permissions"},
		{"duplicate", func(r *PermissionRegistry) { r.Permissions[1].ID = "leads.view" }, "duplicate permission"},
		{"missing name", func(r *PermissionRegistry) { r.Permissions[0].Name = "" }, "name"},
		{"missing category", func(r *PermissionRegistry) { r.Permissions[0].Category = "" }, "category"},
		{"duplicate role", func(r *PermissionRegistry) { r.Roles[1].Role = "owner" }, "duplicate role"},
		{"unknown grant", func(r *PermissionRegistry) { r.Roles[1].Permissions = []string{"staff.delete"} }, "unknown permission"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := sampleRegistry()
			tt.mutate(reg)
			err := reg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDiff(t *testing.T) {
	assert.Empty(t, Diff(sampleRegistry(), sampleRegistry()))

	current := sampleRegistry()
	current.Permissions = append(current.Permissions, PermissionEntry{ID: "staff.view", Name: "View Staff", Category: "staff"})
	current.Permissions[1].Name = "Modify Leads"
	current.Roles[1].Permissions = []string{"leads.edit"}
	current.Roles[0].Unconditional = false
	current.Roles = append(current.Roles, RoleEntry{Role: "manager"})

	assert.Equal(t, []string{
		"permission leads.edit changed",
		"permission staff.view added",
		"role manager added",
		"role owner unconditional true -> false",
		"role staff gained leads.edit",
		"role staff lost leads.view",
	}, Diff(sampleRegistry(), current))
}
