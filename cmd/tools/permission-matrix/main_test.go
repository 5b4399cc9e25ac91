package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"loandesk/internal/permissions"
	"loandesk/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRegistry(t *testing.T) {
	resolver := permissions.NewResolver()
	reg := buildRegistry(resolver, "2.0.0")

	assert.Equal(t, "2.0.0", reg.Version)
	assert.Len(t, reg.Permissions, len(resolver.Catalog()))
	require.NoError(t, reg.Validate())

	byRole := map[string]registry.RoleEntry{}
	for _, r := range reg.Roles {
		byRole[r.Role] = r
	}
	assert.True(t, byRole["owner"].Unconditional)
	assert.Len(t, byRole["owner"].Permissions, len(resolver.Catalog()))
	assert.False(t, byRole["staff"].Unconditional)
	assert.Contains(t, byRole["staff"].Permissions, permissions.LeadsView)
	assert.NotContains(t, byRole["staff"].Permissions, permissions.StaffDelete)
}

func TestRun_Matrix(t *testing.T) {
	var out bytes.Buffer
	require.Equal(t, 0, run([]string{"matrix"}, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(permissions.Catalog())+1)
	assert.True(t, strings.HasPrefix(lines[0], "PERMISSION"))
	assert.Contains(t, lines[0], "owner")
}

func TestRun_ExportThenValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "permission-registry.json")

	var out bytes.Buffer
	require.Equal(t, 0, run([]string{"export", "-path", path}, &out))
	assert.Contains(t, out.String(), "Exported")

	out.Reset()
	require.Equal(t, 0, run([]string{"validate", "-path", path}, &out))
	assert.Contains(t, out.String(), "Permission validation passed.")
}

func TestRun_ValidateReportsDrift(t *testing.T) {
	path := filepath.Join(t.TempDir(), "permission-registry.json")
	reg := buildRegistry(permissions.NewResolver(), "1.0.0")
	for i := range reg.Roles {
		if reg.Roles[i].Role == "staff" {
			reg.Roles[i].Permissions = append(reg.Roles[i].Permissions, permissions.StaffDelete)
		}
	}
	require.NoError(t, registry.SaveRegistry(reg, path))

	var out bytes.Buffer
	assert.Equal(t, 1, run([]string{"validate", "-path", path}, &out))
	assert.Contains(t, out.String(), "role staff lost "+permissions.StaffDelete)
	assert.Contains(t, out.String(), "out of date")
}

func TestRun_ValidateWithoutFile(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 0, run([]string{"validate"}, &out))
	assert.Contains(t, out.String(), "Role table is consistent")
}

func TestRun_Help(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, run(nil, &out))
	assert.Contains(t, out.String(), "Usage: permission-matrix")

	out.Reset()
	assert.Equal(t, 0, run([]string{"help"}, &out))
	assert.Equal(t, 1, run([]string{"bogus"}, &out))
}
