// pkg/registry/schema.go
package registry

// PermissionRegistry is the checked-in snapshot of the permission catalog and
// role table, used to review access changes in code review.
type PermissionRegistry struct {
	Version     string            `json:"version"`
	LastUpdated string            `json:"lastUpdated"`
	Permissions []PermissionEntry `json:"permissions"`
	Roles       []RoleEntry       `json:"roles"`
}

type PermissionEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type RoleEntry struct {
	Role          string   `json:"role"`
	Unconditional bool     `json:"unconditional"`
	Permissions   []string `json:"permissions"`
}
