// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func LoadRegistry(path string) (*PermissionRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg PermissionRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// SaveRegistry writes reg as indented JSON, creating parent directories.
func SaveRegistry(reg *PermissionRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Validate checks required fields, duplicate ids and that every role only
// lists permissions present in the registry.
func (r *PermissionRegistry) Validate() error {
	if len(r.Permissions) == 0 {
		return fmt.Errorf("registry contains no permissions")
	}

	ids := make(map[string]bool, len(r.Permissions))
	for _, p := range r.Permissions {
		if p.ID == "" {
			return fmt.Errorf("permission missing required field: id")
		}
		if ids[p.ID] {
			return fmt.Errorf("duplicate permission ID: %s", p.ID)
		}
		ids[p.ID] = true

		if p.Name == "" {
			return fmt.Errorf("permission %s missing required field: name", p.ID)
		}
		if p.Category == "" {
			return fmt.Errorf("permission %s missing required field: category", p.ID)
		}
	}

	roles := make(map[string]bool, len(r.Roles))
	for _, role := range r.Roles {
		if role.Role == "" {
			return fmt.Errorf("role entry missing required field: role")
		}
		if roles[role.Role] {
			return fmt.Errorf("duplicate role: %s", role.Role)
		}
		roles[role.Role] = true

		for _, id := range role.Permissions {
			if !ids[id] {
				return fmt.Errorf("role %s references unknown permission %s", role.Role, id)
			}
		}
	}
	return nil
}

// Diff lists human-readable differences between a stored registry and the
// current one. An empty result means the two agree.
func Diff(stored, current *PermissionRegistry) []string {
	var out []string

	storedPerms := permissionIndex(stored)
	currentPerms := permissionIndex(current)
	for _, id := range sortedKeys(currentPerms) {
		if _, ok := storedPerms[id]; !ok {
			out = append(out, fmt.Sprintf("permission %s added", id))
		} else if storedPerms[id] != currentPerms[id] {
			out = append(out, fmt.Sprintf("permission %s changed", id))
		}
	}
	for _, id := range sortedKeys(storedPerms) {
		if _, ok := currentPerms[id]; !ok {
			out = append(out, fmt.Sprintf("permission %s removed", id))
		}
	}

	storedRoles := roleIndex(stored)
	currentRoles := roleIndex(current)
	for _, name := range sortedKeys(currentRoles) {
		cur := currentRoles[name]
		old, ok := storedRoles[name]
		if !ok {
			out = append(out, fmt.Sprintf("role %s added", name))
			continue
		}
		if old.Unconditional != cur.Unconditional {
			out = append(out, fmt.Sprintf("role %s unconditional %t -> %t", name, old.Unconditional, cur.Unconditional))
		}
		added, removed := setDiff(old.Permissions, cur.Permissions)
		if len(added) > 0 {
			out = append(out, fmt.Sprintf("role %s gained %s", name, strings.Join(added, ", ")))
		}
		if len(removed) > 0 {
			out = append(out, fmt.Sprintf("role %s lost %s", name, strings.Join(removed, ", ")))
		}
	}
	for _, name := range sortedKeys(storedRoles) {
		if _, ok := currentRoles[name]; !ok {
			out = append(out, fmt.Sprintf("role %s removed", name))
		}
	}
	return out
}

func permissionIndex(r *PermissionRegistry) map[string]PermissionEntry {
	out := map[string]PermissionEntry{}
	if r == nil {
		return out
	}
	for _, p := range r.Permissions {
		out[p.ID] = p
	}
	return out
}

func roleIndex(r *PermissionRegistry) map[string]RoleEntry {
	out := map[string]RoleEntry{}
	if r == nil {
		return out
	}
	for _, role := range r.Roles {
		out[role.Role] = role
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func setDiff(old, cur []string) (added, removed []string) {
	oldSet := make(map[string]bool, len(old))
	for _, id := range old {
		oldSet[id] = true
	}
	curSet := make(map[string]bool, len(cur))
	for _, id := range cur {
		curSet[id] = true
		if !oldSet[id] {
			added = append(added, id)
		}
	}
	for _, id := range old {
		if !curSet[id] {
			removed = append(removed, id)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}
