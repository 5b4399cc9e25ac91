package permissions

import (
	"fmt"
	"sort"

	"loandesk/internal/common/validation"
	"loandesk/internal/models"
)

// Resolver is safe for concurrent use; it is never mutated after construction.
type Resolver struct {
	catalog []models.Permission
	byID    map[string]models.Permission
	grants  map[models.Role]Grant
}

// NewResolver builds a resolver over the production catalog and role table.
func NewResolver() *Resolver {
	return New(Catalog(), DefaultGrants())
}

func New(catalog []models.Permission, grants map[models.Role]Grant) *Resolver {
	byID := make(map[string]models.Permission, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}
	return &Resolver{catalog: catalog, byID: byID, grants: grants}
}

// HasPermission is true for any role with an unconditional grant, otherwise
// true only when permissionID is in the role's set. Unknown roles hold nothing.
func (r *Resolver) HasPermission(actor models.Actor, permissionID string) bool {
	grant, ok := r.grants[actor.Role]
	if !ok || grant == nil {
		return false
	}
	return grant.Allows(permissionID)
}

// CanAccessResource checks the "<resource>.<action>" permission.
func (r *Resolver) CanAccessResource(actor models.Actor, resource, action string) bool {
	return r.HasPermission(actor, resource+"."+action)
}

// PermissionsForRole returns the catalog entries held by role, in catalog
// order. Unknown roles get an empty, non-nil slice.
func (r *Resolver) PermissionsForRole(role models.Role) []models.Permission {
	out := []models.Permission{}
	grant, ok := r.grants[role]
	if !ok || grant == nil {
		return out
	}
	for _, p := range r.catalog {
		if grant.Allows(p.ID) {
			out = append(out, p)
		}
	}
	return out
}

// Permission looks up a catalog entry.
func (r *Resolver) Permission(id string) (models.Permission, bool) {
	p, ok := r.byID[id]
	return p, ok
}

func (r *Resolver) Catalog() []models.Permission {
	out := make([]models.Permission, len(r.catalog))
	copy(out, r.catalog)
	return out
}

// Roles returns the roles in the table, sorted by name.
func (r *Resolver) Roles() []models.Role {
	roles := make([]models.Role, 0, len(r.grants))
	for role := range r.grants {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

// ValidateGrants checks that catalog ids are well formed and unique and that
// every granted id exists in the catalog.
func (r *Resolver) ValidateGrants() error {
	seen := make(map[string]bool, len(r.catalog))
	for _, p := range r.catalog {
		if err := validation.ValidatePermissionID(p.ID); err != nil {
			return err
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate permission %q in catalog", p.ID)
		}
		seen[p.ID] = true
	}

	for _, role := range r.Roles() {
		grant := r.grants[role]
		if grant == nil {
			return fmt.Errorf("role %q has no grant", role)
		}
		for _, id := range grant.IDs() {
			if _, ok := r.byID[id]; !ok {
				return fmt.Errorf("role %q references unknown permission %q", role, id)
			}
		}
	}
	return nil
}

// Unconditional reports whether role holds every permission, listed or not.
func (r *Resolver) Unconditional(role models.Role) bool {
	_, ok := r.grants[role].(UnconditionalGrant)
	return ok
}
