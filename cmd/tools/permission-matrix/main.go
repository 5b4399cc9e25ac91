// cmd/tools/permission-matrix/main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"loandesk/internal/models"
	"loandesk/internal/permissions"
	"loandesk/pkg/registry"
)

const defaultRegistryPath = "configs/permission-registry.json"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	if len(args) < 1 {
		help(out)
		return 1
	}

	resolver := permissions.NewResolver()

	switch args[0] {
	case "matrix":
		matrixCmd := flag.NewFlagSet("matrix", flag.ContinueOnError)
		matrixCmd.SetOutput(out)
		if err := matrixCmd.Parse(args[1:]); err != nil {
			return 1
		}
		printMatrix(out, resolver)

	case "validate":
		validateCmd := flag.NewFlagSet("validate", flag.ContinueOnError)
		validateCmd.SetOutput(out)
		path := validateCmd.String("path", "", "Registry file to compare against the built-in role table")
		if err := validateCmd.Parse(args[1:]); err != nil {
			return 1
		}
		if err := validate(out, resolver, *path); err != nil {
			fmt.Fprintf(out, "Permission validation failed: %v\n", err)
			return 1
		}
		fmt.Fprintln(out, "Permission validation passed.")

	case "export":
		exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
		exportCmd.SetOutput(out)
		path := exportCmd.String("path", defaultRegistryPath, "Path to registry file")
		version := exportCmd.String("version", "1.0.0", "Registry version")
		if err := exportCmd.Parse(args[1:]); err != nil {
			return 1
		}
		reg := buildRegistry(resolver, *version)
		if err := registry.SaveRegistry(reg, *path); err != nil {
			fmt.Fprintf(out, "Error exporting registry: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "Exported %d permissions and %d roles to %s\n", len(reg.Permissions), len(reg.Roles), *path)

	case "help":
		help(out)

	default:
		help(out)
		return 1
	}
	return 0
}

// buildRegistry snapshots the resolver's catalog and role table.
func buildRegistry(resolver *permissions.Resolver, version string) *registry.PermissionRegistry {
	reg := &registry.PermissionRegistry{
		Version:     version,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Permissions: []registry.PermissionEntry{},
		Roles:       []registry.RoleEntry{},
	}

	for _, p := range resolver.Catalog() {
		reg.Permissions = append(reg.Permissions, registry.PermissionEntry{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Category:    string(p.Category),
		})
	}

	for _, role := range resolver.Roles() {
		entry := registry.RoleEntry{
			Role:          string(role),
			Unconditional: resolver.Unconditional(role),
			Permissions:   []string{},
		}
		for _, p := range resolver.PermissionsForRole(role) {
			entry.Permissions = append(entry.Permissions, p.ID)
		}
		reg.Roles = append(reg.Roles, entry)
	}
	return reg
}

func validate(out io.Writer, resolver *permissions.Resolver, path string) error {
	if err := resolver.ValidateGrants(); err != nil {
		return err
	}
	current := buildRegistry(resolver, "")
	if err := current.Validate(); err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintf(out, "Role table is consistent. Found %d permissions and %d roles.\n",
			len(current.Permissions), len(current.Roles))
		return nil
	}

	stored, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := stored.Validate(); err != nil {
		return fmt.Errorf("registry %s: %w", path, err)
	}

	drift := registry.Diff(stored, current)
	if len(drift) > 0 {
		for _, line := range drift {
			fmt.Fprintf(out, "  %s\n", line)
		}
		return fmt.Errorf("registry %s is out of date (%d differences), run export", path, len(drift))
	}
	return nil
}

func printMatrix(out io.Writer, resolver *permissions.Resolver) {
	roles := resolver.Roles()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprint(tw, "PERMISSION")
	for _, role := range roles {
		fmt.Fprintf(tw, "\t%s", role)
	}
	fmt.Fprintln(tw)

	for _, p := range resolver.Catalog() {
		fmt.Fprint(tw, p.ID)
		for _, role := range roles {
			mark := "-"
			if resolver.HasPermission(models.Actor{Role: role}, p.ID) {
				mark = "x"
			}
			fmt.Fprintf(tw, "\t%s", mark)
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}

func help(out io.Writer) {
	fmt.Fprint(out, `
Usage: permission-matrix <command> [flags]

Commands:
  matrix    Print the role by permission table
  validate  Check the role table, and optionally a registry file, for drift
  export    Write the catalog and role table to a registry file
  help      Show this help message

Examples:
  permission-matrix matrix
  permission-matrix validate -path configs/permission-registry.json
  permission-matrix export -path configs/permission-registry.json

Use 'permission-matrix <command> -h' for more information about a command.
`)
}
