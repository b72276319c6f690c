package pkgmanager

import (
	"fmt"
	"strings"

	"github.com/jakoblorz/create-stack/internal/fileops"
	"github.com/jakoblorz/create-stack/internal/models"
	"github.com/jakoblorz/create-stack/internal/workspace"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DependencyFields are the package.json sections whose ranges are rewritten.
var DependencyFields = []string{
	"dependencies",
	"devDependencies",
	"peerDependencies",
	"optionalDependencies",
}

const (
	catalogProtocol   = "catalog:"
	workspaceProtocol = "workspace:"
)

// UnresolvedError describes a dependency range that could not be rewritten.
type UnresolvedError struct {
	Field   string
	Package string
	Err     error
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Field, e.Package, e.Err)
}

func (e *UnresolvedError) Unwrap() error {
	return e.Err
}

// ResolveDependencies rewrites catalog: and workspace: ranges of one manifest
// for m. Catalog references resolve to the pinned version; when the group or
// package is missing the range is left untouched and reported. workspace:
// ranges become "*" for managers without the protocol.
func ResolveDependencies(data []byte, catalog workspace.CatalogIndex, m models.PackageManager) ([]byte, []*UnresolvedError, error) {
	type edit struct {
		path  string
		value string
	}

	var edits []edit
	var unresolved []*UnresolvedError
	for _, field := range DependencyFields {
		gjson.GetBytes(data, field).ForEach(func(name, spec gjson.Result) bool {
			value := spec.String()
			keyPath := field + "." + fileops.EscapeKey(name.String())

			switch {
			case strings.HasPrefix(value, catalogProtocol) && !m.SupportsCatalogs():
				group := strings.TrimSpace(strings.TrimPrefix(value, catalogProtocol))
				version, err := catalog.Lookup(group, name.String())
				if err != nil {
					unresolved = append(unresolved, &UnresolvedError{Field: field, Package: name.String(), Err: err})
					return true
				}
				edits = append(edits, edit{path: keyPath, value: version})
			case strings.HasPrefix(value, workspaceProtocol) && !m.SupportsWorkspaceProtocol():
				edits = append(edits, edit{path: keyPath, value: "*"})
			}
			return true
		})
	}

	var err error
	for _, e := range edits {
		data, err = sjson.SetBytes(data, e.path, e.value)
		if err != nil {
			return nil, unresolved, fmt.Errorf("failed to set %s: %w", e.path, err)
		}
	}
	return data, unresolved, nil
}

// RewriteScripts applies ScriptRules and RewriteInvocations to every root
// script.
func RewriteScripts(data []byte, m models.PackageManager) ([]byte, error) {
	type edit struct {
		path  string
		value string
	}

	scripts := gjson.GetBytes(data, "scripts")
	names := map[string]bool{}
	scripts.ForEach(func(name, _ gjson.Result) bool {
		names[name.String()] = true
		return true
	})

	var edits []edit
	scripts.ForEach(func(name, cmd gjson.Result) bool {
		rewritten := RewriteInvocations(ApplyRules(cmd.String(), ScriptRules, m), m, names)
		if rewritten != cmd.String() {
			edits = append(edits, edit{path: "scripts." + fileops.EscapeKey(name.String()), value: rewritten})
		}
		return true
	})

	var err error
	for _, e := range edits {
		data, err = sjson.SetBytes(data, e.path, e.value)
		if err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", e.path, err)
		}
	}
	return data, nil
}

// bunPostCSS is hoisted by pnpm but must be declared at the root for bun to
// resolve it from the Next.js app.
const (
	bunPostCSS        = "@tailwindcss/postcss"
	bunPostCSSVersion = "^4.1.18"
)

// ConfigureRoot sets packageManager and, for managers other than pnpm,
// declares workspaces and drops the pnpm config block. For bun it also
// declares the root PostCSS plugin unless it already is.
func ConfigureRoot(data []byte, m models.PackageManager, globs []string) ([]byte, error) {
	data, err := sjson.SetBytes(data, "packageManager", m.Identifier())
	if err != nil {
		return nil, fmt.Errorf("failed to set packageManager: %w", err)
	}
	if m.IsNative() {
		return data, nil
	}

	if !gjson.GetBytes(data, "workspaces").Exists() {
		data, err = sjson.SetBytes(data, "workspaces", globs)
		if err != nil {
			return nil, fmt.Errorf("failed to set workspaces: %w", err)
		}
	}
	if gjson.GetBytes(data, "pnpm").Exists() {
		data, err = sjson.DeleteBytes(data, "pnpm")
		if err != nil {
			return nil, fmt.Errorf("failed to delete pnpm config: %w", err)
		}
	}
	if m == models.PackageManagerBun {
		keyPath := "dependencies." + fileops.EscapeKey(bunPostCSS)
		if !gjson.GetBytes(data, keyPath).Exists() {
			data, err = sjson.SetBytes(data, keyPath, bunPostCSSVersion)
			if err != nil {
				return nil, fmt.Errorf("failed to add %s: %w", bunPostCSS, err)
			}
		}
	}
	return data, nil
}
