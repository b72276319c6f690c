package workspace

import (
	"fmt"
	"sort"

	"github.com/jakoblorz/create-stack/internal/filesystem"
	"gopkg.in/yaml.v3"
)

// DefaultCatalog is the group name of the unnamed `catalog:` section.
const DefaultCatalog = "default"

// CatalogIndex maps a catalog group to package name to pinned version.
type CatalogIndex map[string]map[string]string

// workspaceDocument is the subset of pnpm-workspace.yaml the engine reads.
type workspaceDocument struct {
	Packages []string                     `yaml:"packages"`
	Catalog  map[string]string            `yaml:"catalog"`
	Catalogs map[string]map[string]string `yaml:"catalogs"`
}

// CatalogLookupError explains why a catalog reference could not be resolved.
type CatalogLookupError struct {
	Group   string
	Package string
	// MissingGroup is true when the whole group is absent.
	MissingGroup bool
}

func (e *CatalogLookupError) Error() string {
	if e.MissingGroup {
		return fmt.Sprintf("catalog %q not found", e.Group)
	}
	return fmt.Sprintf("package %q not found in catalog %q", e.Package, e.Group)
}

// ParseCatalog parses the catalog sections of a pnpm-workspace.yaml document.
func ParseCatalog(data []byte) (CatalogIndex, error) {
	doc, err := parseWorkspaceDocument(data)
	if err != nil {
		return nil, err
	}

	index := make(CatalogIndex, len(doc.Catalogs)+1)
	if len(doc.Catalog) > 0 {
		index[DefaultCatalog] = doc.Catalog
	}
	for group, entries := range doc.Catalogs {
		if entries == nil {
			entries = map[string]string{}
		}
		// `catalogs.default` and `catalog` are the same group; the named
		// form wins on conflicts.
		if existing, ok := index[group]; ok {
			for name, version := range entries {
				existing[name] = version
			}
			continue
		}
		index[group] = entries
	}
	return index, nil
}

// LoadCatalog reads the catalog index from the workspace declaration. A
// missing file yields an empty index.
func LoadCatalog(fs filesystem.FileSystem, path string) (CatalogIndex, error) {
	if !fs.Exists(path) {
		return CatalogIndex{}, nil
	}
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// Lookup resolves group and package to a version. An empty group means the
// default catalog.
func (c CatalogIndex) Lookup(group, pkg string) (string, error) {
	if group == "" {
		group = DefaultCatalog
	}
	entries, ok := c[group]
	if !ok {
		return "", &CatalogLookupError{Group: group, Package: pkg, MissingGroup: true}
	}
	version, ok := entries[pkg]
	if !ok {
		return "", &CatalogLookupError{Group: group, Package: pkg}
	}
	return version, nil
}

// Groups returns the group names in sorted order.
func (c CatalogIndex) Groups() []string {
	groups := make([]string, 0, len(c))
	for g := range c {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

// WorkspaceGlobs reads the `packages` list of the workspace declaration,
// falling back to DefaultWorkspaceGlobs when the file is missing, unreadable
// or declares nothing. The returned error explains a fallback and is meant to
// be logged, not returned.
func WorkspaceGlobs(fs filesystem.FileSystem, path string) ([]string, error) {
	fallback := append([]string(nil), DefaultWorkspaceGlobs...)

	data, err := fs.ReadFile(path)
	if err != nil {
		return fallback, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := parseWorkspaceDocument(data)
	if err != nil {
		return fallback, err
	}
	if len(doc.Packages) == 0 {
		return fallback, nil
	}
	return doc.Packages, nil
}

func parseWorkspaceDocument(data []byte) (*workspaceDocument, error) {
	var doc workspaceDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse workspace file: %w", err)
	}
	return &doc, nil
}
