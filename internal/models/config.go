package models

import (
	"path/filepath"
	"strings"
)

// DefaultTemplate is the repository locator of the upstream template.
const DefaultTemplate = "github:vijaysingh2219/build-elevate"

// TemplateName is the placeholder name the template uses for itself.
const TemplateName = "build-elevate"

// DefaultName is used when no name is given and prompts are disabled.
const DefaultName = "my-app"

// ProjectConfig holds every user choice for one run. It is built once from
// flags, environment and prompts and passed by value afterwards.
type ProjectConfig struct {
	// Name is the validated project (package) name
	Name string

	Variant        Variant
	PackageManager PackageManager

	IncludeDocker bool
	IncludeStudio bool
	IncludeDocs   bool

	// InitGit initializes a repository and commits the result
	InitGit bool
	// RemoteURL is added as "origin" when set
	RemoteURL string

	SkipInstall bool
	Verbose     bool

	// Template is the repository locator to acquire
	Template string
}

// DefaultProjectConfig returns the configuration used for unset fields.
func DefaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Variant:        VariantFull,
		PackageManager: NativePackageManager,
		IncludeDocker:  true,
		IncludeStudio:  true,
		IncludeDocs:    true,
		InitGit:        true,
		Template:       DefaultTemplate,
	}
}

// WithDefaults fills zero-valued enum fields.
func (c ProjectConfig) WithDefaults() ProjectConfig {
	defaults := DefaultProjectConfig()
	if c.Variant == "" {
		c.Variant = defaults.Variant
	}
	if c.PackageManager == "" {
		c.PackageManager = defaults.PackageManager
	}
	if strings.TrimSpace(c.Template) == "" {
		c.Template = defaults.Template
	}
	return c
}

// Directory is the name of the directory the project is created in. Scoped
// names use their unscoped part: "@acme/app" -> "app".
func (c ProjectConfig) Directory() string {
	name := c.Name
	if strings.HasPrefix(name, "@") {
		if idx := strings.Index(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}
	}
	return filepath.FromSlash(name)
}
