package models

import (
	"fmt"
	"strings"
)

// PackageManager is a JavaScript package manager the project can target.
type PackageManager string

const (
	PackageManagerPnpm PackageManager = "pnpm"
	PackageManagerNpm  PackageManager = "npm"
	PackageManagerBun  PackageManager = "bun"
)

// NativePackageManager is the manager the template is authored against.
const NativePackageManager = PackageManagerPnpm

// PackageManagers lists every supported manager in prompt order.
var PackageManagers = []PackageManager{PackageManagerPnpm, PackageManagerNpm, PackageManagerBun}

// pinned versions written to the root manifest's packageManager field
var packageManagerVersions = map[PackageManager]string{
	PackageManagerPnpm: "10.18.0",
	PackageManagerNpm:  "10.9.3",
	PackageManagerBun:  "1.2.22",
}

// minimum tool versions the generated workspace needs
var packageManagerMinimums = map[PackageManager]string{
	PackageManagerPnpm: "9.5.0",
	PackageManagerNpm:  "8.0.0",
	PackageManagerBun:  "1.1.0",
}

// IsValid checks if the package manager is supported
func (p PackageManager) IsValid() bool {
	_, ok := packageManagerVersions[p]
	return ok
}

// String returns the string representation of PackageManager
func (p PackageManager) String() string {
	return string(p)
}

// IsNative reports whether p is the template's own package manager.
func (p PackageManager) IsNative() bool {
	return p == NativePackageManager
}

// Identifier returns the versioned value for package.json's packageManager
// field, e.g. "pnpm@10.18.0".
func (p PackageManager) Identifier() string {
	return fmt.Sprintf("%s@%s", p, packageManagerVersions[p])
}

// MinimumVersion returns the oldest tool version the generated project
// supports.
func (p PackageManager) MinimumVersion() string {
	return packageManagerMinimums[p]
}

// SupportsWorkspaceProtocol reports whether "workspace:" dependency ranges
// are understood natively.
func (p PackageManager) SupportsWorkspaceProtocol() bool {
	return p == PackageManagerPnpm || p == PackageManagerBun
}

// SupportsCatalogs reports whether "catalog:" dependency ranges are resolved
// from pnpm-workspace.yaml.
func (p PackageManager) SupportsCatalogs() bool {
	return p == PackageManagerPnpm
}

// RunCommand returns the invocation for a package.json script.
func (p PackageManager) RunCommand(script string) string {
	switch p {
	case PackageManagerNpm:
		return "npm run " + script
	case PackageManagerBun:
		return "bun run " + script
	default:
		return "pnpm " + script
	}
}

// InstallCommand returns the dependency installation invocation.
func (p PackageManager) InstallCommand() string {
	return string(p) + " install"
}

// ParsePackageManager parses a string into a PackageManager
func ParsePackageManager(s string) (PackageManager, error) {
	p := PackageManager(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("invalid package manager: %s (must be pnpm, npm, or bun)", s)
	}
	return p, nil
}
