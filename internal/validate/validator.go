// Package validate gates a run before anything is written: the project name,
// the destination directory and the external tools it needs.
package validate

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jakoblorz/create-stack/internal/filesystem"
	"github.com/jakoblorz/create-stack/internal/models"
	"golang.org/x/mod/semver"
)

// MinimumGitVersion is the first git release that supports `init -b`.
const MinimumGitVersion = "2.28.0"

// Validator checks every prerequisite of a run.
type Validator struct {
	fs    filesystem.FileSystem
	tools ToolChecker
}

// New creates a Validator
func New(fs filesystem.FileSystem, tools ToolChecker) *Validator {
	return &Validator{fs: fs, tools: tools}
}

// Destination returns the directory the project will be created in.
func Destination(cfg models.ProjectConfig, cwd string) string {
	return filepath.Join(cwd, cfg.Directory())
}

// Check validates cfg for a project created below cwd. Checks run in order
// name, destination, tools; the first failure is returned.
func (v *Validator) Check(ctx context.Context, cfg models.ProjectConfig, cwd string) error {
	if err := ValidateName(cfg.Name); err != nil {
		return err
	}
	if err := v.CheckDestination(Destination(cfg, cwd)); err != nil {
		return err
	}
	if !cfg.PackageManager.IsValid() {
		return newError("package-manager", "choose one of pnpm, npm or bun",
			fmt.Sprintf("unsupported package manager %q", cfg.PackageManager))
	}
	if err := v.CheckTool(ctx, cfg.PackageManager.String(), cfg.PackageManager.MinimumVersion()); err != nil {
		return err
	}
	if cfg.InitGit {
		if err := v.CheckTool(ctx, "git", MinimumGitVersion); err != nil {
			return err
		}
	}
	return nil
}

// CheckDestination fails when anything exists at path.
func (v *Validator) CheckDestination(path string) error {
	if v.fs.Exists(path) {
		return newError("destination", "choose another name or remove the existing directory",
			fmt.Sprintf("destination %s already exists", path))
	}
	return nil
}

// CheckTool fails when tool is missing or older than minimum.
func (v *Validator) CheckTool(ctx context.Context, tool, minimum string) error {
	installed, err := v.tools.Version(ctx, tool)
	if err != nil {
		return &Error{
			Check:   tool,
			Message: fmt.Sprintf("%s is not available", tool),
			Hint:    fmt.Sprintf("install %s %s or newer and make sure it is on PATH", tool, minimum),
			Err:     err,
		}
	}

	if minimum == "" {
		return nil
	}
	if !semver.IsValid("v"+installed) {
		return newError(tool, fmt.Sprintf("install %s %s or newer", tool, minimum),
			fmt.Sprintf("could not understand %s version %q", tool, installed))
	}
	if semver.Compare("v"+installed, "v"+minimum) < 0 {
		return newError(tool, fmt.Sprintf("upgrade %s to %s or newer", tool, minimum),
			fmt.Sprintf("%s %s is too old", tool, installed))
	}
	return nil
}
