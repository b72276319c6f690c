// Package identity renames the template: every casing of the template's own
// name is replaced with the same casing of the project name across a fixed
// list of files, and the root manifest stops describing the template's CLI.
package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jakoblorz/create-stack/internal/fileops"
	"github.com/jakoblorz/create-stack/internal/models"
	"github.com/jakoblorz/create-stack/internal/naming"
	"github.com/jakoblorz/create-stack/internal/output"
	"github.com/jakoblorz/create-stack/internal/warnings"
	"github.com/jakoblorz/create-stack/internal/workspace"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const scope = "identity"

// Propagator rewrites the template name.
type Propagator struct {
	logger *log.Logger
}

// New creates a Propagator
func New(logger *log.Logger) *Propagator {
	return &Propagator{logger: output.OrDiscard(logger)}
}

func (p *Propagator) Name() string {
	return "Propagating project name"
}

// Files returns the files that carry the template name, relative to the root.
func Files() []string {
	return []string{
		workspace.ManifestFile,
		"apps/web/.env.example",
		"apps/web/app/(home)/page.tsx",
		"apps/web/config/metadata.ts",
		"apps/web/config/site.ts",
		workspace.ComposeFile,
		"packages/db/.env.example",
		"packages/auth/src/server.ts",
		"packages/email/src/branding.ts",
		"packages/rate-limit/src/limiter.ts",
	}
}

// Replacements returns the substitutions that turn the template name into
// name.
func Replacements(name string) []naming.Replacement {
	return naming.Replacements(naming.Of(models.TemplateName), naming.Of(name))
}

// Apply rewrites every listed file. Missing files are skipped.
func (p *Propagator) Apply(ctx context.Context, ws *workspace.Workspace, cfg models.ProjectConfig) (*warnings.Log, error) {
	warns := warnings.New()
	ops := fileops.New(ws.FS(), p.logger)
	pairs := Replacements(cfg.Name)

	for _, rel := range Files() {
		if err := ctx.Err(); err != nil {
			return warns, err
		}

		changed, err := ops.UpdateText(ws.Path(rel), func(text string) (string, error) {
			return naming.ReplaceAll(text, pairs), nil
		})
		if err != nil {
			if !fileops.IsNotExist(err) {
				warns.AddError(scope, rel, err)
			}
			continue
		}
		if changed {
			p.logger.Debug("renamed", "file", rel)
		}
	}

	_, err := ops.UpdateJSON(ws.Path(workspace.ManifestFile), func(data []byte) ([]byte, error) {
		return ResetManifest(data, cfg)
	})
	if err != nil && !fileops.IsNotExist(err) {
		warns.AddError(scope, workspace.ManifestFile, err)
	}

	return warns, nil
}

// InitialVersion is written to the root manifest of a new project.
const InitialVersion = "1.0.0"

// publishFields describe the template as the published CLI package.
var publishFields = []string{"bin", "files", "homepage", "repository", "keywords", "bugs", "author"}

// cliScripts build and publish the CLI.
var cliScripts = []string{"build:cli", "prepublish"}

// cliDevDependencies are only needed to bundle the CLI.
var cliDevDependencies = []string{"@types/degit", "tsup"}

// ResetManifest turns the template's root manifest, which doubles as the
// manifest of the published CLI, into the manifest of a new project. The
// root dependencies all belong to the CLI and are dropped.
func ResetManifest(data []byte, cfg models.ProjectConfig) ([]byte, error) {
	var paths []string
	paths = append(paths, publishFields...)
	for _, name := range cliScripts {
		paths = append(paths, "scripts."+fileops.EscapeKey(name))
	}
	paths = append(paths, "dependencies")
	for _, name := range cliDevDependencies {
		paths = append(paths, "devDependencies."+fileops.EscapeKey(name))
	}

	var err error
	for _, p := range paths {
		if !gjson.GetBytes(data, p).Exists() {
			continue
		}
		if data, err = sjson.DeleteBytes(data, p); err != nil {
			return nil, fmt.Errorf("failed to delete %s: %w", p, err)
		}
	}

	// the kebab form drops the scope, the package name must not
	if strings.HasPrefix(cfg.Name, "@") {
		if data, err = sjson.SetBytes(data, "name", cfg.Name); err != nil {
			return nil, fmt.Errorf("failed to set name: %w", err)
		}
	}
	if data, err = sjson.SetBytes(data, "description", cfg.Variant.Summary()); err != nil {
		return nil, fmt.Errorf("failed to set description: %w", err)
	}
	if data, err = sjson.SetBytes(data, "version", InitialVersion); err != nil {
		return nil, fmt.Errorf("failed to set version: %w", err)
	}
	return data, nil
}
