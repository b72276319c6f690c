// Package pkgmanager converts the pnpm-authored template for the package
// manager the user picked and runs that manager.
package pkgmanager

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/jakoblorz/create-stack/internal/fileops"
	"github.com/jakoblorz/create-stack/internal/models"
	"github.com/jakoblorz/create-stack/internal/output"
	"github.com/jakoblorz/create-stack/internal/warnings"
	"github.com/jakoblorz/create-stack/internal/workspace"
)

const scope = "package-manager"

// Adapter rewrites manifests, Dockerfiles and pnpm artifacts.
type Adapter struct {
	logger *log.Logger
}

// New creates an Adapter
func New(logger *log.Logger) *Adapter {
	return &Adapter{logger: output.OrDiscard(logger)}
}

func (a *Adapter) Name() string {
	return "Adapting package manager"
}

// Apply converts the workspace for cfg.PackageManager. For pnpm only the
// packageManager field is written.
func (a *Adapter) Apply(ctx context.Context, ws *workspace.Workspace, cfg models.ProjectConfig) (*warnings.Log, error) {
	warns := warnings.New()
	ops := fileops.New(ws.FS(), a.logger)
	m := cfg.PackageManager

	if m.IsNative() {
		a.configureRoot(ops, ws, warns, m, nil)
		return warns, nil
	}

	catalog, err := workspace.LoadCatalog(ws.FS(), ws.Path(workspace.WorkspaceFile))
	if err != nil {
		warns.AddError(scope, workspace.WorkspaceFile, err)
		catalog = workspace.CatalogIndex{}
	}

	manifests, err := ws.FindManifests()
	if err != nil {
		warns.AddError(scope, "", err)
	}
	for _, manifest := range manifests {
		if err := ctx.Err(); err != nil {
			return warns, err
		}
		a.resolveManifest(ops, ws, warns, manifest, catalog, m)
	}

	for _, dockerfile := range ws.Dockerfiles() {
		rel := ws.Rel(dockerfile)
		_, err := ops.UpdateText(dockerfile, func(text string) (string, error) {
			return ApplyRules(text, DockerfileRules, m), nil
		})
		if err != nil && !fileops.IsNotExist(err) {
			warns.AddError(scope, rel, err)
		}
	}

	globs, err := workspace.WorkspaceGlobs(ws.FS(), ws.Path(workspace.WorkspaceFile))
	if err != nil {
		a.logger.Debug("using default workspace globs", "reason", err)
	}
	a.configureRoot(ops, ws, warns, m, globs)

	artifacts := []string{ws.Path(workspace.LockFile)}
	if m == models.PackageManagerNpm {
		artifacts = append(artifacts, ws.Path(workspace.WorkspaceFile))
	}
	for _, deleted := range ops.DeleteAll(ctx, warns, scope, artifacts) {
		a.logger.Debug("removed pnpm artifact", "file", ws.Rel(deleted))
	}

	return warns, nil
}

func (a *Adapter) resolveManifest(ops *fileops.Ops, ws *workspace.Workspace, warns *warnings.Log, manifest string, catalog workspace.CatalogIndex, m models.PackageManager) {
	rel := ws.Rel(manifest)

	var unresolved []*UnresolvedError
	_, err := ops.UpdateJSON(manifest, func(data []byte) ([]byte, error) {
		out, missing, err := ResolveDependencies(data, catalog, m)
		unresolved = missing
		return out, err
	})
	if err != nil {
		warns.AddError(scope, rel, err)
		return
	}
	for _, u := range unresolved {
		warns.AddError(scope, rel, u)
	}
}

func (a *Adapter) configureRoot(ops *fileops.Ops, ws *workspace.Workspace, warns *warnings.Log, m models.PackageManager, globs []string) {
	_, err := ops.UpdateJSON(ws.Path(workspace.ManifestFile), func(data []byte) ([]byte, error) {
		data, err := ConfigureRoot(data, m, globs)
		if err != nil {
			return nil, err
		}
		if m.IsNative() {
			return data, nil
		}
		return RewriteScripts(data, m)
	})
	if err != nil {
		warns.AddError(scope, workspace.ManifestFile, err)
	}
}
