// Package prune removes the parts of the template a variant does not need and
// rewrites the shared files that referenced them.
package prune

import (
	"context"
	"path"

	"github.com/charmbracelet/log"
	"github.com/jakoblorz/create-stack/internal/fileops"
	"github.com/jakoblorz/create-stack/internal/models"
	"github.com/jakoblorz/create-stack/internal/output"
	"github.com/jakoblorz/create-stack/internal/warnings"
	"github.com/jakoblorz/create-stack/internal/workspace"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const scope = "prune"

// Options controls which shared files are rewritten.
type Options struct {
	// Compose rewrites docker-compose.prod.yml. It is off when the compose file
	// is about to be deleted anyway.
	Compose bool
}

// RemoveApps deletes the given app and package directories concurrently and
// then drops references to every app that is no longer on disk from
// turbo.json, pnpm-workspace.yaml, the root scripts and, with opts.Compose,
// docker-compose.prod.yml. Failures are returned as warnings.
func RemoveApps(ctx context.Context, ws *workspace.Workspace, ops *fileops.Ops, opts Options, apps []workspace.App, pkgs []workspace.Package) *warnings.Log {
	warns := warnings.New()

	dirs := make([]string, 0, len(apps)+len(pkgs))
	for _, app := range apps {
		dirs = append(dirs, ws.Path(app.Dir))
	}
	for _, pkg := range pkgs {
		dirs = append(dirs, ws.Path(pkg.Dir))
	}
	for _, dir := range ops.DeleteAll(ctx, warns, scope, dirs) {
		ops.Logger().Debug("removed", "dir", ws.Rel(dir))
	}

	refs := newReferences(ops, ws, warns)
	refs.lintEnv()
	refs.catalogs()
	refs.scripts()
	if opts.Compose {
		refs.compose()
	}

	return warns
}

// Pruner removes what the selected variant excludes.
type Pruner struct {
	logger *log.Logger
}

// New creates a Pruner
func New(logger *log.Logger) *Pruner {
	return &Pruner{logger: output.OrDiscard(logger)}
}

func (p *Pruner) Name() string {
	return "Pruning variant"
}

// Apply deletes the apps and packages the variant drops, their shared
// exports and every reference to them.
func (p *Pruner) Apply(ctx context.Context, ws *workspace.Workspace, cfg models.ProjectConfig) (*warnings.Log, error) {
	removal := workspace.RemovalFor(cfg.Variant)
	if removal.Empty() {
		return warnings.New(), nil
	}

	ops := fileops.New(ws.FS(), p.logger)
	warns := RemoveApps(ctx, ws, ops, Options{Compose: cfg.IncludeDocker}, removal.Apps, removal.Packages)
	warns.Merge(RemoveExports(ctx, ws, ops, removal.Exports))
	return warns, nil
}

// RemoveExports deletes export entries from their package manifest, the
// source files they point to, the re-export in the package index and the
// client half of the package's environment schema.
func RemoveExports(ctx context.Context, ws *workspace.Workspace, ops *fileops.Ops, exports []workspace.Export) *warnings.Log {
	warns := warnings.New()
	for _, export := range exports {
		if err := ctx.Err(); err != nil {
			warns.AddError(scope, export.Package.Dir, err)
			return warns
		}
		removeExport(ctx, ws, ops, warns, export)
	}
	return warns
}

func removeExport(ctx context.Context, ws *workspace.Workspace, ops *fileops.Ops, warns *warnings.Log, export workspace.Export) {
	manifest := path.Join(export.Package.Dir, workspace.ManifestFile)
	var files []string

	_, err := ops.UpdateJSON(ws.Path(manifest), func(data []byte) ([]byte, error) {
		keyPath := "exports." + fileops.EscapeKey(export.Key)
		entry := gjson.GetBytes(data, keyPath)
		if !entry.Exists() {
			return data, nil
		}
		files = exportTargets(entry)
		return sjson.DeleteBytes(data, keyPath)
	})
	if err != nil {
		if !fileops.IsNotExist(err) {
			warns.AddError(scope, manifest, err)
		}
		return
	}

	seen := map[string]bool{}
	var paths []string
	for _, f := range files {
		target := ws.Path(export.Package.Dir, path.Clean(f))
		if seen[target] {
			continue
		}
		seen[target] = true
		paths = append(paths, target)
	}
	for _, deleted := range ops.DeleteAll(ctx, warns, scope, paths) {
		ops.Logger().Debug("removed export source", "file", ws.Rel(deleted))
	}

	if export.Index != "" {
		rel := path.Join(export.Package.Dir, export.Index)
		_, err := ops.UpdateText(ws.Path(rel), func(text string) (string, error) {
			return StripReexport(text, export.Key), nil
		})
		if err != nil && !fileops.IsNotExist(err) {
			warns.AddError(scope, rel, err)
		}
	}
	if export.EnvSchema != "" {
		rel := path.Join(export.Package.Dir, export.EnvSchema)
		_, err := ops.UpdateText(ws.Path(rel), func(text string) (string, error) {
			return StripClientEnv(text), nil
		})
		if err != nil && !fileops.IsNotExist(err) {
			warns.AddError(scope, rel, err)
		}
	}
}

// exportTargets collects the file paths of an export entry, which is either a
// path or a map of conditions to paths.
func exportTargets(entry gjson.Result) []string {
	if entry.Type == gjson.String {
		return []string{entry.String()}
	}
	var targets []string
	entry.ForEach(func(_, value gjson.Result) bool {
		targets = append(targets, exportTargets(value)...)
		return true
	})
	return targets
}
