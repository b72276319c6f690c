package prune

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jakoblorz/create-stack/internal/fileops"
	"github.com/jakoblorz/create-stack/internal/warnings"
	"github.com/jakoblorz/create-stack/internal/workspace"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"
)

// references rewrites the shared files that mention apps which are no
// longer on disk.
type references struct {
	ops     *fileops.Ops
	ws      *workspace.Workspace
	warns   *warnings.Log
	absent  []workspace.App
	present []workspace.App
	pkgs    []workspace.Package
}

func newReferences(ops *fileops.Ops, ws *workspace.Workspace, warns *warnings.Log) *references {
	r := &references{ops: ops, ws: ws, warns: warns}
	for _, app := range workspace.Apps {
		if ws.Exists(app.Dir) {
			r.present = append(r.present, app)
		} else {
			r.absent = append(r.absent, app)
		}
	}
	for _, pkg := range workspace.Packages {
		if ws.Exists(pkg.Dir) {
			r.pkgs = append(r.pkgs, pkg)
		}
	}
	return r
}

// update runs one rewrite and records failures other than a missing file.
func (r *references) update(rel string, fn func(path string) (bool, error)) {
	changed, err := fn(r.ws.Path(rel))
	if err != nil {
		if !fileops.IsNotExist(err) {
			r.warns.AddError(scope, rel, err)
		}
		return
	}
	if changed {
		r.ops.Logger().Debug("pruned references", "file", rel)
	}
}

// lintEnv drops tasks.lint.env entries that only absent apps use.
func (r *references) lintEnv() {
	var dropped []string
	for _, app := range r.absent {
		dropped = append(dropped, app.LintEnv...)
	}
	if len(dropped) == 0 {
		return
	}
	var kept []string
	for _, app := range r.present {
		kept = append(kept, app.LintEnv...)
	}

	r.update(workspace.TaskRunnerFile, func(path string) (bool, error) {
		return r.ops.UpdateJSON(path, func(data []byte) ([]byte, error) {
			env := gjson.GetBytes(data, "tasks.lint.env")
			if !env.IsArray() {
				return data, nil
			}

			filtered := []string{}
			for _, v := range env.Array() {
				name := v.String()
				if matchesEnv(name, dropped) && !matchesEnv(name, kept) {
					continue
				}
				filtered = append(filtered, name)
			}
			if len(filtered) == len(env.Array()) {
				return data, nil
			}
			return sjson.SetBytes(data, "tasks.lint.env", filtered)
		})
	})
}

func matchesEnv(name string, patterns []string) bool {
	for _, p := range patterns {
		if prefix, ok := strings.CutSuffix(p, "*"); ok {
			if strings.HasPrefix(name, prefix) {
				return true
			}
			continue
		}
		if name == p {
			return true
		}
	}
	return false
}

// catalogs drops catalogs.<section> entries no remaining app or package
// depends on.
func (r *references) catalogs() {
	owned := map[string]bool{}
	for _, app := range r.present {
		for _, c := range app.Catalogs {
			owned[c] = true
		}
	}
	for _, pkg := range r.pkgs {
		for _, c := range pkg.Catalogs {
			owned[c] = true
		}
	}

	drop := map[string]bool{}
	for _, app := range r.absent {
		for _, c := range app.Catalogs {
			if !owned[c] {
				drop[c] = true
			}
		}
	}
	for _, pkg := range workspace.Packages {
		if r.ws.Exists(pkg.Dir) {
			continue
		}
		for _, c := range pkg.Catalogs {
			if !owned[c] {
				drop[c] = true
			}
		}
	}
	r.dropCatalogs(drop)
}

func (r *references) dropCatalogs(drop map[string]bool) {
	if len(drop) == 0 {
		return
	}

	r.update(workspace.WorkspaceFile, func(path string) (bool, error) {
		return r.ops.UpdateYAML(path, func(doc *yaml.Node) error {
			root := documentRoot(doc)
			catalogs := mappingValue(root, "catalogs")
			if catalogs == nil {
				return nil
			}
			deleteMappingKeys(catalogs, drop)
			if len(catalogs.Content) == 0 {
				deleteMappingKeys(root, map[string]bool{"catalogs": true})
			}
			return nil
		})
	})
}

// DropCatalogs removes the named catalogs.<section> entries from
// pnpm-workspace.yaml. A missing workspace file is not an error.
func DropCatalogs(ws *workspace.Workspace, ops *fileops.Ops, sections []string) *warnings.Log {
	warns := warnings.New()
	drop := make(map[string]bool, len(sections))
	for _, s := range sections {
		drop[s] = true
	}
	r := &references{ops: ops, ws: ws, warns: warns}
	r.dropCatalogs(drop)
	return warns
}

// compose drops services of absent apps and every depends_on edge to them.
func (r *references) compose() {
	services := map[string]bool{}
	for _, app := range r.absent {
		if app.ComposeService != "" {
			services[app.ComposeService] = true
		}
	}
	if len(services) == 0 {
		return
	}

	r.update(workspace.ComposeFile, func(path string) (bool, error) {
		return r.ops.UpdateYAML(path, func(doc *yaml.Node) error {
			block := mappingValue(documentRoot(doc), "services")
			if block == nil {
				return nil
			}
			if block.Kind != yaml.MappingNode {
				return fmt.Errorf("services is not a mapping")
			}

			deleteMappingKeys(block, services)

			for i := 1; i < len(block.Content); i += 2 {
				service := block.Content[i]
				deps := mappingValue(service, "depends_on")
				if deps == nil {
					continue
				}
				switch deps.Kind {
				case yaml.SequenceNode:
					deleteSequenceScalars(deps, services)
				case yaml.MappingNode:
					deleteMappingKeys(deps, services)
				}
				if len(deps.Content) == 0 {
					deleteMappingKeys(service, map[string]bool{"depends_on": true})
				}
			}
			return nil
		})
	})
}

// scripts drops root scripts that filter on an absent app.
func (r *references) scripts() {
	if len(r.absent) == 0 {
		return
	}
	patterns := make([]*regexp.Regexp, 0, len(r.absent))
	for _, app := range r.absent {
		patterns = append(patterns, FilterPattern(app.Name))
	}

	r.update(workspace.ManifestFile, func(path string) (bool, error) {
		return r.ops.UpdateJSON(path, func(data []byte) ([]byte, error) {
			var doomed []string
			gjson.GetBytes(data, "scripts").ForEach(func(key, value gjson.Result) bool {
				for _, p := range patterns {
					if p.MatchString(value.String()) {
						doomed = append(doomed, key.String())
						break
					}
				}
				return true
			})

			var err error
			for _, key := range doomed {
				data, err = sjson.DeleteBytes(data, "scripts."+fileops.EscapeKey(key))
				if err != nil {
					return nil, err
				}
			}
			return data, nil
		})
	})
}

// FilterPattern matches a package manager --filter or --workspace argument
// selecting app by name, scoped name or directory.
func FilterPattern(app string) *regexp.Regexp {
	return regexp.MustCompile(`--(?:filter|workspace)[= ]['"]?(?:@[^/\s'"]+/|(?:\./)?apps/)?` + regexp.QuoteMeta(app) + `['"]?(?:\s|$)`)
}
