package workspace

import (
	"bytes"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	gitignore "github.com/denormal/go-gitignore"
	"github.com/jakoblorz/create-stack/internal/filesystem"
)

// Well-known files of the template, relative to the workspace root.
const (
	ManifestFile     = "package.json"
	WorkspaceFile    = "pnpm-workspace.yaml"
	LockFile         = "pnpm-lock.yaml"
	TaskRunnerFile   = "turbo.json"
	ComposeFile      = "docker-compose.prod.yml"
	DockerIgnoreFile = ".dockerignore"
	DockerFile       = "Dockerfile.prod"
	LicenseFile      = "LICENSE"
	ReadmeFile       = "README.md"
	EnvExampleFile   = ".env.example"
	GitIgnoreFile    = ".gitignore"
)

// DefaultWorkspaceGlobs is used when the workspace declaration is unreadable.
var DefaultWorkspaceGlobs = []string{"apps/*", "packages/*"}

// InternalPaths is the template's own CLI and release material. It never
// belongs in a generated project.
var InternalPaths = []string{
	"scripts",
	"dist",
	"assets",
	".github/CONTRIBUTING.md",
	"SCREENSHOTS.md",
	"tsup.config.ts",
	".npmignore",
}

// InternalCatalogs are pnpm catalog sections that only the template's CLI
// depends on.
var InternalCatalogs = []string{"cli"}

// Workspace is the directory tree being materialized: a root path plus the
// filesystem every stage reads and writes through.
type Workspace struct {
	fs   filesystem.FileSystem
	Root string
}

// New creates a Workspace rooted at root.
func New(fs filesystem.FileSystem, root string) *Workspace {
	return &Workspace{
		fs:   fs,
		Root: filepath.Clean(root),
	}
}

// FS returns the workspace filesystem.
func (w *Workspace) FS() filesystem.FileSystem {
	return w.fs
}

// Path joins rel (slash separated) onto the workspace root.
func (w *Workspace) Path(rel ...string) string {
	parts := make([]string, 0, len(rel)+1)
	parts = append(parts, w.Root)
	for _, r := range rel {
		parts = append(parts, filepath.FromSlash(r))
	}
	return filepath.Join(parts...)
}

// Rel returns path relative to the root with forward slashes.
func (w *Workspace) Rel(path string) string {
	rel, err := filepath.Rel(w.Root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// Exists reports whether rel exists below the root.
func (w *Workspace) Exists(rel string) bool {
	return w.fs.Exists(w.Path(rel))
}

// PresentApps returns the known apps whose directory still exists.
func (w *Workspace) PresentApps() []App {
	var present []App
	for _, app := range Apps {
		if w.Exists(app.Dir) {
			present = append(present, app)
		}
	}
	return present
}

// FindManifests returns every package.json below the root, skipping
// node_modules and anything the root .gitignore ignores.
func (w *Workspace) FindManifests() ([]string, error) {
	ignore, err := w.loadRootGitIgnore()
	if err != nil {
		return nil, err
	}

	var manifests []string
	err = w.fs.WalkDir(w.Root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == w.Root {
			return nil
		}

		if entry.IsDir() && (entry.Name() == "node_modules" || entry.Name() == ".git") {
			return filepath.SkipDir
		}

		if ignore != nil {
			if match := ignore.Relative(w.Rel(path), entry.IsDir()); match != nil && match.Ignore() {
				if entry.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if !entry.IsDir() && entry.Name() == ManifestFile {
			manifests = append(manifests, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk workspace: %w", err)
	}

	return manifests, nil
}

func (w *Workspace) loadRootGitIgnore() (gitignore.GitIgnore, error) {
	ignorePath := w.Path(GitIgnoreFile)
	if !w.fs.Exists(ignorePath) {
		return nil, nil
	}

	data, err := w.fs.ReadFile(ignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitignore: %w", err)
	}

	return gitignore.New(bytes.NewReader(data), w.Root, nil), nil
}

// Dockerfiles returns the production Dockerfile path of every present app
// that has one.
func (w *Workspace) Dockerfiles() []string {
	var paths []string
	for _, app := range w.PresentApps() {
		if app.HasDockerfile {
			paths = append(paths, w.Path(app.Dir, DockerFile))
		}
	}
	return paths
}

// EnvSites returns every present app and package that carries environment
// files, apps first.
func (w *Workspace) EnvSites() []EnvSite {
	var sites []EnvSite
	for _, site := range EnvSites() {
		if w.Exists(site.Dir) {
			sites = append(sites, site)
		}
	}
	return sites
}

// IsInternal reports whether rel is template-maintenance content.
func IsInternal(rel string) bool {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "./")
	for _, p := range InternalPaths {
		if rel == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
	}
	return false
}
