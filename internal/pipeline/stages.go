package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jakoblorz/create-stack/internal/fileops"
	"github.com/jakoblorz/create-stack/internal/git"
	"github.com/jakoblorz/create-stack/internal/models"
	"github.com/jakoblorz/create-stack/internal/naming"
	"github.com/jakoblorz/create-stack/internal/output"
	"github.com/jakoblorz/create-stack/internal/pkgmanager"
	"github.com/jakoblorz/create-stack/internal/prune"
	"github.com/jakoblorz/create-stack/internal/warnings"
	"github.com/jakoblorz/create-stack/internal/workspace"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// InitialBranch is the branch a new repository starts on.
const InitialBranch = "main"

// CommitMessage is the message of the first commit.
const CommitMessage = "✨ Initial commit from Build Elevate"

var copyrightLine = regexp.MustCompile(`(?m)^Copyright \(c\) .*$`)

// Cleanup removes the template's own CLI material, its catalog section and
// the template author's copyright.
type Cleanup struct {
	logger *log.Logger
	now    func() time.Time
}

// NewCleanup creates a Cleanup stage; now supplies the LICENSE year.
func NewCleanup(logger *log.Logger, now func() time.Time) *Cleanup {
	if now == nil {
		now = time.Now
	}
	return &Cleanup{logger: output.OrDiscard(logger), now: now}
}

func (c *Cleanup) Name() string {
	return "Removing template internals"
}

func (c *Cleanup) Apply(ctx context.Context, ws *workspace.Workspace, cfg models.ProjectConfig) (*warnings.Log, error) {
	const scope = "cleanup"
	warns := warnings.New()
	ops := fileops.New(ws.FS(), c.logger)

	paths := make([]string, 0, len(workspace.InternalPaths))
	for _, rel := range workspace.InternalPaths {
		paths = append(paths, ws.Path(rel))
	}
	ops.DeleteAll(ctx, warns, scope, paths)

	holder := naming.Of(cfg.Name).Title
	line := fmt.Sprintf("Copyright (c) %d %s", c.now().Year(), holder)
	_, err := ops.UpdateText(ws.Path(workspace.LicenseFile), func(text string) (string, error) {
		return copyrightLine.ReplaceAllLiteralString(text, line), nil
	})
	if err != nil && !fileops.IsNotExist(err) {
		warns.AddError(scope, workspace.LicenseFile, err)
	}

	warns.Merge(prune.DropCatalogs(ws, ops, workspace.InternalCatalogs))

	if cfg.RemoteURL != "" {
		_, err = ops.UpdateJSON(ws.Path(workspace.ManifestFile), func(data []byte) ([]byte, error) {
			return SetRepository(data, cfg.RemoteURL)
		})
		if err != nil && !fileops.IsNotExist(err) {
			warns.AddError(scope, workspace.ManifestFile, err)
		}
	}

	return warns, nil
}

// SetRepository points the manifest's repository field at remote.
func SetRepository(data []byte, remote string) ([]byte, error) {
	data, err := sjson.SetBytes(data, "repository", map[string]string{"type": "git", "url": remote})
	if err != nil {
		return nil, fmt.Errorf("failed to set repository: %w", err)
	}
	return data, nil
}

// Extras removes Docker support, the studio app and the docs app when they
// are not wanted.
type Extras struct {
	logger *log.Logger
}

// NewExtras creates an Extras stage
func NewExtras(logger *log.Logger) *Extras {
	return &Extras{logger: output.OrDiscard(logger)}
}

func (e *Extras) Name() string {
	return "Removing optional extras"
}

func (e *Extras) Apply(ctx context.Context, ws *workspace.Workspace, cfg models.ProjectConfig) (*warnings.Log, error) {
	const scope = "extras"
	warns := warnings.New()
	ops := fileops.New(ws.FS(), e.logger)

	if !cfg.IncludeDocker {
		paths := []string{ws.Path(workspace.ComposeFile), ws.Path(workspace.DockerIgnoreFile)}
		paths = append(paths, ws.Dockerfiles()...)
		ops.DeleteAll(ctx, warns, scope, paths)

		_, err := ops.UpdateJSON(ws.Path(workspace.ManifestFile), func(data []byte) ([]byte, error) {
			return DeleteScripts(data, "docker:")
		})
		if err != nil && !fileops.IsNotExist(err) {
			warns.AddError(scope, workspace.ManifestFile, err)
		}
	}

	var apps []workspace.App
	if !cfg.IncludeStudio {
		apps = append(apps, workspace.StudioApp)
	}
	if !cfg.IncludeDocs {
		apps = append(apps, workspace.DocsApp)
	}
	if len(apps) > 0 {
		warns.Merge(prune.RemoveApps(ctx, ws, ops, prune.Options{Compose: cfg.IncludeDocker}, apps, nil))
	}

	return warns, nil
}

// DeleteScripts removes every root script whose name starts with prefix.
func DeleteScripts(data []byte, prefix string) ([]byte, error) {
	var doomed []string
	gjson.GetBytes(data, "scripts").ForEach(func(key, _ gjson.Result) bool {
		if strings.HasPrefix(key.String(), prefix) {
			doomed = append(doomed, key.String())
		}
		return true
	})

	var err error
	for _, key := range doomed {
		if data, err = sjson.DeleteBytes(data, "scripts."+fileops.EscapeKey(key)); err != nil {
			return nil, fmt.Errorf("failed to delete script %s: %w", key, err)
		}
	}
	return data, nil
}

// Install installs dependencies with the chosen package manager.
type Install struct {
	runner pkgmanager.Runner
}

// NewInstall creates an Install stage
func NewInstall(runner pkgmanager.Runner) *Install {
	return &Install{runner: runner}
}

func (s *Install) Name() string {
	return "Installing dependencies"
}

func (s *Install) Apply(ctx context.Context, ws *workspace.Workspace, cfg models.ProjectConfig) (*warnings.Log, error) {
	return warnings.New(), s.runner.Install(ctx, ws.Root, cfg.PackageManager)
}

// Build runs the root build script.
type Build struct {
	runner pkgmanager.Runner
}

// NewBuild creates a Build stage
func NewBuild(runner pkgmanager.Runner) *Build {
	return &Build{runner: runner}
}

func (s *Build) Name() string {
	return "Building project"
}

func (s *Build) Apply(ctx context.Context, ws *workspace.Workspace, cfg models.ProjectConfig) (*warnings.Log, error) {
	return warnings.New(), s.runner.Build(ctx, ws.Root, cfg.PackageManager)
}

// VersionControl initializes a repository and commits the generated project.
type VersionControl struct {
	git    git.GitClient
	logger *log.Logger
}

// NewVersionControl creates a VersionControl stage
func NewVersionControl(gitClient git.GitClient, logger *log.Logger) *VersionControl {
	return &VersionControl{git: gitClient, logger: output.OrDiscard(logger)}
}

func (s *VersionControl) Name() string {
	return "Initializing git repository"
}

func (s *VersionControl) Apply(ctx context.Context, ws *workspace.Workspace, cfg models.ProjectConfig) (*warnings.Log, error) {
	warns := warnings.New()
	g := s.git.WithContext(ctx)

	if err := g.Init(ws.Root, InitialBranch); err != nil {
		return warns, err
	}
	if err := g.AddAll(ws.Root); err != nil {
		return warns, err
	}
	if err := g.Commit(ws.Root, CommitMessage); err != nil {
		return warns, err
	}
	s.logger.Debug("committed project", "branch", InitialBranch)

	if cfg.RemoteURL != "" {
		if err := g.AddRemote(ws.Root, "origin", cfg.RemoteURL); err != nil {
			warns.AddError("git", "", err)
		}
	}
	return warns, nil
}
