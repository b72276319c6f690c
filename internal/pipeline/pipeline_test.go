package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jakoblorz/create-stack/internal/filesystem"
	"github.com/jakoblorz/create-stack/internal/git"
	"github.com/jakoblorz/create-stack/internal/github"
	"github.com/jakoblorz/create-stack/internal/identity"
	"github.com/jakoblorz/create-stack/internal/models"
	"github.com/jakoblorz/create-stack/internal/pkgmanager"
	"github.com/jakoblorz/create-stack/internal/source"
	"github.com/jakoblorz/create-stack/internal/validate"
	"github.com/jakoblorz/create-stack/internal/warnings"
	"github.com/jakoblorz/create-stack/internal/workspace"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

const (
	templateDir = "/templates/build-elevate"
	cwd         = "/work"
	projectDir  = "/work/acme-app"
)

var fixedNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	fs     *filesystem.MockFileSystem
	git    *git.MockGitClient
	runner *pkgmanager.MockRunner
	tools  *validate.StaticToolChecker
	orch   *Orchestrator
	seen   []StageResult
}

func newHarness(t *testing.T, customize func(*workspace.Builder)) *harness {
	t.Helper()

	b := workspace.NewBuilder(templateDir)
	if customize != nil {
		customize(b)
	}
	h := &harness{
		fs:     b.Build(),
		git:    git.NewMockGitClient(),
		runner: pkgmanager.NewMockRunner(),
		tools: validate.NewStaticToolChecker(map[string]string{
			"pnpm": "10.18.0",
			"npm":  "10.9.3",
			"bun":  "1.2.22",
			"git":  "2.47.0",
		}),
	}
	h.fs.AddDir(cwd)

	h.orch = New(Options{
		FS:        h.fs,
		Validator: validate.New(h.fs, h.tools),
		Resolver:  &source.Resolver{FS: h.fs, GitHub: github.NewMockClient(), Git: h.git},
		Runner:    h.runner,
		Git:       h.git,
		OnStage:   func(r StageResult) { h.seen = append(h.seen, r) },
		Now:       func() time.Time { return fixedNow },
	})
	return h
}

func (h *harness) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := h.fs.ReadFile(projectDir + "/" + rel)
	require.NoError(t, err, rel)
	return string(data)
}

func (h *harness) exists(rel string) bool {
	return h.fs.Exists(projectDir + "/" + rel)
}

func config() models.ProjectConfig {
	cfg := models.DefaultProjectConfig()
	cfg.Name = "acme-app"
	cfg.Template = templateDir
	return cfg
}

func TestRun_FullStack(t *testing.T) {
	h := newHarness(t, nil)

	result, err := h.orch.Run(context.Background(), config(), cwd)
	require.NoError(t, err)
	require.True(t, result.Warnings.Empty(), result.Warnings.String())
	require.Equal(t, projectDir, result.Dir)

	var states []State
	for _, s := range h.seen {
		require.NotEqual(t, StatusFailed, s.Status, s.State)
		states = append(states, s.State)
	}
	require.Equal(t, []State{
		StateValidating,
		StateAcquiring,
		StatePropagating,
		StatePruning,
		StateAdaptingPackageManager,
		StateProvisioning,
		StateCleaningInternal,
		StateRemovingOptionalExtras,
		StateInstalling,
		StateBuilding,
		StateComposingReadme,
		StateInitializingVersionControl,
		StateDone,
	}, states)
	require.Equal(t, h.seen, result.Stages)

	manifest := h.read(t, workspace.ManifestFile)
	require.Equal(t, "acme-app", gjson.Get(manifest, "name").String())
	require.Equal(t, identity.InitialVersion, gjson.Get(manifest, "version").String())
	require.Equal(t, models.VariantFull.Summary(), gjson.Get(manifest, "description").String())
	require.False(t, gjson.Get(manifest, "repository").Exists())
	require.False(t, gjson.Get(manifest, "bugs").Exists())
	require.False(t, gjson.Get(manifest, "dependencies").Exists())
	require.Equal(t, "pnpm@10.18.0", gjson.Get(manifest, "packageManager").String())

	var doc struct {
		Catalogs map[string]any `yaml:"catalogs"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(h.read(t, workspace.WorkspaceFile)), &doc))
	require.Contains(t, doc.Catalogs, "web")
	require.Contains(t, doc.Catalogs, "server")
	require.NotContains(t, doc.Catalogs, "cli")

	require.Contains(t, h.read(t, workspace.LicenseFile), "Copyright (c) 2026 Acme App\n")
	for _, rel := range workspace.InternalPaths {
		require.False(t, h.exists(rel), rel)
	}
	require.True(t, h.exists(".github/workflows/ci.yml"))

	require.True(t, h.exists("apps/api/.env.local"))
	require.True(t, h.exists("apps/web/.env.production"))
	require.True(t, h.exists("packages/db/.env"))
	require.True(t, h.exists("apps/studio"))
	require.Contains(t, h.read(t, workspace.ReadmeFile), "## Docker Deployment")

	require.Equal(t, []pkgmanager.RunnerCall{
		{Command: "install", Dir: projectDir, PackageManager: models.PackageManagerPnpm},
		{Command: "build", Dir: projectDir, PackageManager: models.PackageManagerPnpm},
	}, h.runner.Calls())

	repo, ok := h.git.Repo(projectDir)
	require.True(t, ok)
	require.Equal(t, InitialBranch, repo.Branch)
	require.Equal(t, []string{CommitMessage}, repo.Commits)
	require.Empty(t, repo.Remotes)
}

func TestRun_FrontendOnlyNonNativeManager(t *testing.T) {
	h := newHarness(t, nil)
	cfg := config()
	cfg.Variant = models.VariantFrontendOnly
	cfg.PackageManager = models.PackageManagerBun

	result, err := h.orch.Run(context.Background(), cfg, cwd)
	require.NoError(t, err)
	require.True(t, result.Warnings.Empty(), result.Warnings.String())

	require.False(t, h.exists("apps/api"))
	require.True(t, h.exists("apps/studio"))
	manifest := h.read(t, workspace.ManifestFile)
	require.Equal(t, "bun@1.2.22", gjson.Get(manifest, "packageManager").String())
	require.Equal(t, "^4.1.18", gjson.Get(manifest, `dependencies.\@tailwindcss/postcss`).String())
	require.Equal(t, models.VariantFrontendOnly.Summary(), gjson.Get(manifest, "description").String())

	var doc struct {
		Catalogs map[string]any `yaml:"catalogs"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(h.read(t, workspace.WorkspaceFile)), &doc))
	require.NotContains(t, doc.Catalogs, "server")
	require.NotContains(t, doc.Catalogs, "cli")

	for path, content := range h.fs.Snapshot() {
		if strings.HasPrefix(path, projectDir+"/") && strings.HasSuffix(path, "/package.json") {
			require.NotContains(t, content, "catalog:", path)
		}
	}
}

func TestRun_NoDocker(t *testing.T) {
	h := newHarness(t, nil)
	cfg := config()
	cfg.IncludeDocker = false

	result, err := h.orch.Run(context.Background(), cfg, cwd)
	require.NoError(t, err)
	require.True(t, result.Warnings.Empty(), result.Warnings.String())

	for _, rel := range []string{workspace.ComposeFile, workspace.DockerIgnoreFile, "apps/web/Dockerfile.prod", "apps/api/Dockerfile.prod", "apps/api/.env.production", "packages/db/.env.production"} {
		require.False(t, h.exists(rel), rel)
	}
	readme := h.read(t, workspace.ReadmeFile)
	require.NotContains(t, readme, "Docker Deployment")
	require.NotContains(t, readme, "[Docker]")
	scripts := gjson.Get(h.read(t, workspace.ManifestFile), "scripts")
	require.False(t, scripts.Get(`docker:prod`).Exists())
	require.False(t, scripts.Get(`docker:down`).Exists())
	require.True(t, scripts.Get("dev").Exists())
}

func TestRun_DestinationExists(t *testing.T) {
	h := newHarness(t, nil)
	h.fs.AddFile(projectDir+"/keep.txt", []byte("mine"))
	before := h.fs.Snapshot()

	result, err := h.orch.Run(context.Background(), config(), cwd)

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	require.Equal(t, StateValidating, fatal.State)
	require.ErrorIs(t, err, validate.ErrValidation)
	require.Equal(t, before, h.fs.Snapshot())
	require.Len(t, result.Stages, 1)
	require.Empty(t, h.runner.Calls())
}

func TestRun_MissingTool(t *testing.T) {
	h := newHarness(t, nil)
	cfg := config()
	cfg.PackageManager = models.PackageManagerNpm
	h.tools = validate.NewStaticToolChecker(map[string]string{"git": "2.47.0"})
	h.orch.opts.Validator = validate.New(h.fs, h.tools)

	_, err := h.orch.Run(context.Background(), cfg, cwd)
	require.ErrorIs(t, err, validate.ErrValidation)
	require.False(t, h.fs.Exists(projectDir))
}

func TestRun_AcquisitionFailure(t *testing.T) {
	h := newHarness(t, nil)
	cfg := config()
	cfg.Template = "not a locator"

	result, err := h.orch.Run(context.Background(), cfg, cwd)

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	require.Equal(t, StateAcquiring, fatal.State)
	require.ErrorIs(t, err, source.ErrUnsupportedLocator)
	require.Equal(t, StatusFailed, result.Status(StateAcquiring))
	require.Equal(t, Status(""), result.Status(StatePropagating))
}

func TestRun_MissingEnvExample(t *testing.T) {
	h := newHarness(t, func(b *workspace.Builder) {
		b.Without("packages/email/.env.example")
	})

	result, err := h.orch.Run(context.Background(), config(), cwd)
	require.NoError(t, err)
	require.Equal(t, 1, result.Warnings.Len(), result.Warnings.String())
	require.Contains(t, result.Warnings.String(), "packages/email")

	require.False(t, h.exists("packages/email/.env"))
	require.True(t, h.exists("apps/web/.env.local"))
	require.True(t, h.exists("apps/api/.env.local"))
	require.True(t, h.exists("packages/db/.env"))
}

func TestRun_InstallFailureSkipsBuild(t *testing.T) {
	h := newHarness(t, nil)
	h.runner.InstallError = errors.New("exit status 1")

	result, err := h.orch.Run(context.Background(), config(), cwd)
	require.NoError(t, err)
	require.Equal(t, StatusFailed, result.Status(StateInstalling))
	require.Equal(t, StatusSkipped, result.Status(StateBuilding))
	require.Equal(t, StatusCompleted, result.Status(StateComposingReadme))
	require.Equal(t, "installing: exit status 1\n", result.Warnings.String())
	require.Len(t, h.runner.Calls(), 1)
}

func TestRun_SkipInstallAndGit(t *testing.T) {
	h := newHarness(t, nil)
	cfg := config()
	cfg.SkipInstall = true
	cfg.InitGit = false
	h.tools = validate.NewStaticToolChecker(map[string]string{"pnpm": "10.18.0"})
	h.orch.opts.Validator = validate.New(h.fs, h.tools)

	result, err := h.orch.Run(context.Background(), cfg, cwd)
	require.NoError(t, err)
	require.Equal(t, StatusSkipped, result.Status(StateInstalling))
	require.Equal(t, StatusSkipped, result.Status(StateBuilding))
	require.Equal(t, StatusSkipped, result.Status(StateInitializingVersionControl))
	require.Empty(t, h.runner.Calls())
	_, ok := h.git.Repo(projectDir)
	require.False(t, ok)
	require.Equal(t, []string{"pnpm"}, h.tools.Calls())
}

func TestRun_RemoteAndOptionalApps(t *testing.T) {
	h := newHarness(t, nil)
	cfg := config()
	cfg.PackageManager = models.PackageManagerNpm
	cfg.IncludeStudio = false
	cfg.IncludeDocs = false
	cfg.RemoteURL = "git@github.com:acme/acme-app.git"

	result, err := h.orch.Run(context.Background(), cfg, cwd)
	require.NoError(t, err)
	require.True(t, result.Warnings.Empty(), result.Warnings.String())

	require.False(t, h.exists("apps/studio"))
	require.False(t, h.exists("apps/docs"))

	manifest := h.read(t, workspace.ManifestFile)
	require.Equal(t, cfg.RemoteURL, gjson.Get(manifest, "repository.url").String())
	require.False(t, gjson.Get(manifest, `scripts.db:studio`).Exists())
	require.False(t, gjson.Get(manifest, `scripts.docs:dev`).Exists())
	require.True(t, gjson.Get(manifest, `scripts.dev:web`).Exists())

	readme := h.read(t, workspace.ReadmeFile)
	require.Contains(t, readme, "## Documentation")
	require.NotContains(t, readme, "apps/docs")

	repo, ok := h.git.Repo(projectDir)
	require.True(t, ok)
	require.Equal(t, map[string]string{"origin": cfg.RemoteURL}, repo.Remotes)
}

func TestRun_VersionControlFailureIsWarning(t *testing.T) {
	h := newHarness(t, nil)
	h.git.CommitError = errors.New("gpg failed to sign the data")

	result, err := h.orch.Run(context.Background(), config(), cwd)
	require.NoError(t, err)
	require.Equal(t, StatusFailed, result.Status(StateInitializingVersionControl))
	require.Equal(t, StatusCompleted, result.Status(StateDone))
	require.Contains(t, result.Warnings.String(), "initializing-version-control: gpg failed")
}

type panicStage struct{}

func (panicStage) Name() string { return "exploding stage" }

func (panicStage) Apply(context.Context, *workspace.Workspace, models.ProjectConfig) (*warnings.Log, error) {
	panic("kaboom")
}

func TestRunStep_RecoversPanic(t *testing.T) {
	o := New(Options{})
	ws := workspace.NewBuilder(projectDir).Workspace()
	all := warnings.New()

	res := o.runStep(context.Background(), Step{State: StatePruning, Stage: panicStage{}}, ws, config(), all)
	require.Equal(t, StatusFailed, res.Status)
	require.Equal(t, 1, res.Warnings)
	require.Equal(t, "pruning: exploding stage panicked: kaboom\n", all.String())
}

func TestSetRepository(t *testing.T) {
	in := []byte(`{"name":"acme-app","version":"1.0.0"}`)

	out, err := SetRepository(in, "https://example.com/acme.git")
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"acme-app","version":"1.0.0","repository":{"type":"git","url":"https://example.com/acme.git"}}`, string(out))
}

func TestRun_StudioSurvivesFrontendOnly(t *testing.T) {
	h := newHarness(t, nil)
	cfg := config()
	cfg.Variant = models.VariantFrontendOnly

	_, err := h.orch.Run(context.Background(), cfg, cwd)
	require.NoError(t, err)
	require.True(t, h.exists("apps/studio"))
	require.True(t, gjson.Get(h.read(t, workspace.ManifestFile), `scripts.db:studio`).Exists())

	h = newHarness(t, nil)
	cfg.IncludeStudio = false
	_, err = h.orch.Run(context.Background(), cfg, cwd)
	require.NoError(t, err)
	require.False(t, h.exists("apps/studio"))
}
