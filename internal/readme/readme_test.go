package readme

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/jakoblorz/create-stack/internal/models"
	"github.com/jakoblorz/create-stack/internal/workspace"
	"github.com/stretchr/testify/require"
)

const root = "/work/acme-app"

func config(variant models.Variant, m models.PackageManager, docker bool) models.ProjectConfig {
	cfg := models.DefaultProjectConfig()
	cfg.Name = "acme-app"
	cfg.Variant = variant
	cfg.PackageManager = m
	cfg.IncludeDocker = docker
	return cfg
}

func headingsOf(text string) []string {
	var out []string
	for _, h := range parseDocument(text).headings() {
		out = append(out, strings.Repeat("#", h.level)+" "+h.text)
	}
	return out
}

const templateReadme = "# Build Elevate\n\n> Production-grade full-stack starter.\n\nA modern full-stack monorepo starter.\n\n" +
	"## Features\n\n- Auth\n\n### Built With\n\n[Turborepo](https://turbo.build/)\n\n" +
	"## Getting Started\n\nold\n\n## Structure\n\nold tree\n\n## Docker Deployment\n\nold deploy\n\n" +
	"## Contributing\n\nPRs welcome.\n"

func TestCompose_FullStack(t *testing.T) {
	data := NewData(config(models.VariantFull, models.PackageManagerPnpm, true), []string{"dev", "build", "lint"})

	out, err := Compose(templateReadme, data)
	require.NoError(t, err)

	require.Equal(t, []string{
		"# Acme App",
		"## Features",
		"### Built With",
		"## Getting Started",
		"### Prerequisites",
		"### Setup",
		"## Structure",
		"## Docker Deployment",
		"## Contributing",
		"## Available Scripts",
		"### Database Commands (run from packages/db)",
		"## Documentation",
	}, headingsOf(out))
	require.Contains(t, out, "# Acme App\n\n"+models.VariantFull.Summary()+"\n\n"+Origin+"\n\n## Features\n")
	require.NotContains(t, out, "old")
	require.NotContains(t, out, "A modern full-stack")
	require.Contains(t, out, "## Contributing\n\nPRs welcome.\n\n## Available Scripts")

	require.Contains(t, out, "### Built With\n\n[Express](https://expressjs.com/) · [Next.js 16](https://nextjs.org/) · ")
	require.Contains(t, out, "[Tanstack Query](https://tanstack.com/query/latest) · [Docker](https://www.docker.com/)\n\n## Getting Started")

	require.Contains(t, out, "```bash\ncd packages/db\npnpm db:generate\npnpm db:migrate\ncd ../..\n```")
	require.Contains(t, out, "- `pnpm dev` - Start development servers\n- `pnpm build` - Build all packages\n- `pnpm lint` - Run ESLint\n\n### Database Commands")
	require.NotContains(t, out, "pnpm format")

	require.Contains(t, out, "```plaintext\nacme-app/\n├── apps/\n│   ├── web/\n│   ├── api/\n│   ├── email/\n│   ├── studio/\n│   └── docs/\n├── packages/\n")
	require.Contains(t, out, "│   └── utils/\n└── turbo.json\n```")

	require.Contains(t, out, "```bash\npnpm docker:prod\n```")
	require.Contains(t, out, "- **Web app** → `localhost:3000`\n- **API server** → `localhost:4000`\n- **PostgreSQL** → `localhost:5432`\n")
	require.True(t, strings.HasSuffix(out, "- [Documentation Site](apps/docs/README.md) - project documentation app\n"))

	snaps.MatchSnapshot(t, out)
}

func TestCompose_NoDockerRemovesDeployment(t *testing.T) {
	existing := "# Build Elevate\n\nA modern full-stack monorepo starter.\n\n## Docker Deployment\n\nRun docker.\n\n### Images\n\nnested\n\n" +
		"## Contributing\n\nPRs welcome.\n\n## Docker Deployment\n\nagain\n"
	data := NewData(config(models.VariantBackendOnly, models.PackageManagerNpm, false), nil)

	out, err := Compose(existing, data)
	require.NoError(t, err)

	require.NotContains(t, out, "Docker Deployment")
	require.NotContains(t, out, "nested")
	require.NotContains(t, out, "again")
	require.NotContains(t, out, "[Docker]")
	require.Contains(t, out, models.VariantBackendOnly.Summary())
	require.Contains(t, out, "```bash\nnpm install\n```")
	require.Contains(t, out, "- `npm run format` - Format code with Prettier")
	require.Contains(t, out, "- `npm run db:migrate` - Run database migrations")
	require.Contains(t, out, "## Documentation\n\n- [API Documentation](apps/api/README.md) - Express server\n")
	require.NotContains(t, out, "UI Components Guide")
	require.NotContains(t, out, "apps/web")

	// sections that only get rewritten are not added
	require.NotContains(t, out, "## Structure")
	require.NotContains(t, out, "### Built With")

	snaps.MatchSnapshot(t, out)
}

func TestCompose_Idempotent(t *testing.T) {
	data := NewData(config(models.VariantFrontendOnly, models.PackageManagerBun, true), nil)

	first, err := Compose(templateReadme, data)
	require.NoError(t, err)
	second, err := Compose(first, data)
	require.NoError(t, err)
	require.Equal(t, first, second)

	for _, heading := range []string{"## Getting Started", "## Available Scripts", "## Structure", "### Built With", "## Documentation", "## Docker Deployment"} {
		require.Equal(t, 1, strings.Count(second, heading+"\n"), heading)
	}
}

func TestCompose_HeadingInsideCodeFence(t *testing.T) {
	existing := "# Build Elevate\n\n## Contributing\n\n```sh\n## Docker Deployment\n```\n"
	data := NewData(config(models.VariantFull, models.PackageManagerPnpm, false), nil)

	out, err := Compose(existing, data)
	require.NoError(t, err)
	require.Contains(t, out, "```sh\n## Docker Deployment\n```")
	require.Equal(t, 1, strings.Count(out, "## Docker Deployment"))
}

func TestCompose_EmptyReadme(t *testing.T) {
	data := NewData(config(models.VariantFull, models.PackageManagerPnpm, true), nil)

	out, err := Compose("", data)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "# Acme App\n\n"+models.VariantFull.Summary()))
	require.Equal(t, []string{
		"# Acme App",
		"## Getting Started",
		"### Prerequisites",
		"### Setup",
		"## Available Scripts",
		"### Database Commands (run from packages/db)",
		"## Documentation",
		"## Docker Deployment",
	}, headingsOf(out))
}

func TestNewData_FrontendOnly(t *testing.T) {
	cfg := config(models.VariantFrontendOnly, models.PackageManagerNpm, false)
	cfg.IncludeDocs = false

	data := NewData(cfg, []string{"build", "dev", "docker:prod"})
	require.Equal(t, []string{
		"acme-app/",
		"├── apps/",
		"│   ├── web/",
		"│   └── studio/",
		"├── packages/",
		"│   ├── auth/",
		"│   ├── db/",
		"│   ├── email/",
		"│   ├── rate-limit/",
		"│   ├── ui/",
		"│   └── utils/",
		"└── turbo.json",
	}, data.Tree)
	require.Equal(t, []Script{StandardScripts[0], StandardScripts[1]}, data.Scripts)
	require.Equal(t, []Service{{"Web app", "localhost:3000"}, {"PostgreSQL", "localhost:5432"}}, data.Services)

	var guides []string
	for _, g := range data.Guides {
		guides = append(guides, g.Path)
	}
	require.Equal(t, []string{"apps/web/README.md", "packages/ui/README.md"}, guides)
	require.Equal(t, "npm run dev", data.Run("dev"))
}

func TestNewData_ScopedNameTree(t *testing.T) {
	cfg := config(models.VariantBackendOnly, models.PackageManagerPnpm, true)
	cfg.Name = "@acme/shop-app"

	data := NewData(cfg, nil)
	require.Equal(t, "shop-app/", data.Tree[0])
	require.Equal(t, "Shop App", data.Title)
	require.NotContains(t, data.Tree, "│   ├── ui/")
}

func TestBuiltWith(t *testing.T) {
	full := builtWith(config(models.VariantFull, models.PackageManagerPnpm, true))
	require.Equal(t, "[Express](https://expressjs.com/)", full[0])
	require.Equal(t, "[Next.js 16](https://nextjs.org/)", full[1])
	require.Equal(t, "[Docker](https://www.docker.com/)", full[len(full)-1])
	require.Contains(t, full, "[React Email](https://react.email/)")

	frontend := builtWith(config(models.VariantFrontendOnly, models.PackageManagerPnpm, false))
	require.Equal(t, "[Next.js 16](https://nextjs.org/)", frontend[0])
	require.NotContains(t, frontend, "[Prisma](https://www.prisma.io/)")
	require.NotContains(t, frontend, "[Resend](https://resend.com/)")
	require.Equal(t, "[Better Auth](https://www.better-auth.com/)", frontend[len(frontend)-1])

	backend := builtWith(config(models.VariantBackendOnly, models.PackageManagerPnpm, false))
	require.Equal(t, "[Express](https://expressjs.com/)", backend[0])
	require.Equal(t, "[Turborepo](https://turbo.build/)", backend[1])
	require.Contains(t, backend, "[PostgreSQL](https://www.postgresql.org/)")
}

func TestPlannedApps(t *testing.T) {
	names := func(apps []workspace.App) []string {
		var out []string
		for _, app := range apps {
			out = append(out, app.Name)
		}
		return out
	}

	full := config(models.VariantFull, models.PackageManagerPnpm, true)
	require.Equal(t, []string{"web", "api", "email", "studio", "docs"}, names(PlannedApps(full)))

	frontend := config(models.VariantFrontendOnly, models.PackageManagerPnpm, true)
	require.Equal(t, []string{"web", "studio", "docs"}, names(PlannedApps(frontend)))

	backend := config(models.VariantBackendOnly, models.PackageManagerPnpm, true)
	backend.IncludeStudio = false
	require.Equal(t, []string{"api", "docs"}, names(PlannedApps(backend)))
}

func TestComposer_Apply(t *testing.T) {
	ws := workspace.NewBuilder(root).Workspace()

	warns, err := New(nil).Apply(context.Background(), ws, config(models.VariantFull, models.PackageManagerPnpm, true))
	require.NoError(t, err)
	require.True(t, warns.Empty(), warns.String())

	data, err := ws.FS().ReadFile(ws.Path(workspace.ReadmeFile))
	require.NoError(t, err)
	out := string(data)

	require.Contains(t, out, "- `pnpm format` - Format code with Prettier")
	require.Contains(t, out, "## Structure\n\n```plaintext\nacme-app/\n")
	require.Contains(t, out, "### Built With\n\n[Express](https://expressjs.com/)")
	require.Contains(t, out, "## Contributing\n\nSee the [contributing guide](.github/CONTRIBUTING.md).\n")
	require.Equal(t, 1, strings.Count(out, "## Docker Deployment"))
	require.Equal(t, 1, strings.Count(out, "## Documentation"))
	require.NotContains(t, out, "npx build-elevate")
}

func TestComposer_MissingReadme(t *testing.T) {
	ws := workspace.NewBuilder(root).Without(workspace.ReadmeFile).Workspace()

	warns, err := New(nil).Apply(context.Background(), ws, config(models.VariantFull, models.PackageManagerPnpm, false))
	require.NoError(t, err)
	require.True(t, warns.Empty(), warns.String())
	require.True(t, ws.Exists(workspace.ReadmeFile))
}

func TestComposer_UnreadableReadme(t *testing.T) {
	b := workspace.NewBuilder(root)
	b.FileSystem().FailRead(root+"/"+workspace.ReadmeFile, errors.New("permission denied"))

	warns, err := New(nil).Apply(context.Background(), b.Workspace(), config(models.VariantFull, models.PackageManagerPnpm, true))
	require.NoError(t, err)
	require.Equal(t, 1, warns.Len())
}
