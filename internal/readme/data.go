package readme

import (
	"github.com/jakoblorz/create-stack/internal/models"
	"github.com/jakoblorz/create-stack/internal/naming"
	"github.com/jakoblorz/create-stack/internal/workspace"
)

// Script is one entry of the scripts list.
type Script struct {
	Name        string
	Description string
}

// StandardScripts are the root scripts the README documents, in order.
var StandardScripts = []Script{
	{Name: "dev", Description: "Start development servers"},
	{Name: "build", Description: "Build all packages"},
	{Name: "lint", Description: "Run ESLint"},
	{Name: "format", Description: "Format code with Prettier"},
	{Name: "test", Description: "Run tests"},
}

// DatabaseScripts run from packages/db.
var DatabaseScripts = []Script{
	{Name: "db:generate", Description: "Generate Prisma client"},
	{Name: "db:migrate", Description: "Run database migrations"},
}

// Guide is a link in the Documentation section.
type Guide struct {
	Title string
	Path  string
	Note  string
}

// Service is a container started by the production compose file.
type Service struct {
	Name    string
	Address string
}

// Data is the template input for every README section.
type Data struct {
	Title   string
	Summary string
	Manager models.PackageManager

	Docker bool

	Scripts   []Script
	Database  []Script
	Tree      []string
	BuiltWith []string
	Guides    []Guide
	Services  []Service
}

// NewData derives the README input from cfg. scripts are the root script
// names; standard scripts missing from a non-nil list are left out.
func NewData(cfg models.ProjectConfig, scripts []string) Data {
	apps := PlannedApps(cfg)
	packages := PlannedPackages(cfg)

	d := Data{
		Title:    Title(cfg.Name),
		Summary:  cfg.Variant.Summary(),
		Manager:  cfg.PackageManager,
		Docker:   cfg.IncludeDocker,
		Database: DatabaseScripts,
		Tree:     tree(naming.Of(cfg.Name).Kebab, apps, packages),
	}

	defined := make(map[string]bool, len(scripts))
	for _, name := range scripts {
		defined[name] = true
	}
	for _, s := range StandardScripts {
		if scripts == nil || defined[s.Name] {
			d.Scripts = append(d.Scripts, s)
		}
	}

	d.BuiltWith = builtWith(cfg)
	d.Guides = guides(apps, packages)
	if cfg.Variant.HasFrontend() {
		d.Services = append(d.Services, Service{Name: "Web app", Address: "localhost:3000"})
	}
	if cfg.Variant.HasBackend() {
		d.Services = append(d.Services, Service{Name: "API server", Address: "localhost:4000"})
	}
	d.Services = append(d.Services, Service{Name: "PostgreSQL", Address: "localhost:5432"})
	return d
}

// Run returns the invocation of a script with the chosen manager.
func (d Data) Run(script string) string {
	return d.Manager.RunCommand(script)
}

// PlannedApps returns the apps a project generated from cfg contains.
func PlannedApps(cfg models.ProjectConfig) []workspace.App {
	removed := make(map[string]bool)
	for _, app := range workspace.RemovalFor(cfg.Variant).Apps {
		removed[app.Name] = true
	}
	if !cfg.IncludeStudio {
		removed[workspace.StudioApp.Name] = true
	}
	if !cfg.IncludeDocs {
		removed[workspace.DocsApp.Name] = true
	}

	var apps []workspace.App
	for _, app := range workspace.Apps {
		if !removed[app.Name] {
			apps = append(apps, app)
		}
	}
	return apps
}

// PlannedPackages returns the shared packages kept for cfg.
func PlannedPackages(cfg models.ProjectConfig) []workspace.Package {
	removed := make(map[string]bool)
	for _, pkg := range workspace.RemovalFor(cfg.Variant).Packages {
		removed[pkg.Name] = true
	}
	var packages []workspace.Package
	for _, pkg := range workspace.Packages {
		if !removed[pkg.Name] {
			packages = append(packages, pkg)
		}
	}
	return packages
}

func tree(root string, apps []workspace.App, packages []workspace.Package) []string {
	lines := []string{root + "/", "├── apps/"}
	for i, app := range apps {
		lines = append(lines, branch("│   ", app.Name+"/", i == len(apps)-1))
	}
	lines = append(lines, "├── packages/")
	for i, pkg := range packages {
		lines = append(lines, branch("│   ", pkg.Name+"/", i == len(packages)-1))
	}
	return append(lines, "└── "+workspace.TaskRunnerFile)
}

func branch(indent, name string, last bool) string {
	if last {
		return indent + "└── " + name
	}
	return indent + "├── " + name
}

func link(name, url string) string {
	return "[" + name + "](" + url + ")"
}

func builtWith(cfg models.ProjectConfig) []string {
	var list []string
	if cfg.Variant.HasBackend() {
		list = append(list, link("Express", "https://expressjs.com/"))
	}
	if cfg.Variant.HasFrontend() {
		list = append(list,
			link("Next.js 16", "https://nextjs.org/"),
			link("shadcn/ui", "https://ui.shadcn.com/"),
			link("Tailwind CSS", "https://tailwindcss.com/"),
		)
	}
	list = append(list,
		link("Turborepo", "https://turbo.build/"),
		link("TypeScript", "https://www.typescriptlang.org/"),
		link("pnpm", "https://pnpm.io/"),
		link("ESLint", "https://eslint.org/"),
		link("Prettier", "https://prettier.io/"),
		link("Jest", "https://jestjs.io/"),
		link("GitHub Actions", "https://github.com/features/actions"),
	)
	if cfg.Variant.HasBackend() {
		list = append(list,
			link("Prisma", "https://www.prisma.io/"),
			link("PostgreSQL", "https://www.postgresql.org/"),
		)
	}
	list = append(list, link("Better Auth", "https://www.better-auth.com/"))
	if cfg.Variant == models.VariantFull {
		list = append(list,
			link("React Email", "https://react.email/"),
			link("Resend", "https://resend.com/"),
			link("Tanstack Query", "https://tanstack.com/query/latest"),
		)
	}
	if cfg.IncludeDocker {
		list = append(list, link("Docker", "https://www.docker.com/"))
	}
	return list
}

func guides(apps []workspace.App, packages []workspace.Package) []Guide {
	has := make(map[string]bool, len(apps)+len(packages))
	for _, app := range apps {
		has[app.Dir] = true
	}
	for _, pkg := range packages {
		has[pkg.Dir] = true
	}

	var out []Guide
	if has[workspace.WebApp.Dir] {
		out = append(out, Guide{Title: "Web App Documentation", Path: "apps/web/README.md", Note: "Next.js application"})
	}
	if has[workspace.APIApp.Dir] {
		out = append(out, Guide{Title: "API Documentation", Path: "apps/api/README.md", Note: "Express server"})
	}
	if has[workspace.UIPackage.Dir] {
		out = append(out, Guide{Title: "UI Components Guide", Path: "packages/ui/README.md", Note: "shadcn/ui components"})
	}
	if has[workspace.DocsApp.Dir] {
		out = append(out, Guide{Title: "Documentation Site", Path: "apps/docs/README.md", Note: "project documentation app"})
	}
	return out
}
