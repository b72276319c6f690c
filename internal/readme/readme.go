// Package readme rewrites the template README for the generated project.
package readme

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/charmbracelet/log"
	"github.com/jakoblorz/create-stack/internal/fileops"
	"github.com/jakoblorz/create-stack/internal/models"
	"github.com/jakoblorz/create-stack/internal/naming"
	"github.com/jakoblorz/create-stack/internal/output"
	"github.com/jakoblorz/create-stack/internal/warnings"
	"github.com/jakoblorz/create-stack/internal/workspace"
	"github.com/tidwall/gjson"
)

const scope = "readme"

// Section headings managed by the composer.
const (
	SectionGettingStarted   = "Getting Started"
	SectionAvailableScripts = "Available Scripts"
	SectionStructure        = "Structure"
	SectionBuiltWith        = "Built With"
	SectionDocumentation    = "Documentation"
	SectionDockerDeployment = "Docker Deployment"
)

// Origin is the attribution line under the project description.
const Origin = "Built with [build-elevate](https://github.com/vijaysingh2219/build-elevate) - A production-grade full-stack starter."

const fence = "```"

type section struct {
	level   int
	heading string
	tmpl    *template.Template
	// onlyIfPresent sections are rewritten but never added.
	onlyIfPresent bool
	// include reports whether the section belongs in the README; excluded
	// sections are spliced out. nil means always.
	include func(Data) bool
}

func parse(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(sprig.TxtFuncMap()).Parse(text))
}

var descriptionTemplate = parse("description", "{{ .Summary }}\n\n"+Origin)

var sections = []section{
	{
		level:   2,
		heading: SectionGettingStarted,
		tmpl: parse("getting-started", `### Prerequisites

- Node.js 20+
- {{ .Manager }}
- PostgreSQL database

### Setup

1. Install dependencies:

`+fence+`bash
{{ .Manager.InstallCommand }}
`+fence+`

2. Configure environment variables:
   - Copy `+"`.env.example`"+` files to `+"`.env.local`"+` or `+"`.env`"+` in respective packages
   - Update database connection strings and API keys

3. Generate Prisma client and run migrations:

`+fence+`bash
cd packages/db
{{ .Run "db:generate" }}
{{ .Run "db:migrate" }}
cd ../..
`+fence+`

4. Start development server:

`+fence+`bash
{{ .Run "dev" }}
`+fence),
	},
	{
		level:   2,
		heading: SectionAvailableScripts,
		tmpl: parse("scripts", `{{- range .Scripts }}
- `+"`{{ $.Run .Name }}`"+` - {{ .Description }}
{{- end }}

### Database Commands (run from packages/db)
{{ range .Database }}
- `+"`{{ $.Run .Name }}`"+` - {{ .Description }}
{{- end }}`),
	},
	{
		level:         2,
		heading:       SectionStructure,
		onlyIfPresent: true,
		tmpl:          parse("tree", fence+"plaintext\n{{ .Tree | join \"\\n\" }}\n"+fence),
	},
	{
		level:         3,
		heading:       SectionBuiltWith,
		onlyIfPresent: true,
		tmpl:          parse("built-with", `{{ .BuiltWith | join " · " }}`),
	},
	{
		level:   2,
		heading: SectionDocumentation,
		tmpl: parse("documentation", `{{- range .Guides }}
- [{{ .Title }}]({{ .Path }}) - {{ .Note }}
{{- end }}`),
	},
	{
		level:   2,
		heading: SectionDockerDeployment,
		include: func(d Data) bool { return d.Docker },
		tmpl: parse("docker", `Production-ready Docker setup with docker-compose:

`+fence+`bash
{{ .Run "docker:prod" }}
`+fence+`

This spins up:
{{ range .Services }}
- **{{ .Name }}** → `+"`{{ .Address }}`"+`
{{- end }}

Features:

- Multi-stage builds for minimal image size
- Non-root user execution for security
- Turbo pruning for optimized workspace dependencies`),
	},
}

// Composer rewrites README.md.
type Composer struct {
	logger *log.Logger
}

// New creates a Composer
func New(logger *log.Logger) *Composer {
	return &Composer{logger: output.OrDiscard(logger)}
}

func (c *Composer) Name() string {
	return "Composing README"
}

// Apply rewrites the README sections for cfg. A missing README is created.
func (c *Composer) Apply(ctx context.Context, ws *workspace.Workspace, cfg models.ProjectConfig) (*warnings.Log, error) {
	warns := warnings.New()
	ops := fileops.New(ws.FS(), c.logger)
	path := ws.Path(workspace.ReadmeFile)

	data := NewData(cfg, readScripts(ws, c.logger))

	existing, err := ws.FS().ReadFile(path)
	if err != nil && !fileops.IsNotExist(err) {
		warns.AddError(scope, workspace.ReadmeFile, err)
		return warns, nil
	}

	out, err := Compose(string(existing), data)
	if err != nil {
		return warns, err
	}
	if out == string(existing) {
		return warns, nil
	}
	if err := ops.WriteText(path, out); err != nil {
		warns.AddError(scope, workspace.ReadmeFile, err)
	}
	return warns, nil
}

// Compose returns existing with every managed section rendered for data.
func Compose(existing string, data Data) (string, error) {
	doc := parseDocument(existing)
	doc.setTitle(data.Title)

	description, err := render(descriptionTemplate, data)
	if err != nil {
		return "", err
	}
	doc.setDescription(description)

	for _, s := range sections {
		if s.include != nil && !s.include(data) {
			for doc.remove(s.level, s.heading) {
			}
			continue
		}
		if s.onlyIfPresent && !doc.has(s.level, s.heading) {
			continue
		}
		body, err := render(s.tmpl, data)
		if err != nil {
			return "", err
		}
		doc.upsert(s.level, s.heading, body)
	}
	return doc.String(), nil
}

func render(tmpl *template.Template, data Data) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// readScripts returns the root script names in manifest order, or nil when
// the manifest cannot be read.
func readScripts(ws *workspace.Workspace, logger *log.Logger) []string {
	manifest, err := ws.FS().ReadFile(ws.Path(workspace.ManifestFile))
	if err != nil || !gjson.ValidBytes(manifest) {
		logger.Debug("listing every standard script in README", "reason", err)
		return nil
	}
	var names []string
	gjson.GetBytes(manifest, "scripts").ForEach(func(key, _ gjson.Result) bool {
		names = append(names, key.String())
		return true
	})
	return names
}

// Title returns the display title of a project name.
func Title(name string) string {
	return naming.Of(name).Title
}
