// Package envfile materializes each app's and package's .env.example into the
// environment files it reads, filling in generated secrets.
package envfile

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jakoblorz/create-stack/internal/fileops"
	"github.com/jakoblorz/create-stack/internal/models"
	"github.com/jakoblorz/create-stack/internal/output"
	"github.com/jakoblorz/create-stack/internal/warnings"
	"github.com/jakoblorz/create-stack/internal/workspace"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"
)

const scope = "env"

// SecretLength is the number of characters in a generated secret.
const SecretLength = 48

// SecretSpec names a key whose value is generated for every copy. Only the
// first assignment of Key in a file is rewritten.
type SecretSpec struct {
	Key      string
	Generate func() (string, error)
	// Quoted wraps the generated value in double quotes.
	Quoted bool
}

// DefaultSecrets are the keys rewritten when no others are configured.
var DefaultSecrets = []SecretSpec{
	{Key: "BETTER_AUTH_SECRET", Generate: NewSecret, Quoted: true},
}

// NewSecret returns a random URL-safe secret of SecretLength characters.
func NewSecret() (string, error) {
	return gonanoid.New(SecretLength)
}

// Provisioner copies env examples to their targets.
type Provisioner struct {
	logger  *log.Logger
	secrets []SecretSpec
}

// New creates a Provisioner using DefaultSecrets
func New(logger *log.Logger) *Provisioner {
	return &Provisioner{logger: output.OrDiscard(logger), secrets: DefaultSecrets}
}

// WithSecrets returns a copy of p that rewrites secrets instead.
func (p *Provisioner) WithSecrets(secrets []SecretSpec) *Provisioner {
	return &Provisioner{logger: p.logger, secrets: secrets}
}

func (p *Provisioner) Name() string {
	return "Provisioning environment files"
}

type copyJob struct {
	dir     string
	target  string
	example string
}

// Apply writes every env target of the present apps and packages. Production
// targets are only written when Docker is included.
func (p *Provisioner) Apply(ctx context.Context, ws *workspace.Workspace, cfg models.ProjectConfig) (*warnings.Log, error) {
	warns := warnings.New()
	ops := fileops.New(ws.FS(), p.logger)

	var development, production []copyJob
	for _, site := range ws.EnvSites() {
		rel := path.Join(site.Dir, workspace.EnvExampleFile)
		data, err := ws.FS().ReadFile(ws.Path(rel))
		if err != nil {
			if fileops.IsNotExist(err) {
				err = fmt.Errorf("example environment file for %s is missing", site.Dir)
			}
			warns.AddError(scope, rel, err)
			continue
		}
		for _, target := range site.Targets {
			development = append(development, copyJob{dir: site.Dir, target: target, example: string(data)})
		}
		for _, target := range site.Production {
			production = append(production, copyJob{dir: site.Dir, target: target, example: string(data)})
		}
	}

	if err := p.write(ctx, ops, ws, warns, development); err != nil {
		return warns, err
	}
	if cfg.IncludeDocker {
		if err := p.write(ctx, ops, ws, warns, production); err != nil {
			return warns, err
		}
	}
	return warns, nil
}

func (p *Provisioner) write(ctx context.Context, ops *fileops.Ops, ws *workspace.Workspace, warns *warnings.Log, jobs []copyJob) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rel := path.Join(job.dir, job.target)
			content, err := p.fillSecrets(job.example)
			if err != nil {
				warns.AddError(scope, rel, err)
				content = job.example
			}
			if err := ops.WriteText(ws.Path(rel), content); err != nil {
				warns.AddError(scope, rel, err)
				return nil
			}
			p.logger.Debug("wrote env file", "path", rel)
			return nil
		})
	}
	return g.Wait()
}

// fillSecrets replaces the value of the first assignment of each configured
// secret key. Other lines, later duplicates included, are kept byte for byte.
func (p *Provisioner) fillSecrets(content string) (string, error) {
	lines := strings.SplitAfter(content, "\n")
	for _, secret := range p.secrets {
		for i, line := range lines {
			body := strings.TrimRight(line, "\r\n")
			if !isAssignment(body, secret.Key) {
				continue
			}
			value, err := secret.Generate()
			if err != nil {
				return "", fmt.Errorf("failed to generate %s: %w", secret.Key, err)
			}
			if secret.Quoted {
				value = `"` + value + `"`
			}
			prefix := body[:strings.IndexByte(body, '=')+1]
			lines[i] = prefix + value + line[len(body):]
			break
		}
	}
	return strings.Join(lines, ""), nil
}

// isAssignment reports whether line assigns key, optionally with "export ".
func isAssignment(line, key string) bool {
	line = strings.TrimPrefix(strings.TrimLeft(line, " \t"), "export ")
	name, _, ok := strings.Cut(line, "=")
	return ok && strings.TrimSpace(name) == key
}
