package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jakoblorz/create-stack/internal/models"
	"github.com/jakoblorz/create-stack/internal/output"
	"github.com/jakoblorz/create-stack/internal/pipeline"
	"github.com/jakoblorz/create-stack/internal/source"
	"github.com/jakoblorz/create-stack/internal/tui"
	"github.com/jakoblorz/create-stack/internal/validate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the command reads.
const EnvPrefix = "CREATE_STACK"

// Flag names, also the viper keys they are bound to.
const (
	flagName           = "name"
	flagVariant        = "variant"
	flagPackageManager = "package-manager"
	flagNoGit          = "no-git"
	flagRemote         = "remote"
	flagNoDocker       = "no-docker"
	flagNoStudio       = "no-studio"
	flagNoDocs         = "no-docs"
	flagSkipInstall    = "skip-install"
	flagYes            = "yes"
	flagVerbose        = "verbose"
	flagTemplate       = "template"
)

// CreateCommand handles project creation
type CreateCommand struct {
	deps Dependencies
	v    *viper.Viper
}

// NewCreateCommand creates the create command with the given usage line.
func NewCreateCommand(deps Dependencies, use string) *cobra.Command {
	c := &CreateCommand{deps: deps, v: newViper()}

	cobraCmd := &cobra.Command{
		Use:   use,
		Short: "Create a new TypeScript monorepo from the stack template",
		Long: `Create a new TypeScript monorepo from the stack template.

The template is fetched, renamed to the project name, trimmed to the chosen
variant and adapted to the chosen package manager. Flags that are not given
are asked for interactively unless --yes is set or stdout is not a terminal.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return usageError(cmd, err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          c.Run,
	}

	flags := cobraCmd.Flags()
	flags.String(flagName, "", "Project name (alternative to the positional argument)")
	flags.String(flagVariant, "", "Stack variant: full, frontend-only or backend-only")
	flags.StringP(flagPackageManager, "p", "", "Package manager: pnpm, npm or bun")
	flags.Bool(flagNoGit, false, "Do not initialize a git repository")
	flags.String(flagRemote, "", "Remote URL added as origin")
	flags.Bool(flagNoDocker, false, "Remove the Docker setup")
	flags.Bool(flagNoStudio, false, "Remove the database studio app")
	flags.Bool(flagNoDocs, false, "Remove the docs app")
	flags.Bool(flagSkipInstall, false, "Do not install dependencies")
	flags.BoolP(flagYes, "y", false, "Accept defaults for everything not set by flags")
	flags.BoolP(flagVerbose, "v", false, "Enable debug logging")
	flags.String(flagTemplate, "", "Template locator: a directory, github:owner/repo[#ref] or a git URL")

	_ = c.v.BindPFlags(flags)

	cobraCmd.SetFlagErrorFunc(usageError)

	return cobraCmd
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv(flagTemplate, EnvPrefix+"_TEMPLATE")
	_ = v.BindEnv(flagPackageManager, EnvPrefix+"_PACKAGE_MANAGER")
	_ = v.BindEnv(flagVariant, EnvPrefix+"_VARIANT")
	return v
}

// Run executes the create command
func (c *CreateCommand) Run(cmd *cobra.Command, args []string) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	logger := output.NewLogger(stderr, c.v.GetBool(flagVerbose))

	cfg, explicit, err := c.config(args)
	if err != nil {
		return c.fail(stderr, err)
	}

	var managers []models.PackageManager
	if !explicit.PackageManager && c.deps.Tools != nil {
		managers = validate.InstalledManagers(cmd.Context(), c.deps.Tools)
		if len(managers) == 0 {
			return c.fail(stderr, validate.NoManagerError())
		}
		logger.Debug("detected package managers", "installed", managers)
		cfg.PackageManager = managers[0]
	}

	interactive := c.interactive()
	if interactive {
		cfg, err = tui.NewFlow(c.deps.Prompter).WithManagers(managers).Run(cfg, explicit)
		if errors.Is(err, tui.ErrCancelled) {
			_, _ = fmt.Fprintln(stderr, tui.SubtleStyle.Render("Cancelled."))
			return &ExitError{Code: ExitFailure, Err: err}
		}
		if err != nil {
			return c.fail(stderr, fmt.Errorf("failed to run prompts: %w", err))
		}
	}
	if cfg.Name == "" && !interactive {
		cfg.Name = models.DefaultName
	}

	cwd, err := c.deps.FS.Getwd()
	if err != nil {
		return c.fail(stderr, fmt.Errorf("failed to get working directory: %w", err))
	}

	orch := pipeline.New(pipeline.Options{
		FS:        c.deps.FS,
		Validator: validate.New(c.deps.FS, c.deps.Tools),
		Resolver: &source.Resolver{
			FS:     c.deps.FS,
			GitHub: c.deps.GitHub,
			Git:    c.deps.Git,
			Logger: logger,
		},
		Runner:   c.deps.Runner,
		Git:      c.deps.Git,
		Logger:   logger,
		Progress: c.deps.Progress,
		OnStage:  stagePrinter(stdout),
		Now:      c.deps.Now,
	})

	result, err := orch.Run(cmd.Context(), cfg, cwd)
	if err != nil {
		return c.fail(stderr, err)
	}

	_, _ = fmt.Fprintln(stdout)
	if rendered := tui.RenderWarnings(result.Warnings); rendered != "" {
		_, _ = fmt.Fprintln(stdout, rendered)
	}
	installed := result.Status(pipeline.StateInstalling) == pipeline.StatusCompleted
	_, _ = fmt.Fprint(stdout, tui.RenderSummary(cfg, tui.NextSteps(cfg.WithDefaults(), cwd, result.Dir, installed)))
	return nil
}

// config builds the configuration from arguments, flags and environment and
// reports which fields were set explicitly.
func (c *CreateCommand) config(args []string) (models.ProjectConfig, tui.Explicit, error) {
	cfg := models.DefaultProjectConfig()
	var explicit tui.Explicit

	name := strings.TrimSpace(c.v.GetString(flagName))
	if len(args) == 1 {
		arg := strings.TrimSpace(args[0])
		if name != "" && name != arg {
			return cfg, explicit, &validate.Error{
				Check:   "name",
				Message: fmt.Sprintf("conflicting project names %q and %q", arg, name),
				Hint:    "Pass the name either as argument or with --name.",
			}
		}
		name = arg
	}
	cfg.Name = name

	if value := c.v.GetString(flagVariant); value != "" {
		variant, err := models.ParseVariant(value)
		if err != nil {
			return cfg, explicit, &validate.Error{Check: flagVariant, Message: "invalid variant", Hint: "Use full, frontend-only or backend-only.", Err: err}
		}
		cfg.Variant = variant
		explicit.Variant = true
	}
	if value := c.v.GetString(flagPackageManager); value != "" {
		m, err := models.ParsePackageManager(value)
		if err != nil {
			return cfg, explicit, &validate.Error{Check: flagPackageManager, Message: "invalid package manager", Hint: "Use pnpm, npm or bun.", Err: err}
		}
		cfg.PackageManager = m
		explicit.PackageManager = true
	}
	if value := strings.TrimSpace(c.v.GetString(flagTemplate)); value != "" {
		cfg.Template = value
	}

	if c.v.IsSet(flagNoDocker) {
		cfg.IncludeDocker = !c.v.GetBool(flagNoDocker)
		explicit.Docker = true
	}
	if c.v.IsSet(flagNoStudio) {
		cfg.IncludeStudio = !c.v.GetBool(flagNoStudio)
		explicit.Studio = true
	}
	if c.v.IsSet(flagNoDocs) {
		cfg.IncludeDocs = !c.v.GetBool(flagNoDocs)
		explicit.Docs = true
	}
	if c.v.IsSet(flagNoGit) {
		cfg.InitGit = !c.v.GetBool(flagNoGit)
		explicit.Git = true
	}

	cfg.RemoteURL = strings.TrimSpace(c.v.GetString(flagRemote))
	cfg.SkipInstall = c.v.GetBool(flagSkipInstall)
	cfg.Verbose = c.v.GetBool(flagVerbose)

	return cfg, explicit, nil
}

func (c *CreateCommand) interactive() bool {
	if c.v.GetBool(flagYes) || c.deps.Prompter == nil {
		return false
	}
	return c.deps.Interactive == nil || c.deps.Interactive()
}

// fail prints err to w and wraps it with its exit code.
func (c *CreateCommand) fail(w io.Writer, err error) error {
	_, _ = fmt.Fprintln(w, tui.RenderError(err, hintOf(err)))
	return &ExitError{Code: exitCode(err), Err: err}
}

// usageError prints a command line error with the usage hint and exits
// with the validation code.
func usageError(cmd *cobra.Command, err error) error {
	hint := fmt.Sprintf("Run '%s --help' for usage.", cmd.CommandPath())
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), tui.RenderError(err, hint))
	return &ExitError{Code: ExitValidation, Err: err}
}

func stagePrinter(w io.Writer) func(pipeline.StageResult) {
	return func(r pipeline.StageResult) {
		switch r.Status {
		case pipeline.StatusCompleted:
			if r.State == pipeline.StateDone {
				return
			}
			line := "✓ " + r.Name
			if r.Warnings > 0 {
				line += warningSuffix(r.Warnings)
			}
			_, _ = fmt.Fprintln(w, tui.SuccessStyle.Render(line))
		case pipeline.StatusFailed:
			_, _ = fmt.Fprintln(w, tui.ErrorStyle.Render("✗ "+r.Name))
		case pipeline.StatusSkipped:
			_, _ = fmt.Fprintln(w, tui.SubtleStyle.Render("- "+r.Name+" (skipped)"))
		}
	}
}

func warningSuffix(n int) string {
	if n == 1 {
		return " (1 warning)"
	}
	return fmt.Sprintf(" (%d warnings)", n)
}
