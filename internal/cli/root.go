package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jakoblorz/create-stack/internal/filesystem"
	"github.com/jakoblorz/create-stack/internal/git"
	"github.com/jakoblorz/create-stack/internal/github"
	"github.com/jakoblorz/create-stack/internal/output"
	"github.com/jakoblorz/create-stack/internal/pkgmanager"
	"github.com/jakoblorz/create-stack/internal/tui"
	"github.com/jakoblorz/create-stack/internal/validate"
	"github.com/spf13/cobra"
)

// Dependencies are the collaborators the commands run against.
type Dependencies struct {
	FS     filesystem.FileSystem
	Git    git.GitClient
	GitHub github.GitHubClient
	Runner pkgmanager.Runner
	Tools  validate.ToolChecker

	// Prompter asks for unset fields; nil disables prompting.
	Prompter tui.Prompter
	// Interactive reports whether prompts may be shown; nil means yes.
	Interactive func() bool
	// Progress wraps long-running steps.
	Progress func(ctx context.Context, title string, action func(context.Context) error) error
	Now      func() time.Time
}

// DefaultDependencies wires the real filesystem, git, GitHub and package
// manager implementations.
func DefaultDependencies() Dependencies {
	return Dependencies{
		FS:          filesystem.NewOSFileSystem(),
		Git:         git.NewOSGitClient(),
		GitHub:      github.NewClientFromEnvOrAnonymous(),
		Runner:      pkgmanager.NewExecRunner(),
		Tools:       validate.NewExecToolChecker(),
		Prompter:    tui.NewHuhPrompter(),
		Interactive: output.IsTTY,
		Progress:    output.RunWithSpinner,
		Now:         time.Now,
	}
}

// NewRootCommand creates the root command. The root command creates a
// project itself; "create" is the same command as a subcommand.
func NewRootCommand(deps Dependencies) *cobra.Command {
	rootCmd := NewCreateCommand(deps, "create-stack [name]")
	rootCmd.AddCommand(NewCreateCommand(deps, "create [name]"))
	return rootCmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand(DefaultDependencies())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if _, printed := err.(*ExitError); !printed {
			_, _ = fmt.Fprintln(os.Stderr, tui.RenderError(err, hintOf(err)))
		}
		return exitCode(err)
	}
	return ExitOK
}
