package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jakoblorz/create-stack/internal/models"
	"github.com/jakoblorz/create-stack/internal/warnings"
)

// EnvStep reminds the user to fill in the generated environment files.
const EnvStep = "Update .env files with your database and API keys"

// NextSteps lists what to do after a project was created in dir. installed
// reports whether dependencies were installed.
func NextSteps(cfg models.ProjectConfig, cwd, dir string, installed bool) []string {
	rel, err := filepath.Rel(cwd, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = dir
	}

	steps := []string{"cd " + rel}
	if !installed {
		steps = append(steps, cfg.PackageManager.InstallCommand())
	}
	steps = append(steps, EnvStep, cfg.PackageManager.RunCommand("dev"))
	return steps
}

// RenderWarnings renders every warning as a bullet list, or "" when there
// are none.
func RenderWarnings(log *warnings.Log) string {
	entries := log.Entries()
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(WarningStyle.Render(fmt.Sprintf("Completed with %d warning(s):", len(entries))))
	b.WriteString("\n")
	for _, w := range entries {
		b.WriteString("  - ")
		b.WriteString(w.String())
		b.WriteString("\n")
	}
	return b.String()
}

// RenderSummary renders the success message with next steps.
func RenderSummary(cfg models.ProjectConfig, steps []string) string {
	var b strings.Builder
	b.WriteString(SuccessStyle.Render(fmt.Sprintf("Created %s", cfg.Name)))
	b.WriteString("\n\n")
	b.WriteString("Next steps:\n")
	for _, step := range steps {
		b.WriteString("  ")
		b.WriteString(CommandStyle.Render(step))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderError renders a fatal error with an optional hint.
func RenderError(err error, hint string) string {
	out := ErrorStyle.Render("Error: ") + err.Error()
	if hint != "" {
		out += "\n" + SubtleStyle.Render(hint)
	}
	return out
}
