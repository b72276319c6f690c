package tui

import (
	"strings"

	"github.com/jakoblorz/create-stack/internal/models"
	"github.com/jakoblorz/create-stack/internal/validate"
)

// Prompt titles, also the keys StaticPrompter answers by.
const (
	PromptName           = "Project name"
	PromptVariant        = "Which parts of the stack do you need?"
	PromptPackageManager = "Package manager"
	PromptDocker         = "Include Docker setup?"
	PromptStudio         = "Include the database studio app?"
	PromptDocs           = "Include the docs app?"
	PromptGit            = "Initialize a git repository?"
)

// Explicit marks the fields that were set by flags or the environment and
// must not be asked for.
type Explicit struct {
	Variant        bool
	PackageManager bool
	Docker         bool
	Studio         bool
	Docs           bool
	Git            bool
}

// Flow fills a ProjectConfig interactively.
type Flow struct {
	prompter Prompter
	managers []models.PackageManager
}

// NewFlow creates a Flow asking through p
func NewFlow(p Prompter) *Flow {
	return &Flow{prompter: p}
}

// WithManagers limits the package manager choice to ms. The first entry is
// preselected unless the configured manager is among them.
func (f *Flow) WithManagers(ms []models.PackageManager) *Flow {
	f.managers = ms
	return f
}

// Run asks for the name when it is empty and for every other field not marked
// in explicit, and returns the completed configuration. ErrCancelled is returned when the user aborts.
func (f *Flow) Run(cfg models.ProjectConfig, explicit Explicit) (models.ProjectConfig, error) {
	if cfg.Name == "" {
		name, err := f.prompter.Text(PromptName, "my-app", validate.ValidateName)
		if err != nil {
			return cfg, err
		}
		cfg.Name = strings.TrimSpace(name)
	}

	if !explicit.Variant {
		opts := make([]Option, 0, len(models.Variants))
		for _, v := range models.Variants {
			opts = append(opts, Option{Label: v.Description(), Value: v.String()})
		}
		value, err := f.prompter.Select(PromptVariant, opts, cfg.Variant.String())
		if err != nil {
			return cfg, err
		}
		if cfg.Variant, err = models.ParseVariant(value); err != nil {
			return cfg, err
		}
	}

	if !explicit.PackageManager {
		managers := f.managers
		if len(managers) == 0 {
			managers = models.PackageManagers
		}
		initial := managers[0]
		opts := make([]Option, 0, len(managers))
		for _, m := range managers {
			opts = append(opts, Option{Label: m.String(), Value: m.String()})
			if m == cfg.PackageManager {
				initial = m
			}
		}
		value, err := f.prompter.Select(PromptPackageManager, opts, initial.String())
		if err != nil {
			return cfg, err
		}
		if cfg.PackageManager, err = models.ParsePackageManager(value); err != nil {
			return cfg, err
		}
	}

	confirms := []struct {
		skip  bool
		title string
		value *bool
	}{
		{explicit.Docker, PromptDocker, &cfg.IncludeDocker},
		{explicit.Studio, PromptStudio, &cfg.IncludeStudio},
		{explicit.Docs, PromptDocs, &cfg.IncludeDocs},
		{explicit.Git, PromptGit, &cfg.InitGit},
	}
	for _, c := range confirms {
		if c.skip {
			continue
		}
		v, err := f.prompter.Confirm(c.title, *c.value)
		if err != nil {
			return cfg, err
		}
		*c.value = v
	}

	return cfg, nil
}
