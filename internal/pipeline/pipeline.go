// Package pipeline runs the scaffolding stages in their fixed order.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jakoblorz/create-stack/internal/envfile"
	"github.com/jakoblorz/create-stack/internal/filesystem"
	"github.com/jakoblorz/create-stack/internal/git"
	"github.com/jakoblorz/create-stack/internal/identity"
	"github.com/jakoblorz/create-stack/internal/models"
	"github.com/jakoblorz/create-stack/internal/output"
	"github.com/jakoblorz/create-stack/internal/pkgmanager"
	"github.com/jakoblorz/create-stack/internal/prune"
	"github.com/jakoblorz/create-stack/internal/readme"
	"github.com/jakoblorz/create-stack/internal/source"
	"github.com/jakoblorz/create-stack/internal/validate"
	"github.com/jakoblorz/create-stack/internal/warnings"
	"github.com/jakoblorz/create-stack/internal/workspace"
)

// State is one step of a run.
type State string

const (
	StateValidating                 State = "validating"
	StateAcquiring                  State = "acquiring"
	StatePropagating                State = "propagating"
	StatePruning                    State = "pruning"
	StateAdaptingPackageManager     State = "adapting-package-manager"
	StateProvisioning               State = "provisioning"
	StateCleaningInternal           State = "cleaning-internal"
	StateRemovingOptionalExtras     State = "removing-optional-extras"
	StateInstalling                 State = "installing"
	StateBuilding                   State = "building"
	StateComposingReadme            State = "composing-readme"
	StateInitializingVersionControl State = "initializing-version-control"
	StateDone                       State = "done"
)

// Stage mutates the workspace for one state. Per-file failures go into the
// returned log; a returned error means the stage as a whole failed.
type Stage interface {
	Name() string
	Apply(ctx context.Context, ws *workspace.Workspace, cfg models.ProjectConfig) (*warnings.Log, error)
}

// FatalError aborts a run. Only validation and acquisition produce it.
type FatalError struct {
	State State
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.State, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Status is the outcome of one state.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// StageResult records how one state ended.
type StageResult struct {
	State    State
	Name     string
	Status   Status
	Warnings int
	Duration time.Duration
}

// Result is the outcome of a completed run.
type Result struct {
	// Dir is the project directory.
	Dir      string
	Warnings *warnings.Log
	Stages   []StageResult
}

// Status returns the status of state, or "" when it never ran.
func (r *Result) Status(state State) Status {
	for _, s := range r.Stages {
		if s.State == state {
			return s.Status
		}
	}
	return ""
}

// Step binds a stage to its state. When reports whether the step runs given
// the configuration and the results so far; nil means always.
type Step struct {
	State    State
	Stage    Stage
	When     func(cfg models.ProjectConfig, done *Result) bool
	Progress string
}

// Options are the collaborators of an Orchestrator.
type Options struct {
	FS        filesystem.FileSystem
	Validator *validate.Validator
	Resolver  *source.Resolver
	Runner    pkgmanager.Runner
	Git       git.GitClient
	Logger    *log.Logger

	// Progress wraps long-running steps, e.g. with a spinner. Nil runs the
	// action directly.
	Progress func(ctx context.Context, title string, action func(context.Context) error) error
	// OnStage is called after every state.
	OnStage func(StageResult)
	// Now is the clock for the LICENSE year.
	Now func() time.Time
}

// Orchestrator validates, acquires and then runs every Step in order.
type Orchestrator struct {
	opts   Options
	logger *log.Logger
}

// New creates an Orchestrator
func New(opts Options) *Orchestrator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Progress == nil {
		opts.Progress = func(ctx context.Context, _ string, action func(context.Context) error) error {
			return action(ctx)
		}
	}
	return &Orchestrator{opts: opts, logger: output.OrDiscard(opts.Logger)}
}

// Steps returns the post-acquisition steps in execution order.
func (o *Orchestrator) Steps() []Step {
	logger := o.logger
	return []Step{
		{State: StatePropagating, Stage: identity.New(logger)},
		{State: StatePruning, Stage: prune.New(logger)},
		{State: StateAdaptingPackageManager, Stage: pkgmanager.New(logger)},
		{State: StateProvisioning, Stage: envfile.New(logger)},
		{State: StateCleaningInternal, Stage: NewCleanup(logger, o.opts.Now)},
		{State: StateRemovingOptionalExtras, Stage: NewExtras(logger)},
		{
			State:    StateInstalling,
			Stage:    NewInstall(o.opts.Runner),
			When:     func(cfg models.ProjectConfig, _ *Result) bool { return !cfg.SkipInstall },
			Progress: "Installing dependencies",
		},
		{
			State: StateBuilding,
			Stage: NewBuild(o.opts.Runner),
			When: func(cfg models.ProjectConfig, done *Result) bool {
				return !cfg.SkipInstall && done.Status(StateInstalling) == StatusCompleted
			},
			Progress: "Building project",
		},
		{State: StateComposingReadme, Stage: readme.New(logger)},
		{
			State: StateInitializingVersionControl,
			Stage: NewVersionControl(o.opts.Git, logger),
			When:  func(cfg models.ProjectConfig, _ *Result) bool { return cfg.InitGit },
		},
	}
}

// Run creates the project described by cfg below cwd. A *FatalError is
// returned when validation or acquisition fails; every later failure ends up
// in Result.Warnings.
func (o *Orchestrator) Run(ctx context.Context, cfg models.ProjectConfig, cwd string) (*Result, error) {
	cfg = cfg.WithDefaults()
	result := &Result{
		Dir:      validate.Destination(cfg, cwd),
		Warnings: warnings.New(),
	}

	start := time.Now()
	if err := o.opts.Validator.Check(ctx, cfg, cwd); err != nil {
		o.record(result, StageResult{State: StateValidating, Name: "Validating", Status: StatusFailed, Duration: time.Since(start)})
		return result, &FatalError{State: StateValidating, Err: err}
	}
	o.record(result, StageResult{State: StateValidating, Name: "Validating", Status: StatusCompleted, Duration: time.Since(start)})

	start = time.Now()
	if err := o.acquire(ctx, cfg, result.Dir); err != nil {
		o.record(result, StageResult{State: StateAcquiring, Name: "Acquiring template", Status: StatusFailed, Duration: time.Since(start)})
		return result, &FatalError{State: StateAcquiring, Err: err}
	}
	o.record(result, StageResult{State: StateAcquiring, Name: "Acquiring template", Status: StatusCompleted, Duration: time.Since(start)})

	ws := workspace.New(o.opts.FS, result.Dir)
	for _, step := range o.Steps() {
		if step.When != nil && !step.When(cfg, result) {
			o.record(result, StageResult{State: step.State, Name: step.Stage.Name(), Status: StatusSkipped})
			continue
		}
		o.record(result, o.runStep(ctx, step, ws, cfg, result.Warnings))
	}

	o.record(result, StageResult{State: StateDone, Name: "Done", Status: StatusCompleted})
	return result, nil
}

func (o *Orchestrator) acquire(ctx context.Context, cfg models.ProjectConfig, dir string) error {
	fetcher, err := o.opts.Resolver.Resolve(cfg.Template)
	if err != nil {
		return err
	}
	o.logger.Debug("acquiring template", "source", fetcher.String(), "dest", dir)
	return o.opts.Progress(ctx, "Fetching template from "+fetcher.String(), func(ctx context.Context) error {
		return fetcher.Fetch(ctx, dir)
	})
}

func (o *Orchestrator) runStep(ctx context.Context, step Step, ws *workspace.Workspace, cfg models.ProjectConfig, all *warnings.Log) StageResult {
	res := StageResult{State: step.State, Name: step.Stage.Name(), Status: StatusCompleted}
	start := time.Now()

	var warns *warnings.Log
	run := func(ctx context.Context) error {
		var err error
		warns, err = apply(ctx, step.Stage, ws, cfg)
		return err
	}

	var err error
	if step.Progress != "" {
		err = o.opts.Progress(ctx, step.Progress, run)
	} else {
		err = run(ctx)
	}

	res.Duration = time.Since(start)
	res.Warnings = warns.Len()
	all.Merge(warns)
	if err != nil {
		res.Status = StatusFailed
		res.Warnings++
		all.AddError(string(step.State), "", err)
	}
	return res
}

// apply runs a stage and turns a panic into an error.
func apply(ctx context.Context, stage Stage, ws *workspace.Workspace, cfg models.ProjectConfig) (warns *warnings.Log, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", stage.Name(), r)
		}
	}()
	return stage.Apply(ctx, ws, cfg)
}

func (o *Orchestrator) record(result *Result, res StageResult) {
	result.Stages = append(result.Stages, res)
	o.logger.Debug("stage", "state", res.State, "status", res.Status, "warnings", res.Warnings, "took", res.Duration)
	if o.opts.OnStage != nil {
		o.opts.OnStage(res)
	}
}
