package pkgmanager

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/jakoblorz/create-stack/internal/models"
)

// Runner executes package manager commands inside a generated project.
type Runner interface {
	Install(ctx context.Context, dir string, m models.PackageManager) error
	Build(ctx context.Context, dir string, m models.PackageManager) error
}

// ExecRunner runs the real package manager binaries. Output is streamed to
// Stdout and Stderr when set; stderr is always kept for error messages.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner creates an ExecRunner that discards command output
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Install(ctx context.Context, dir string, m models.PackageManager) error {
	if err := r.run(ctx, dir, string(m), "install"); err != nil {
		return fmt.Errorf("failed to install dependencies: %w", err)
	}
	return nil
}

func (r *ExecRunner) Build(ctx context.Context, dir string, m models.PackageManager) error {
	args := strings.Fields(m.RunCommand("build"))
	if err := r.run(ctx, dir, args[0], args[1:]...); err != nil {
		return fmt.Errorf("failed to build project: %w", err)
	}
	return nil
}

func (r *ExecRunner) run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stdout = r.Stdout
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(r.Stderr, &stderr)
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, lastLine(msg))
		}
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}

func lastLine(s string) string {
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		return s[idx+1:]
	}
	return s
}

// RunnerCall records one invocation on a MockRunner.
type RunnerCall struct {
	Command        string
	Dir            string
	PackageManager models.PackageManager
}

// MockRunner records calls instead of executing anything.
type MockRunner struct {
	mu    sync.Mutex
	calls []RunnerCall

	// Error hooks
	InstallError error
	BuildError   error
}

// NewMockRunner creates a new MockRunner
func NewMockRunner() *MockRunner {
	return &MockRunner{}
}

func (r *MockRunner) Install(ctx context.Context, dir string, m models.PackageManager) error {
	r.record("install", dir, m)
	return r.InstallError
}

func (r *MockRunner) Build(ctx context.Context, dir string, m models.PackageManager) error {
	r.record("build", dir, m)
	return r.BuildError
}

// Calls returns the recorded invocations in order.
func (r *MockRunner) Calls() []RunnerCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RunnerCall(nil), r.calls...)
}

func (r *MockRunner) record(command, dir string, m models.PackageManager) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, RunnerCall{Command: command, Dir: dir, PackageManager: m})
}
