package validate

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"
)

// ToolChecker reports the installed version of an external tool.
type ToolChecker interface {
	Version(ctx context.Context, tool string) (string, error)
}

var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// ExecToolChecker runs `<tool> --version` from PATH.
type ExecToolChecker struct{}

// NewExecToolChecker creates an ExecToolChecker
func NewExecToolChecker() *ExecToolChecker {
	return &ExecToolChecker{}
}

func (ExecToolChecker) Version(ctx context.Context, tool string) (string, error) {
	path, err := exec.LookPath(tool)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH: %w", tool, err)
	}

	cmd := exec.CommandContext(ctx, path, "--version")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to run %s --version: %w: %s", tool, err, strings.TrimSpace(stderr.String()))
	}

	return ParseVersion(out.String())
}

// ParseVersion extracts the first dotted version from tool output such as
// "git version 2.47.0" or "10.18.0".
func ParseVersion(output string) (string, error) {
	match := versionPattern.FindString(output)
	if match == "" {
		return "", fmt.Errorf("no version found in %q", strings.TrimSpace(output))
	}
	return match, nil
}

// StaticToolChecker answers from a fixed table, for tests and dry runs.
type StaticToolChecker struct {
	mu       sync.Mutex
	versions map[string]string
	calls    []string
}

// NewStaticToolChecker creates a checker that knows the given tool versions
func NewStaticToolChecker(versions map[string]string) *StaticToolChecker {
	copied := make(map[string]string, len(versions))
	for k, v := range versions {
		copied[k] = v
	}
	return &StaticToolChecker{versions: copied}
}

func (s *StaticToolChecker) Version(ctx context.Context, tool string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, tool)
	v, ok := s.versions[tool]
	if !ok {
		return "", fmt.Errorf("%s not found in PATH", tool)
	}
	return v, nil
}

// Calls returns the tools that were queried, in order
func (s *StaticToolChecker) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.calls...)
}
