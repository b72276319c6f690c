package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const (
	fallbackUserName  = "create-stack"
	fallbackUserEmail = "create-stack@localhost"
)

// OSGitClient implements GitClient using real git commands
type OSGitClient struct {
	ctx context.Context
}

// NewOSGitClient creates a new OSGitClient
func NewOSGitClient() *OSGitClient {
	return &OSGitClient{
		ctx: context.Background(),
	}
}

// WithContext returns a new client with the given context
func (g *OSGitClient) WithContext(ctx context.Context) GitClient {
	return &OSGitClient{
		ctx: ctx,
	}
}

// Version returns the installed git version string
func (g *OSGitClient) Version() (string, error) {
	cmd := exec.CommandContext(g.ctx, "git", "--version")

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to run git: %w", err)
	}

	return strings.TrimSpace(out.String()), nil
}

// Init initializes a repository in dir with the given initial branch
func (g *OSGitClient) Init(dir, branch string) error {
	args := []string{"init"}
	if branch != "" {
		args = append(args, "-b", branch)
	}
	if err := g.run(dir, args...); err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}
	return nil
}

// AddAll stages every file in dir
func (g *OSGitClient) AddAll(dir string) error {
	if err := g.run(dir, "add", "-A"); err != nil {
		return fmt.Errorf("failed to stage files: %w", err)
	}
	return nil
}

// Commit records the staged changes. When no identity is configured a
// placeholder author is used so the initial commit still succeeds.
func (g *OSGitClient) Commit(dir, message string) error {
	var args []string
	if !g.hasIdentity(dir) {
		args = append(args, "-c", "user.name="+fallbackUserName, "-c", "user.email="+fallbackUserEmail)
	}
	args = append(args, "commit", "-m", message)

	if err := g.run(dir, args...); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// AddRemote registers a remote
func (g *OSGitClient) AddRemote(dir, name, url string) error {
	if err := g.run(dir, "remote", "add", name, url); err != nil {
		return fmt.Errorf("failed to add remote %s: %w", name, err)
	}
	return nil
}

// Clone makes a shallow clone of url into dest
func (g *OSGitClient) Clone(url, ref, dest string) error {
	args := []string{"clone", "--depth", "1"}
	if ref != "" {
		args = append(args, "--branch", ref)
	}
	args = append(args, url, dest)

	if err := g.run("", args...); err != nil {
		return fmt.Errorf("failed to clone %s: %w", url, err)
	}
	return nil
}

func (g *OSGitClient) hasIdentity(dir string) bool {
	for _, key := range []string{"user.name", "user.email"} {
		cmd := exec.CommandContext(g.ctx, "git", "config", "--get", key)
		cmd.Dir = dir

		var out bytes.Buffer
		cmd.Stdout = &out
		if err := cmd.Run(); err != nil || strings.TrimSpace(out.String()) == "" {
			return false
		}
	}
	return true
}

func (g *OSGitClient) run(dir string, args ...string) error {
	cmd := exec.CommandContext(g.ctx, "git", args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
