package git_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jakoblorz/create-stack/internal/git"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available in PATH")
	}
}

// gitOutput runs a git command in the specified directory
func gitOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoErrorf(t, err, "git %v failed\nOutput: %s", args, output)
	return strings.TrimSpace(string(output))
}

func TestOSGitClient_Version(t *testing.T) {
	requireGit(t)

	version, err := git.NewOSGitClient().Version()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(version, "git version"), version)
}

func TestOSGitClient_InitialCommit(t *testing.T) {
	requireGit(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# acme\n"), 0644))

	client := git.NewOSGitClient()
	require.NoError(t, client.Init(dir, "main"))
	require.NoError(t, client.AddAll(dir))
	require.NoError(t, client.Commit(dir, "Initial commit"))
	require.NoError(t, client.AddRemote(dir, "origin", "https://example.com/acme.git"))

	require.Equal(t, "main", gitOutput(t, dir, "branch", "--show-current"))
	require.Equal(t, "Initial commit", gitOutput(t, dir, "log", "-1", "--pretty=%s"))
	require.Equal(t, "https://example.com/acme.git", gitOutput(t, dir, "remote", "get-url", "origin"))
}

func TestOSGitClient_ErrorIncludesStderr(t *testing.T) {
	requireGit(t)

	dir := t.TempDir()
	err := git.NewOSGitClient().AddAll(dir)
	require.Error(t, err)
	require.Contains(t, strings.ToLower(err.Error()), "not a git repository")
}

func TestOSGitClient_CloneLocal(t *testing.T) {
	requireGit(t)

	src := t.TempDir()
	client := git.NewOSGitClient()
	require.NoError(t, os.WriteFile(filepath.Join(src, "package.json"), []byte("{}\n"), 0644))
	require.NoError(t, client.Init(src, "main"))
	require.NoError(t, client.AddAll(src))
	require.NoError(t, client.Commit(src, "template"))

	dest := filepath.Join(t.TempDir(), "clone")
	require.NoError(t, client.Clone("file://"+src, "", dest))

	_, err := os.Stat(filepath.Join(dest, "package.json"))
	require.NoError(t, err)
}
