package git

import (
	"context"
)

// GitClient provides an abstraction over git operations for testability.
// Every operation takes the directory it runs in; the process working
// directory is never changed.
type GitClient interface {
	// Version returns the output of `git --version`.
	Version() (string, error)

	// Repository setup
	Init(dir, branch string) error
	AddAll(dir string) error
	Commit(dir, message string) error
	AddRemote(dir, name, url string) error

	// Clone makes a shallow clone of url into dest. An empty ref clones the
	// default branch.
	Clone(url, ref, dest string) error

	// Context support for long running operations
	WithContext(ctx context.Context) GitClient
}
