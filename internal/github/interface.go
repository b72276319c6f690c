package github

import (
	"context"
	"io"
)

// GitHubClient provides an abstraction over the GitHub API operations used to
// fetch templates
type GitHubClient interface {
	// Repository operations
	GetRepository(ctx context.Context, owner, repo string) (*Repository, error)

	// DownloadTarball streams the gzipped tarball of ref. An empty ref means
	// the default branch. The caller closes the reader.
	DownloadTarball(ctx context.Context, owner, repo, ref string) (io.ReadCloser, error)
}

// Repository represents a GitHub repository
type Repository struct {
	Owner         string
	Name          string
	FullName      string
	URL           string
	CloneURL      string
	DefaultBranch string
}
