// Package source acquires the template tree into the destination directory.
package source

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jakoblorz/create-stack/internal/filesystem"
	"github.com/jakoblorz/create-stack/internal/git"
	"github.com/jakoblorz/create-stack/internal/github"
	"github.com/jakoblorz/create-stack/internal/output"
)

// ErrUnsupportedLocator is returned for locators no fetcher understands.
var ErrUnsupportedLocator = errors.New("unsupported template locator")

// Fetcher populates a directory with the template.
type Fetcher interface {
	// Fetch writes the template tree into dest, which must not exist yet.
	Fetch(ctx context.Context, dest string) error
	// String describes the source for progress output.
	String() string
}

var shorthandPattern = regexp.MustCompile(`^([A-Za-z0-9_-][A-Za-z0-9_.-]*)/([A-Za-z0-9_.-]+)$`)

// Resolver maps locators to fetchers.
type Resolver struct {
	FS     filesystem.FileSystem
	GitHub github.GitHubClient
	Git    git.GitClient
	Logger *log.Logger
}

// Resolve chooses the fetcher for locator:
//   - an existing local directory is copied
//   - github:owner/repo[#ref] and owner/repo[#ref] are downloaded as a tarball
//   - URLs and scp-style git addresses are cloned
func (r *Resolver) Resolve(locator string) (Fetcher, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return nil, fmt.Errorf("%w: empty locator", ErrUnsupportedLocator)
	}
	logger := output.OrDiscard(r.Logger)

	if info, err := r.FS.Stat(locator); err == nil && info.IsDir() {
		return &LocalFetcher{fs: r.FS, src: locator, logger: logger}, nil
	}

	spec, ref, _ := strings.Cut(locator, "#")

	if rest, ok := strings.CutPrefix(spec, "github:"); ok {
		m := shorthandPattern.FindStringSubmatch(rest)
		if m == nil {
			return nil, fmt.Errorf("%w: %q is not github:owner/repo", ErrUnsupportedLocator, locator)
		}
		return r.githubFetcher(m[1], m[2], ref, logger), nil
	}

	if strings.Contains(spec, "://") || strings.HasPrefix(spec, "git@") {
		return &GitFetcher{fs: r.FS, git: r.Git, url: spec, ref: ref, logger: logger}, nil
	}

	if m := shorthandPattern.FindStringSubmatch(spec); m != nil {
		return r.githubFetcher(m[1], m[2], ref, logger), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocator, locator)
}

func (r *Resolver) githubFetcher(owner, repo, ref string, logger *log.Logger) *GitHubFetcher {
	return &GitHubFetcher{
		fs:     r.FS,
		client: r.GitHub,
		owner:  owner,
		repo:   strings.TrimSuffix(repo, ".git"),
		ref:    ref,
		logger: logger,
	}
}
