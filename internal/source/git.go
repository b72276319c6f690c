package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/jakoblorz/create-stack/internal/filesystem"
	"github.com/jakoblorz/create-stack/internal/git"
)

// GitFetcher makes a shallow clone and drops the template's history.
type GitFetcher struct {
	fs     filesystem.FileSystem
	git    git.GitClient
	url    string
	ref    string
	logger *log.Logger
}

func (f *GitFetcher) String() string {
	if f.ref != "" {
		return f.url + "#" + f.ref
	}
	return f.url
}

// Fetch clones into dest and removes its .git directory.
func (f *GitFetcher) Fetch(ctx context.Context, dest string) error {
	if err := f.git.WithContext(ctx).Clone(f.url, f.ref, dest); err != nil {
		return err
	}

	if err := f.fs.RemoveAll(filepath.Join(dest, ".git")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove template history: %w", err)
	}

	f.logger.Debug("cloned template", "url", f.url, "ref", f.ref)
	return nil
}
