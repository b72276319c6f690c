package source

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/jakoblorz/create-stack/internal/filesystem"
)

// LocalFetcher copies a template from a directory on disk.
type LocalFetcher struct {
	fs     filesystem.FileSystem
	src    string
	logger *log.Logger
}

func (f *LocalFetcher) String() string {
	return f.src
}

// Fetch copies every file below the source, skipping node_modules and .git.
func (f *LocalFetcher) Fetch(ctx context.Context, dest string) error {
	src := filepath.Clean(f.src)
	if err := f.fs.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	copied := 0
	err := f.fs.WalkDir(src, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == src {
			return nil
		}
		if entry.IsDir() && (entry.Name() == "node_modules" || entry.Name() == ".git") {
			return filepath.SkipDir
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if entry.IsDir() {
			return f.fs.MkdirAll(target, 0755)
		}

		data, err := f.fs.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		perm := fs.FileMode(0644)
		if info, err := entry.Info(); err == nil && info.Mode().Perm() != 0 {
			perm = info.Mode().Perm()
		}
		if err := f.fs.WriteFile(target, data, perm); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		copied++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to copy template from %s: %w", src, err)
	}

	f.logger.Debug("copied local template", "from", src, "files", copied)
	return nil
}
