package source

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jakoblorz/create-stack/internal/filesystem"
	"github.com/jakoblorz/create-stack/internal/github"
)

// GitHubFetcher downloads a repository tarball through the GitHub API.
type GitHubFetcher struct {
	fs     filesystem.FileSystem
	client github.GitHubClient
	owner  string
	repo   string
	ref    string
	logger *log.Logger
}

func (f *GitHubFetcher) String() string {
	s := fmt.Sprintf("github:%s/%s", f.owner, f.repo)
	if f.ref != "" {
		s += "#" + f.ref
	}
	return s
}

// Fetch downloads and unpacks the archive into dest.
func (f *GitHubFetcher) Fetch(ctx context.Context, dest string) error {
	body, err := f.client.DownloadTarball(ctx, f.owner, f.repo, f.ref)
	if err != nil {
		return err
	}
	defer body.Close()

	n, err := ExtractTarball(f.fs, body, dest)
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", f, err)
	}

	f.logger.Debug("extracted template archive", "source", f.String(), "files", n)
	return nil
}

// ExtractTarball unpacks a gzipped tarball into dest, dropping the single top
// level folder GitHub archives wrap the tree in. It returns the number of
// files written. Links and special files are skipped.
func ExtractTarball(fsys filesystem.FileSystem, r io.Reader, dest string) (int, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gz.Close()

	if err := fsys.MkdirAll(dest, 0755); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dest, err)
	}

	tr := tar.NewReader(gz)
	written := 0
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return written, fmt.Errorf("failed to read archive: %w", err)
		}

		rel, ok := stripTopLevel(hdr.Name)
		if !ok {
			continue
		}
		target := filepath.Join(dest, filepath.FromSlash(rel))

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := fsys.MkdirAll(target, 0755); err != nil {
				return written, fmt.Errorf("failed to create %s: %w", target, err)
			}
		case tar.TypeReg:
			data, err := io.ReadAll(tr)
			if err != nil {
				return written, fmt.Errorf("failed to read %s: %w", hdr.Name, err)
			}
			if err := fsys.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return written, fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
			}
			perm := fs.FileMode(hdr.Mode).Perm()
			if perm == 0 {
				perm = 0644
			}
			if err := fsys.WriteFile(target, data, perm); err != nil {
				return written, fmt.Errorf("failed to write %s: %w", target, err)
			}
			written++
		}
	}

	return written, nil
}

// stripTopLevel drops the first path element. Cleaning against "/" keeps
// entries from escaping the destination.
func stripTopLevel(name string) (string, bool) {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	_, rest, ok := strings.Cut(name, "/")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}
