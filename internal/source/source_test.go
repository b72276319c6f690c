package source

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jakoblorz/create-stack/internal/filesystem"
	"github.com/jakoblorz/create-stack/internal/git"
	"github.com/jakoblorz/create-stack/internal/github"
	"github.com/stretchr/testify/require"
)

type tarEntry struct {
	name string
	body string
	dir  bool
	link bool
}

func buildTarball(t *testing.T, entries []tarEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0644, Size: int64(len(e.body))}
		switch {
		case e.dir:
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0755
			hdr.Size = 0
		case e.link:
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = "/etc/passwd"
			hdr.Size = 0
		default:
			hdr.Typeflag = tar.TypeReg
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func newResolver(fs filesystem.FileSystem) (*Resolver, *github.MockClient, *git.MockGitClient) {
	gh := github.NewMockClient()
	g := git.NewMockGitClient()
	return &Resolver{FS: fs, GitHub: gh, Git: g}, gh, g
}

func TestResolve(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/templates/stack")
	r, _, _ := newResolver(fs)

	cases := []struct {
		locator string
		want    string
		kind    any
	}{
		{"/templates/stack", "/templates/stack", &LocalFetcher{}},
		{"github:vijaysingh2219/build-elevate", "github:vijaysingh2219/build-elevate", &GitHubFetcher{}},
		{"github:vijaysingh2219/build-elevate#v2.0.0", "github:vijaysingh2219/build-elevate#v2.0.0", &GitHubFetcher{}},
		{"vijaysingh2219/build-elevate.git#main", "github:vijaysingh2219/build-elevate#main", &GitHubFetcher{}},
		{"https://gitlab.com/acme/starter.git", "https://gitlab.com/acme/starter.git", &GitFetcher{}},
		{"git@github.com:acme/starter.git#dev", "git@github.com:acme/starter.git#dev", &GitFetcher{}},
	}
	for _, tc := range cases {
		t.Run(tc.locator, func(t *testing.T) {
			f, err := r.Resolve(tc.locator)
			require.NoError(t, err)
			require.IsType(t, tc.kind, f)
			require.Equal(t, tc.want, f.String())
		})
	}
}

func TestResolve_Unsupported(t *testing.T) {
	r, _, _ := newResolver(filesystem.NewMockFileSystem())

	for _, locator := range []string{"", "build-elevate", "github:nope", "./missing/dir/deeper"} {
		_, err := r.Resolve(locator)
		require.ErrorIs(t, err, ErrUnsupportedLocator, locator)
	}
}

func TestGitHubFetcher_Fetch(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	r, gh, _ := newResolver(fs)

	gh.AddTarball("vijaysingh2219", "build-elevate", "v2", buildTarball(t, []tarEntry{
		{name: "vijaysingh2219-build-elevate-abc123/", dir: true},
		{name: "vijaysingh2219-build-elevate-abc123/package.json", body: `{"name":"build-elevate"}`},
		{name: "vijaysingh2219-build-elevate-abc123/apps/web/.env.example", body: "BETTER_AUTH_SECRET=\n"},
		{name: "vijaysingh2219-build-elevate-abc123/link", link: true},
		{name: "vijaysingh2219-build-elevate-abc123/../../escape.txt", body: "nope"},
	}))

	f, err := r.Resolve("github:vijaysingh2219/build-elevate#v2")
	require.NoError(t, err)
	require.NoError(t, f.Fetch(context.Background(), "/work/acme-app"))

	data, err := fs.ReadFile("/work/acme-app/package.json")
	require.NoError(t, err)
	require.Equal(t, `{"name":"build-elevate"}`, string(data))
	require.True(t, fs.Exists("/work/acme-app/apps/web/.env.example"))
	require.False(t, fs.Exists("/work/acme-app/link"))
	require.False(t, fs.Exists("/work/escape.txt"))
	require.False(t, fs.Exists("/escape.txt"))
}

func TestGitHubFetcher_DownloadFails(t *testing.T) {
	r, gh, _ := newResolver(filesystem.NewMockFileSystem())
	boom := errors.New("403 rate limit exceeded")
	gh.DownloadTarballError = boom

	f, err := r.Resolve("vijaysingh2219/build-elevate")
	require.NoError(t, err)
	require.ErrorIs(t, f.Fetch(context.Background(), "/work/acme-app"), boom)
}

func TestExtractTarball_NotGzip(t *testing.T) {
	_, err := ExtractTarball(filesystem.NewMockFileSystem(), bytes.NewReader([]byte("plain")), "/out")
	require.Error(t, err)
}

func TestGitFetcher_Fetch(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	r, _, g := newResolver(fs)
	g.CloneFunc = func(url, ref, dest string) error {
		fs.AddFile(filepath.Join(dest, "package.json"), []byte("{}"))
		fs.AddFile(filepath.Join(dest, ".git", "HEAD"), []byte("ref: refs/heads/main\n"))
		return nil
	}

	f, err := r.Resolve("https://gitlab.com/acme/starter.git#dev")
	require.NoError(t, err)
	require.NoError(t, f.Fetch(context.Background(), "/work/acme-app"))

	require.True(t, fs.Exists("/work/acme-app/package.json"))
	require.False(t, fs.Exists("/work/acme-app/.git"))

	clones := g.Clones()
	require.Len(t, clones, 1)
	require.Equal(t, "https://gitlab.com/acme/starter.git", clones[0].URL)
	require.Equal(t, "dev", clones[0].Ref)
}

func TestGitFetcher_CloneFails(t *testing.T) {
	r, _, g := newResolver(filesystem.NewMockFileSystem())
	g.CloneError = errors.New("repository not found")

	f, err := r.Resolve("https://example.com/missing.git")
	require.NoError(t, err)
	require.Error(t, f.Fetch(context.Background(), "/work/acme-app"))
}

func TestLocalFetcher_Fetch(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/templates/stack/package.json", []byte(`{"name":"build-elevate"}`))
	fs.AddFile("/templates/stack/apps/api/src/index.ts", []byte("export {}\n"))
	fs.AddFile("/templates/stack/node_modules/x/package.json", []byte("{}"))
	fs.AddFile("/templates/stack/.git/HEAD", []byte("ref"))
	fs.AddDir("/templates/stack/empty")

	r, _, _ := newResolver(fs)
	f, err := r.Resolve("/templates/stack")
	require.NoError(t, err)
	require.NoError(t, f.Fetch(context.Background(), "/work/acme-app"))

	require.True(t, fs.Exists("/work/acme-app/package.json"))
	require.True(t, fs.Exists("/work/acme-app/apps/api/src/index.ts"))
	require.True(t, fs.Exists("/work/acme-app/empty"))
	require.False(t, fs.Exists("/work/acme-app/node_modules"))
	require.False(t, fs.Exists("/work/acme-app/.git"))
}
