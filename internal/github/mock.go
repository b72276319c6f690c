package github

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MockClient implements GitHubClient for testing
type MockClient struct {
	mu           sync.RWMutex
	repositories map[string]*Repository // key: "owner/repo"
	tarballs     map[string][]byte      // key: "owner/repo@ref"
	downloads    []string

	// Hooks for testing error scenarios
	GetRepositoryError   error
	DownloadTarballError error
}

// NewMockClient creates a new MockClient
func NewMockClient() *MockClient {
	return &MockClient{
		repositories: make(map[string]*Repository),
		tarballs:     make(map[string][]byte),
	}
}

// SetupRepository adds a repository to the mock
func (m *MockClient) SetupRepository(owner, repo string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fmt.Sprintf("%s/%s", owner, repo)
	m.repositories[key] = &Repository{
		Owner:         owner,
		Name:          repo,
		FullName:      key,
		URL:           fmt.Sprintf("https://github.com/%s/%s", owner, repo),
		CloneURL:      fmt.Sprintf("https://github.com/%s/%s.git", owner, repo),
		DefaultBranch: "main",
	}
}

// AddTarball registers the archive served for ref. An empty ref is the
// default branch.
func (m *MockClient) AddTarball(owner, repo, ref string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tarballs[tarballKey(owner, repo, ref)] = data
}

// Downloads returns the "owner/repo@ref" keys of every download
func (m *MockClient) Downloads() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]string(nil), m.downloads...)
}

func (m *MockClient) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	if m.GetRepositoryError != nil {
		return nil, m.GetRepositoryError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.repositories[fmt.Sprintf("%s/%s", owner, repo)]
	if !ok {
		return nil, fmt.Errorf("repository %s/%s not found", owner, repo)
	}
	copied := *r
	return &copied, nil
}

func (m *MockClient) DownloadTarball(ctx context.Context, owner, repo, ref string) (io.ReadCloser, error) {
	if m.DownloadTarballError != nil {
		return nil, m.DownloadTarballError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := tarballKey(owner, repo, ref)
	data, ok := m.tarballs[key]
	if !ok {
		return nil, fmt.Errorf("failed to get archive link for %s/%s: ref %q not found", owner, repo, ref)
	}
	m.downloads = append(m.downloads, key)
	return io.NopCloser(bytes.NewReader(data)), nil
}

func tarballKey(owner, repo, ref string) string {
	return fmt.Sprintf("%s/%s@%s", owner, repo, ref)
}
