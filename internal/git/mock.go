package git

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
)

// MockRepo is the state of one repository created through MockGitClient.
type MockRepo struct {
	Branch  string
	Staged  bool
	Commits []string
	Remotes map[string]string
}

// MockGitClient implements GitClient for testing
type MockGitClient struct {
	mu     sync.RWMutex
	repos  map[string]*MockRepo
	clones []MockClone

	// VersionString is returned by Version
	VersionString string

	// CloneFunc, when set, populates dest on Clone
	CloneFunc func(url, ref, dest string) error

	// Hooks for testing error scenarios
	VersionError   error
	InitError      error
	AddAllError    error
	CommitError    error
	AddRemoteError error
	CloneError     error
}

// MockClone records a Clone call
type MockClone struct {
	URL  string
	Ref  string
	Dest string
}

// NewMockGitClient creates a new MockGitClient
func NewMockGitClient() *MockGitClient {
	return &MockGitClient{
		repos:         make(map[string]*MockRepo),
		VersionString: "git version 2.47.0",
	}
}

// WithContext returns the same mock; it ignores cancellation.
func (m *MockGitClient) WithContext(ctx context.Context) GitClient {
	return m
}

// Version returns VersionString
func (m *MockGitClient) Version() (string, error) {
	if m.VersionError != nil {
		return "", m.VersionError
	}
	return m.VersionString, nil
}

// Init records a new repository at dir
func (m *MockGitClient) Init(dir, branch string) error {
	if m.InitError != nil {
		return m.InitError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.repos[filepath.Clean(dir)] = &MockRepo{
		Branch:  branch,
		Remotes: make(map[string]string),
	}
	return nil
}

// AddAll marks the repository as staged
func (m *MockGitClient) AddAll(dir string) error {
	if m.AddAllError != nil {
		return m.AddAllError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	repo, err := m.repoLocked(dir)
	if err != nil {
		return err
	}
	repo.Staged = true
	return nil
}

// Commit records a commit; staged changes are required
func (m *MockGitClient) Commit(dir, message string) error {
	if m.CommitError != nil {
		return m.CommitError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	repo, err := m.repoLocked(dir)
	if err != nil {
		return err
	}
	if !repo.Staged {
		return fmt.Errorf("failed to commit: nothing added to commit")
	}
	repo.Commits = append(repo.Commits, message)
	repo.Staged = false
	return nil
}

// AddRemote records a remote
func (m *MockGitClient) AddRemote(dir, name, url string) error {
	if m.AddRemoteError != nil {
		return m.AddRemoteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	repo, err := m.repoLocked(dir)
	if err != nil {
		return err
	}
	if _, exists := repo.Remotes[name]; exists {
		return fmt.Errorf("failed to add remote %s: remote already exists", name)
	}
	repo.Remotes[name] = url
	return nil
}

// Clone records the call and delegates to CloneFunc
func (m *MockGitClient) Clone(url, ref, dest string) error {
	if m.CloneError != nil {
		return m.CloneError
	}

	m.mu.Lock()
	m.clones = append(m.clones, MockClone{URL: url, Ref: ref, Dest: dest})
	fn := m.CloneFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(url, ref, dest)
	}
	return nil
}

// Repo returns the repository created at dir, if any
func (m *MockGitClient) Repo(dir string) (*MockRepo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	repo, ok := m.repos[filepath.Clean(dir)]
	return repo, ok
}

// Clones returns every recorded Clone call
func (m *MockGitClient) Clones() []MockClone {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]MockClone(nil), m.clones...)
}

func (m *MockGitClient) repoLocked(dir string) (*MockRepo, error) {
	repo, ok := m.repos[filepath.Clean(dir)]
	if !ok {
		return nil, fmt.Errorf("not a git repository: %s", dir)
	}
	return repo, nil
}
