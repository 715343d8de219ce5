package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonder-codes/echo-repo/internal/apperr"
)

// newLocalRepo commits files into a fresh repository and returns its path.
func newLocalRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	w, err := repo.Worktree()
	require.NoError(t, err)
	for name, content := range files {
		full := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
		_, err = w.Add(name)
		require.NoError(t, err)
	}
	_, err = w.Commit("initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

// localGitService clones from dir whatever reference it is given.
func localGitService(dir string, extensions []string) *GitService {
	gs := NewGitService("", extensions)
	gs.Depth = 0
	gs.cloneURL = func(RepoReference) string { return dir }
	return gs
}

func TestGitService_FetchTopLevelSources(t *testing.T) {
	dir := newLocalRepo(t, map[string]string{
		"index.js":     "module.exports = 1\n",
		"package.json": "{\"name\":\"widget\"}\n",
		"README.md":    "# old\n",
		"src/deep.js":  "ignored()\n",
	})

	out, err := localGitService(dir, nil).FetchRepoContent(context.Background(), "https://github.com/acme/widget")
	require.NoError(t, err)

	assert.Equal(t,
		"\n--- File: index.js ---\nmodule.exports = 1\n\n"+
			"\n--- File: package.json ---\n{\"name\":\"widget\"}\n\n",
		out)
	assert.NotContains(t, out, "README.md")
	assert.NotContains(t, out, "deep.js")
}

func TestGitService_NoRelevantFiles(t *testing.T) {
	dir := newLocalRepo(t, map[string]string{"LICENSE": "MIT\n"})

	out, err := localGitService(dir, nil).FetchRepoContent(context.Background(), "https://github.com/acme/widget")
	require.NoError(t, err)
	assert.Equal(t, NoRelevantFilesSentinel, out)
}

func TestGitService_InvalidReferenceDoesNotClone(t *testing.T) {
	gs := NewGitService("", nil)
	cloned := false
	gs.cloneURL = func(RepoReference) string { cloned = true; return "" }

	_, err := gs.FetchRepoContent(context.Background(), "not-a-valid-url")
	assert.ErrorIs(t, err, apperr.ErrInvalidRepositoryReference)
	assert.False(t, cloned)
}

func TestGitService_CloneFailureIsUpstream(t *testing.T) {
	gs := localGitService(filepath.Join(t.TempDir(), "missing"), nil)

	_, err := gs.FetchRepoContent(context.Background(), "https://github.com/acme/widget")
	assert.ErrorIs(t, err, apperr.ErrUpstreamFetchFailed)
}

func TestGitService_AuthOnlyForHTTP(t *testing.T) {
	gs := NewGitService("secret", nil)
	assert.NotNil(t, gs.auth("https://github.com/acme/widget.git"))
	assert.Nil(t, gs.auth("/tmp/repo"))
	assert.Nil(t, NewGitService("", nil).auth("https://github.com/acme/widget.git"))
}

func TestGitService_CloneRejectsEmptyURL(t *testing.T) {
	_, err := NewGitService("", nil).Clone(context.Background(), "")
	assert.EqualError(t, err, "clone url cannot be empty")
}
