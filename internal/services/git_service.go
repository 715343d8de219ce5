package services

import (
	"context"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/pkg/errors"

	"github.com/wonder-codes/echo-repo/internal/apperr"
)

// GitService reads repositories over the git protocol, so it works with any
// host that serves https clones, not only GitHub. Clones are kept in memory
// and discarded after each fetch.
type GitService struct {
	token      string
	extensions []string
	// Depth limits clone history; 0 clones everything.
	Depth    int
	cloneURL func(RepoReference) string
}

func NewGitService(token string, extensions []string) *GitService {
	return &GitService{
		token:      token,
		extensions: extensions,
		Depth:      1,
		cloneURL:   RepoReference.CloneURL,
	}
}

// Clone makes an in-memory clone of the default branch of url.
func (g *GitService) Clone(ctx context.Context, url string) (*git.Repository, error) {
	if url == "" {
		return nil, errors.New("clone url cannot be empty")
	}

	opts := &git.CloneOptions{
		URL:          url,
		Depth:        g.Depth,
		SingleBranch: true,
		Tags:         git.NoTags,
		Auth:         g.auth(url),
	}
	repo, err := git.CloneContext(ctx, memory.NewStorage(), nil, opts)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func (g *GitService) auth(url string) transport.AuthMethod {
	if g.token == "" || !strings.HasPrefix(url, "http") {
		return nil
	}
	return &githttp.BasicAuth{Username: "x-access-token", Password: g.token}
}

// HeadTree returns the tree of the commit HEAD points to.
func (g *GitService) HeadTree(repo *git.Repository) (*object.Tree, error) {
	ref, err := repo.Head()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get HEAD")
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, errors.Wrap(err, "failed to get commit")
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get tree")
	}
	return tree, nil
}

func (g *GitService) FetchRepoContent(ctx context.Context, repositoryReference string) (string, error) {
	ref, err := ParseRepoReference(repositoryReference)
	if err != nil {
		return "", err
	}

	repo, err := g.Clone(ctx, g.cloneURL(ref))
	if err != nil {
		return "", apperr.Wrap(apperr.ErrUpstreamFetchFailed,
			errors.Wrapf(err, "clone %s/%s", ref.Owner, ref.Repo))
	}
	tree, err := g.HeadTree(repo)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrUpstreamFetchFailed, err)
	}

	// Tree entries are already in git's name order.
	entries := make([]repoEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		entries = append(entries, repoEntry{
			Name:   e.Name,
			Path:   e.Name,
			IsFile: e.Mode == filemode.Regular || e.Mode == filemode.Executable,
		})
	}

	return collectTopLevel(entries, g.extensions, func(path string) (string, error) {
		file, err := tree.File(path)
		if err != nil {
			return "", errors.Wrapf(err, "open %s", path)
		}
		return file.Contents()
	})
}
