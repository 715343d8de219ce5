package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
	"github.com/pkg/errors"

	"github.com/wonder-codes/echo-repo/internal/apperr"
)

// RepoContentFetcher turns a repository reference into the text blob that is
// documented: the recognized top-level source files, each under a
// "--- File: <path> ---" header, or NoRelevantFilesSentinel.
type RepoContentFetcher interface {
	FetchRepoContent(ctx context.Context, repositoryReference string) (string, error)
}

const githubHost = "github.com"

// GitHubContentFetcher reads repositories through the GitHub contents API.
// It serves references on github.com, or on the enterprise host when a base
// URL is configured.
type GitHubContentFetcher struct {
	client     *github.Client
	extensions []string
	hosts      map[string]bool
}

// NewGitHubContentFetcher builds a fetcher. token may be empty for public
// repositories; baseURL overrides the API endpoint (GitHub Enterprise).
func NewGitHubContentFetcher(token, baseURL string, extensions []string) (*GitHubContentFetcher, error) {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	hosts := map[string]bool{githubHost: true, "www." + githubHost: true}
	if strings.TrimSpace(baseURL) != "" {
		u, err := url.Parse(strings.TrimSpace(baseURL))
		if err != nil {
			return nil, errors.Wrap(err, "parse github api url")
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		client.BaseURL = u
		if host := strings.ToLower(u.Hostname()); host != "" && host != "api."+githubHost {
			// GitHub Enterprise serves the API from api.<host> or <host>/api/v3.
			hosts[host] = true
			hosts[strings.TrimPrefix(host, "api.")] = true
		}
	}
	return &GitHubContentFetcher{client: client, extensions: extensions, hosts: hosts}, nil
}

func (f *GitHubContentFetcher) FetchRepoContent(ctx context.Context, repositoryReference string) (string, error) {
	ref, err := ParseRepoReference(repositoryReference)
	if err != nil {
		return "", err
	}
	if host, _, _ := strings.Cut(strings.ToLower(ref.Host), ":"); !f.hosts[host] {
		return "", apperr.New(apperr.ErrInvalidRepositoryReference,
			fmt.Sprintf("%s is not served by the GitHub fetcher; use fetcher = \"git\" for other hosts", ref.Host))
	}

	_, listing, _, err := f.client.Repositories.GetContents(ctx, ref.Owner, ref.Repo, "", nil)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrUpstreamFetchFailed,
			errors.Wrapf(err, "list %s/%s", ref.Owner, ref.Repo))
	}

	entries := make([]repoEntry, 0, len(listing))
	for _, item := range listing {
		entries = append(entries, repoEntry{
			Name:   item.GetName(),
			Path:   item.GetPath(),
			IsFile: item.GetType() == "file",
		})
	}

	return collectTopLevel(entries, f.extensions, func(path string) (string, error) {
		file, _, _, err := f.client.Repositories.GetContents(ctx, ref.Owner, ref.Repo, path, nil)
		if err != nil {
			return "", errors.Wrapf(err, "get %s", path)
		}
		if file == nil {
			return "", errors.Errorf("%s is not a file", path)
		}
		content, err := file.GetContent()
		if err != nil {
			return "", errors.Wrapf(err, "decode %s", path)
		}
		return content, nil
	})
}
