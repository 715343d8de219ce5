package mocks

import "context"

type RepoContentFetcherMock struct {
	FetchRepoContentFunc func(ctx context.Context, repositoryReference string) (string, error)

	Calls []string
}

func (m *RepoContentFetcherMock) FetchRepoContent(ctx context.Context, repositoryReference string) (string, error) {
	m.Calls = append(m.Calls, repositoryReference)
	if m.FetchRepoContentFunc != nil {
		return m.FetchRepoContentFunc(ctx, repositoryReference)
	}
	return "", nil
}
