package mocks

import (
	"context"

	"github.com/wonder-codes/echo-repo/internal/models"
)

type ReadmeRepositoryMock struct {
	AppendFunc     func(ctx context.Context, readme *models.Readme) error
	ListRecentFunc func(ctx context.Context, limit int) ([]models.Readme, error)

	AppendCalls     int
	ListRecentCalls int
}

func (m *ReadmeRepositoryMock) Append(ctx context.Context, readme *models.Readme) error {
	m.AppendCalls++
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, readme)
	}
	return nil
}

func (m *ReadmeRepositoryMock) ListRecent(ctx context.Context, limit int) ([]models.Readme, error) {
	m.ListRecentCalls++
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit)
	}
	return nil, nil
}
