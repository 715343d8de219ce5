package mocks

import (
	"context"

	"github.com/wonder-codes/echo-repo/internal/models"
)

type ReadmeGeneratorMock struct {
	GenerateReadmeFunc func(ctx context.Context, code string) (string, error)

	Calls []string
}

func (m *ReadmeGeneratorMock) GenerateReadme(ctx context.Context, code string) (string, error) {
	m.Calls = append(m.Calls, code)
	if m.GenerateReadmeFunc != nil {
		return m.GenerateReadmeFunc(ctx, code)
	}
	return "", nil
}

type CodeChatterMock struct {
	ReplyFunc func(ctx context.Context, message, code string, history []models.ChatMessage) (string, error)

	Calls int
}

func (m *CodeChatterMock) Reply(ctx context.Context, message, code string, history []models.ChatMessage) (string, error) {
	m.Calls++
	if m.ReplyFunc != nil {
		return m.ReplyFunc(ctx, message, code, history)
	}
	return "", nil
}
