package client

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"
)

// ErrEmptyCompletion is returned when the model answers with no text.
var ErrEmptyCompletion = errors.New("model returned an empty completion")

// ReadmeGenerator turns a code blob into a Markdown README with one
// completion request. The reply is returned verbatim.
type ReadmeGenerator struct {
	runnable compose.Runnable[map[string]any, *schema.Message]
}

func NewReadmeGenerator(ctx context.Context, chatModel model.BaseChatModel) (*ReadmeGenerator, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	system, err := loadPrompt("readme_system.txt")
	if err != nil {
		return nil, errors.Wrap(err, "load readme system prompt")
	}
	user, err := loadPrompt("readme_user.txt")
	if err != nil {
		return nil, errors.Wrap(err, "load readme prompt")
	}

	tpl := prompt.FromMessages(schema.GoTemplate,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(tpl).AppendChatModel(chatModel)
	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "compile readme chain")
	}
	return &ReadmeGenerator{runnable: runnable}, nil
}

func (g *ReadmeGenerator) GenerateReadme(ctx context.Context, code string) (string, error) {
	out, err := g.runnable.Invoke(ctx, map[string]any{"code": code})
	if err != nil {
		return "", errors.Wrap(err, "readme completion")
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", ErrEmptyCompletion
	}
	return out.Content, nil
}
