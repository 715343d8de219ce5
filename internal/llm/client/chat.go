package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"

	"github.com/wonder-codes/echo-repo/internal/models"
)

// CodeChat answers questions about a code blob. The conversation is
// stateless: callers send all prior turns with every request.
type CodeChat struct {
	runnable compose.Runnable[map[string]any, *schema.Message]
}

func NewCodeChat(ctx context.Context, chatModel model.BaseChatModel) (*CodeChat, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	system, err := loadPrompt("chat_system.txt")
	if err != nil {
		return nil, errors.Wrap(err, "load chat system prompt")
	}

	// System context first, then the caller's turns, then the new question.
	tpl := prompt.FromMessages(schema.GoTemplate,
		schema.SystemMessage(system),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{{.message}}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(tpl).AppendChatModel(chatModel)
	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "compile chat chain")
	}
	return &CodeChat{runnable: runnable}, nil
}

func (c *CodeChat) Reply(ctx context.Context, message, code string, history []models.ChatMessage) (string, error) {
	turns, err := toSchemaMessages(history)
	if err != nil {
		return "", err
	}

	out, err := c.runnable.Invoke(ctx, map[string]any{
		"code":    code,
		"message": message,
		"history": turns,
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion")
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", ErrEmptyCompletion
	}
	return out.Content, nil
}

// toSchemaMessages converts caller turns, keeping their order.
func toSchemaMessages(history []models.ChatMessage) ([]*schema.Message, error) {
	out := make([]*schema.Message, 0, len(history))
	for i, turn := range history {
		switch turn.Role {
		case models.RoleUser:
			out = append(out, schema.UserMessage(turn.Content))
		case models.RoleAssistant:
			out = append(out, schema.AssistantMessage(turn.Content, nil))
		default:
			return nil, fmt.Errorf("history turn %d: unsupported role %q", i, turn.Role)
		}
	}
	return out, nil
}
