package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/pkg/errors"
	"google.golang.org/genai"
)

// ModelOptions configures one chat model instance. Generation and chat each
// get their own instance so their temperatures stay independent.
type ModelOptions struct {
	Model       string
	Temperature *float32
	MaxTokens   int
	BaseURL     string
}

// LLMClient is a provider-specific chat model behind eino's common interface.
type LLMClient struct {
	ChatModel model.BaseChatModel
	Provider  string
	Model     string
}

func NewOpenAIClient(ctx context.Context, key string, opts ModelOptions) (*LLMClient, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	cfg := &openai.ChatModelConfig{
		APIKey:      key,
		Model:       opts.Model,
		Temperature: opts.Temperature,
		BaseURL:     opts.BaseURL,
	}
	if opts.MaxTokens > 0 {
		maxTokens := opts.MaxTokens
		cfg.MaxTokens = &maxTokens
	}

	chatModel, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create openai chat model")
	}
	return &LLMClient{ChatModel: chatModel, Provider: "openai", Model: opts.Model}, nil
}

func NewClaudeClient(ctx context.Context, key string, opts ModelOptions) (*LLMClient, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		// Anthropic rejects requests without max_tokens.
		maxTokens = 4096
	}
	cfg := &claude.Config{
		APIKey:      key,
		Model:       opts.Model,
		MaxTokens:   maxTokens,
		Temperature: opts.Temperature,
	}
	if opts.BaseURL != "" {
		baseURL := opts.BaseURL
		cfg.BaseURL = &baseURL
	}

	chatModel, err := claude.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create claude chat model")
	}
	return &LLMClient{ChatModel: chatModel, Provider: "anthropic", Model: opts.Model}, nil
}

func NewGeminiClient(ctx context.Context, key string, opts ModelOptions) (*LLMClient, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	genaiClient, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, errors.Wrap(err, "create genai client")
	}

	cfg := &gemini.Config{
		Client:      genaiClient,
		Model:       opts.Model,
		Temperature: opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		maxTokens := opts.MaxTokens
		cfg.MaxTokens = &maxTokens
	}

	chatModel, err := gemini.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create gemini chat model")
	}
	return &LLMClient{ChatModel: chatModel, Provider: "gemini", Model: opts.Model}, nil
}

// New builds a client for provider ("openai", "anthropic" or "gemini").
func New(ctx context.Context, provider, key string, opts ModelOptions) (*LLMClient, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai":
		return NewOpenAIClient(ctx, key, opts)
	case "anthropic":
		return NewClaudeClient(ctx, key, opts)
	case "gemini":
		return NewGeminiClient(ctx, key, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// Float32 returns a pointer to v, for ModelOptions.Temperature.
func Float32(v float32) *float32 {
	return &v
}
