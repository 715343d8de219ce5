package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/wonder-codes/echo-repo/internal/config"
	"github.com/wonder-codes/echo-repo/internal/llm/client"
	"github.com/wonder-codes/echo-repo/internal/repositories"
)

// Services aggregates the process-wide collaborators built from config.
type Services struct {
	Readmes ReadmeService
	Keyring *KeyringService
	Store   *repositories.Store
}

// NewServices opens the history store, builds the model clients and the
// repository fetcher, and wires them into the README service. Credentials
// missing from cfg are looked up in keys.
func NewServices(ctx context.Context, cfg *config.Config, keys *KeyringService, log zerolog.Logger) (*Services, error) {
	apiKey, err := keys.Resolve(cfg.LLM.APIKey, cfg.LLM.Provider)
	if err != nil {
		log.Warn().Err(err).Str("provider", cfg.LLM.Provider).Msg("keyring unavailable; api key not resolved")
	}
	githubToken, err := keys.Resolve(cfg.GitHub.Token, GitHubCredential)
	if err != nil {
		log.Debug().Err(err).Msg("keyring unavailable; using unauthenticated repository access")
	}

	generationClient, err := client.New(ctx, cfg.LLM.Provider, apiKey, client.ModelOptions{
		Model:       cfg.LLM.GenerationModel,
		Temperature: client.Float32(cfg.LLM.GenerationTemperature),
		MaxTokens:   cfg.LLM.MaxTokens,
		BaseURL:     cfg.LLM.BaseURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "generation model")
	}
	chatClient, err := client.New(ctx, cfg.LLM.Provider, apiKey, client.ModelOptions{
		Model:       cfg.LLM.ChatModel,
		Temperature: client.Float32(cfg.LLM.ChatTemperature),
		MaxTokens:   cfg.LLM.MaxTokens,
		BaseURL:     cfg.LLM.BaseURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "chat model")
	}

	generator, err := client.NewReadmeGenerator(ctx, generationClient.ChatModel)
	if err != nil {
		return nil, err
	}
	chat, err := client.NewCodeChat(ctx, chatClient.ChatModel)
	if err != nil {
		return nil, err
	}

	fetcher, err := NewRepoContentFetcher(cfg, githubToken)
	if err != nil {
		return nil, err
	}

	store, err := repositories.OpenStore(ctx, cfg.StoreURL, log)
	if err != nil {
		return nil, errors.Wrap(err, "open history store")
	}

	log.Info().
		Str("provider", cfg.LLM.Provider).
		Str("generation_model", cfg.LLM.GenerationModel).
		Str("chat_model", cfg.LLM.ChatModel).
		Str("fetcher", cfg.Fetcher).
		Str("store", store.Backend).
		Msg("services ready")

	return &Services{
		Readmes: NewReadmeService(fetcher, generator, chat, store.Readmes, ReadmeServiceOptions{
			Timeouts: Timeouts{
				Fetch:    cfg.Timeouts.Fetch,
				Generate: cfg.Timeouts.Generate,
				Chat:     cfg.Timeouts.Chat,
				Store:    cfg.Timeouts.Store,
			},
			MaxStoredSourceBytes: cfg.MaxStoredSourceBytes,
			Logger:               log,
		}),
		Keyring: keys,
		Store:   store,
	}, nil
}

// NewRepoContentFetcher returns the fetcher selected by cfg.Fetcher.
func NewRepoContentFetcher(cfg *config.Config, token string) (RepoContentFetcher, error) {
	switch cfg.Fetcher {
	case config.FetcherGit:
		return NewGitService(token, cfg.SourceExtensions), nil
	case config.FetcherGitHub, "":
		return NewGitHubContentFetcher(token, cfg.GitHub.BaseURL, cfg.SourceExtensions)
	default:
		return nil, errors.Errorf("unsupported repository fetcher %q", cfg.Fetcher)
	}
}

func (s *Services) Close() error {
	if s == nil {
		return nil
	}
	return s.Store.Close()
}
