package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonder-codes/echo-repo/internal/apperr"
	"github.com/wonder-codes/echo-repo/internal/llm/client"
	"github.com/wonder-codes/echo-repo/internal/models"
	"github.com/wonder-codes/echo-repo/internal/repositories"
)

// ReadmeGenerator produces a Markdown README for a code blob.
type ReadmeGenerator interface {
	GenerateReadme(ctx context.Context, code string) (string, error)
}

// CodeChatter answers one question about a code blob given prior turns.
type CodeChatter interface {
	Reply(ctx context.Context, message, code string, history []models.ChatMessage) (string, error)
}

type ReadmeService interface {
	Generate(ctx context.Context, req GenerateRequest) (*models.Readme, error)
	History(ctx context.Context, limit int) ([]models.Readme, error)
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

type GenerateRequest struct {
	Code                string
	RepositoryReference string
}

type ChatRequest struct {
	Message string
	Code    string
	History []models.ChatMessage
}

// Timeouts bounds each external call. Zero leaves a call unbounded.
type Timeouts struct {
	Fetch    time.Duration
	Generate time.Duration
	Chat     time.Duration
	Store    time.Duration
}

type ReadmeServiceOptions struct {
	Timeouts Timeouts
	// MaxStoredSourceBytes drops the stored source of oversized requests.
	// Zero keeps every source.
	MaxStoredSourceBytes int
	Logger               zerolog.Logger
}

type readmeService struct {
	fetcher   RepoContentFetcher
	generator ReadmeGenerator
	chatter   CodeChatter
	readmes   repositories.ReadmeRepository
	opts      ReadmeServiceOptions
	log       zerolog.Logger
}

func NewReadmeService(fetcher RepoContentFetcher, generator ReadmeGenerator, chatter CodeChatter, readmes repositories.ReadmeRepository, opts ReadmeServiceOptions) ReadmeService {
	return &readmeService{
		fetcher:   fetcher,
		generator: generator,
		chatter:   chatter,
		readmes:   readmes,
		opts:      opts,
		log:       opts.Logger.With().Str("component", "readme_service").Logger(),
	}
}

// Generate runs normalize, fetch (for repository references), generate and
// persist in that order. The first failing stage ends the request; nothing
// is persisted unless generation succeeded.
func (s *readmeService) Generate(ctx context.Context, req GenerateRequest) (*models.Readme, error) {
	log := s.log.With().Str("op", "generate").Logger()

	log.Debug().Str("stage", "normalizing").Msg("request received")
	input, err := NormalizeInput(req.Code, req.RepositoryReference)
	if err != nil {
		return nil, err
	}

	source := input.Code
	if input.NeedsFetch {
		log.Debug().Str("stage", "fetching").Str("repository", input.RepositoryReference).Msg("fetching repository content")
		source, err = withTimeout(ctx, s.opts.Timeouts.Fetch, func(ctx context.Context) (string, error) {
			return s.fetcher.FetchRepoContent(ctx, input.RepositoryReference)
		})
		if err != nil {
			return nil, stageError(apperr.ErrUpstreamFetchFailed, err)
		}
	}

	if tokens, err := client.CountTokens(source); err == nil {
		log.Debug().Int("tokens", tokens).Int("bytes", len(source)).Msg("source prepared")
	}

	log.Debug().Str("stage", "generating").Msg("requesting readme")
	markdown, err := withTimeout(ctx, s.opts.Timeouts.Generate, func(ctx context.Context) (string, error) {
		return s.generator.GenerateReadme(ctx, source)
	})
	if err != nil {
		return nil, stageError(apperr.ErrGenerationFailed, err)
	}
	if strings.TrimSpace(markdown) == "" {
		return nil, apperr.New(apperr.ErrGenerationFailed, "model returned no readme content")
	}

	readme := &models.Readme{
		Title:               ReadmeTitle(input.RepositoryReference),
		Content:             markdown,
		SourceCode:          s.storedSource(source),
		RepositoryReference: input.RepositoryReference,
	}

	log.Debug().Str("stage", "persisting").Str("title", readme.Title).Msg("saving readme")
	_, err = withTimeout(ctx, s.opts.Timeouts.Store, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.readmes.Append(ctx, readme)
	})
	if err != nil {
		// The generated text is lost here; surface enough to find it in logs.
		log.Error().Err(err).Str("title", readme.Title).Int("content_bytes", len(markdown)).Msg("generated readme could not be saved")
		return nil, stageError(apperr.ErrPersistenceFailed, err)
	}

	log.Info().Str("id", readme.ID).Str("title", readme.Title).Msg("readme generated")
	return readme, nil
}

func (s *readmeService) History(ctx context.Context, limit int) ([]models.Readme, error) {
	if limit <= 0 {
		limit = repositories.DefaultHistoryLimit
	}
	readmes, err := withTimeout(ctx, s.opts.Timeouts.Store, func(ctx context.Context) ([]models.Readme, error) {
		return s.readmes.ListRecent(ctx, limit)
	})
	if err != nil {
		return nil, stageError(apperr.ErrPersistenceFailed, err)
	}
	if readmes == nil {
		readmes = []models.Readme{}
	}
	return readmes, nil
}

// Chat answers a follow-up question. Nothing is persisted.
func (s *readmeService) Chat(ctx context.Context, req ChatRequest) (string, error) {
	for _, turn := range req.History {
		if err := turn.Validate(); err != nil {
			return "", apperr.Wrap(apperr.ErrInvalidInput, err)
		}
	}

	s.log.Debug().Str("op", "chat").Str("stage", "replying").Int("turns", len(req.History)).Msg("chat request")
	reply, err := withTimeout(ctx, s.opts.Timeouts.Chat, func(ctx context.Context) (string, error) {
		return s.chatter.Reply(ctx, req.Message, req.Code, req.History)
	})
	if err != nil {
		return "", stageError(apperr.ErrGenerationFailed, err)
	}
	return reply, nil
}

func (s *readmeService) storedSource(source string) string {
	if s.opts.MaxStoredSourceBytes > 0 && len(source) > s.opts.MaxStoredSourceBytes {
		return ""
	}
	return source
}

// stageError tags err with the failing stage's kind unless a collaborator
// already classified it.
func stageError(kind, err error) error {
	if apperr.KindOf(err) != nil {
		return err
	}
	return apperr.Wrap(kind, err)
}

func withTimeout[T any](ctx context.Context, d time.Duration, call func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return call(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return call(ctx)
}
