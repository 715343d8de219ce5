package repositories

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm/logger"

	"github.com/wonder-codes/echo-repo/internal/database"
)

// Store is an opened history backend together with its shutdown hook.
type Store struct {
	Readmes ReadmeRepository
	Backend string
	close   func() error
}

func (s *Store) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	err := s.close()
	s.close = nil
	return err
}

// OpenStore picks the backend from target: redis:// and rediss:// URLs open
// Redis, anything else is a SQLite file path (empty means the default path).
func OpenStore(ctx context.Context, target string, log zerolog.Logger) (*Store, error) {
	target = strings.TrimSpace(target)

	if strings.HasPrefix(target, "redis://") || strings.HasPrefix(target, "rediss://") {
		opts, err := redis.ParseURL(target)
		if err != nil {
			return nil, errors.Wrap(err, "parse redis url")
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, errors.Wrap(err, "connect to redis")
		}
		log.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("history store: redis")
		return &Store{
			Readmes: NewRedisReadmeRepository(client, defaultRedisPrefix, log),
			Backend: "redis",
			close:   client.Close,
		}, nil
	}

	level := logger.Warn
	if log.GetLevel() <= zerolog.DebugLevel {
		level = logger.Info
	}
	db, err := database.Init(database.Config{
		Path:     target,
		LogLevel: level,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql db")
	}
	log.Info().Str("path", target).Msg("history store: sqlite")
	return &Store{
		Readmes: NewReadmeRepository(db),
		Backend: "sqlite",
		close:   sqlDB.Close,
	}, nil
}
