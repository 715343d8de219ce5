package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/wonder-codes/echo-repo/internal/models"
)

const defaultRedisPrefix = "echorepo"

// redisReadmeRepository stores each record as JSON under <prefix>:readme:<id>
// and indexes it in the sorted set <prefix>:readmes, scored by CreatedAt in
// microseconds. Index members are "<seq>:<id>" with a zero-padded insertion
// sequence so that records sharing a score come back most recently inserted
// first.
type redisReadmeRepository struct {
	client *redis.Client
	prefix string
	log    zerolog.Logger
}

func NewRedisReadmeRepository(client *redis.Client, prefix string, log zerolog.Logger) ReadmeRepository {
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultRedisPrefix
	}
	return &redisReadmeRepository{
		client: client,
		prefix: prefix,
		log:    log.With().Str("component", "redis-store").Logger(),
	}
}

func (r *redisReadmeRepository) recordKey(id string) string {
	return r.prefix + ":readme:" + id
}

func (r *redisReadmeRepository) indexKey() string {
	return r.prefix + ":readmes"
}

func (r *redisReadmeRepository) seqKey() string {
	return r.prefix + ":readmes:seq"
}

func (r *redisReadmeRepository) Append(ctx context.Context, readme *models.Readme) error {
	if err := prepareReadme(readme); err != nil {
		return err
	}

	payload, err := json.Marshal(readme)
	if err != nil {
		return errors.Wrap(err, "encode readme")
	}

	created, err := r.client.SetNX(ctx, r.recordKey(readme.ID), payload, 0).Result()
	if err != nil {
		return errors.Wrap(err, "store readme")
	}
	if !created {
		return ErrDuplicateID
	}

	seq, err := r.client.Incr(ctx, r.seqKey()).Result()
	if err != nil {
		return r.unstore(ctx, readme.ID, errors.Wrap(err, "next readme sequence"))
	}

	member := fmt.Sprintf("%019d:%s", seq, readme.ID)
	score := float64(readme.CreatedAt.UnixMicro())
	if err := r.client.ZAdd(ctx, r.indexKey(), redis.Z{Score: score, Member: member}).Err(); err != nil {
		return r.unstore(ctx, readme.ID, errors.Wrap(err, "index readme"))
	}
	return nil
}

// unstore removes a record whose indexing failed so the ID stays free for a
// retry. It runs even when ctx is already cancelled.
func (r *redisReadmeRepository) unstore(ctx context.Context, id string, cause error) error {
	if err := r.client.Del(context.WithoutCancel(ctx), r.recordKey(id)).Err(); err != nil {
		r.log.Error().Err(err).Str("id", id).Msg("failed to remove unindexed readme")
	}
	return cause
}

func (r *redisReadmeRepository) ListRecent(ctx context.Context, limit int) ([]models.Readme, error) {
	limit = normalizeLimit(limit)

	readmes := make([]models.Readme, 0, limit)
	var dangling []any
	var offset int64
	for len(readmes) < limit {
		want := int64(limit - len(readmes))
		members, err := r.client.ZRevRange(ctx, r.indexKey(), offset, offset+want-1).Result()
		if err != nil {
			return nil, errors.Wrap(err, "read readme index")
		}
		if len(members) == 0 {
			break
		}
		offset += int64(len(members))

		keys := make([]string, 0, len(members))
		for _, m := range members {
			_, id, ok := strings.Cut(m, ":")
			if !ok {
				return nil, fmt.Errorf("malformed readme index member %q", m)
			}
			keys = append(keys, r.recordKey(id))
		}

		values, err := r.client.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, errors.Wrap(err, "load readmes")
		}

		for i, v := range values {
			raw, ok := v.(string)
			if !ok {
				r.log.Warn().Str("key", keys[i]).Msg("dropping index entry for missing readme")
				dangling = append(dangling, members[i])
				continue
			}
			var readme models.Readme
			if err := json.Unmarshal([]byte(raw), &readme); err != nil {
				return nil, errors.Wrapf(err, "decode %s", keys[i])
			}
			readmes = append(readmes, readme)
		}
	}

	if len(dangling) > 0 {
		if err := r.client.ZRem(ctx, r.indexKey(), dangling...).Err(); err != nil {
			r.log.Warn().Err(err).Msg("failed to prune readme index")
		}
	}
	return readmes, nil
}
