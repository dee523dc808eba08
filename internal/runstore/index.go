package runstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/pridano/internal/core"
)

const (
	runsByTimeKey = "pridano:runs" // sorted set of run names scored by creation time
	runKeyPrefix  = "pridano:run:" // run metadata: pridano:run:{name}
)

// Index records run metadata for fast listing.
type Index interface {
	Record(ctx context.Context, run core.Run) error
	Recent(ctx context.Context, limit int) ([]core.Run, error)
	Remove(ctx context.Context, names ...string) error
}

// RedisIndex keeps runs in a sorted set keyed by creation time plus one JSON
// value per run.
type RedisIndex struct {
	client goredis.UniversalClient
}

func NewRedisIndex(client goredis.UniversalClient) *RedisIndex {
	return &RedisIndex{client: client}
}

func (r *RedisIndex) Record(ctx context.Context, run core.Run) error {
	data, err := sonic.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run %s: %w", run.Name, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, runKey(run.Name), data, 0)
	pipe.ZAdd(ctx, runsByTimeKey, goredis.Z{Score: float64(run.CreatedAt.Unix()), Member: run.Name})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record run %s: %w", run.Name, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first. limit <= 0 returns all.
func (r *RedisIndex) Recent(ctx context.Context, limit int) ([]core.Run, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	names, err := r.client.ZRevRange(ctx, runsByTimeKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	if len(names) == 0 {
		return []core.Run{}, nil
	}

	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = runKey(n)
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load runs: %w", err)
	}

	runs := make([]core.Run, 0, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			log.Warn().Str("run", names[i]).Msg("run index entry without metadata")
			continue
		}
		var run core.Run
		if err := sonic.UnmarshalString(s, &run); err != nil {
			log.Warn().Err(err).Str("run", names[i]).Msg("skipping unreadable run index entry")
			continue
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (r *RedisIndex) Remove(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	members := make([]any, len(names))
	keys := make([]string, len(names))
	for i, n := range names {
		members[i] = n
		keys[i] = runKey(n)
	}

	pipe := r.client.TxPipeline()
	pipe.ZRem(ctx, runsByTimeKey, members...)
	pipe.Del(ctx, keys...)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("remove runs: %w", err)
	}
	return nil
}

// Recent lists runs from the index when one is configured, falling back to
// the filesystem when it is absent or fails.
func Recent(ctx context.Context, store *Store, index Index, limit int) ([]core.Run, error) {
	if index != nil {
		runs, err := index.Recent(ctx, limit)
		if err == nil {
			return runs, nil
		}
		log.Warn().Err(err).Msg("run index unavailable, listing runs from disk")
	}

	runs, err := store.List()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func runKey(name string) string {
	return runKeyPrefix + name
}
