// Package redis wraps the go-redis client used by the run index.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/tensorplex-labs/pridano/internal/config"
)

const pingTimeout = 3 * time.Second

// ErrDisabled is returned by NewRedis when no address is configured.
var ErrDisabled = errors.New("redis disabled: REDIS_ADDR is empty")

type Redis struct {
	client *goredis.Client
	cfg    *config.RedisEnvConfig
}

// NewRedis connects and pings the server so a bad address fails at startup
// rather than on the first request.
func NewRedis(ctx context.Context, cfg *config.RedisEnvConfig) (*Redis, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.RedisAddr, err)
	}

	return &Redis{client: client, cfg: cfg}, nil
}

func (r *Redis) Client() *goredis.Client {
	return r.client
}

func (r *Redis) Close() error {
	return r.client.Close()
}
