package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/pridano/internal/config"
)

func TestNewRedisDisabled(t *testing.T) {
	_, err := NewRedis(context.Background(), &config.RedisEnvConfig{})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNewRedisPing(t *testing.T) {
	mr := miniredis.RunT(t)

	r, err := NewRedis(context.Background(), &config.RedisEnvConfig{RedisAddr: mr.Addr()})
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Client().Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(context.Background(), &config.RedisEnvConfig{RedisAddr: addr})
	assert.ErrorContains(t, err, "ping redis")
}
