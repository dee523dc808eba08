package runstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/pridano/internal/core"
)

func setupTestRedis(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRedisIndexRecordRecentRemove(t *testing.T) {
	client, _ := setupTestRedis(t)
	idx := NewRedisIndex(client)
	ctx := context.Background()

	for i, name := range []string{"100_a", "300_c", "200_b"} {
		require.NoError(t, idx.Record(ctx, core.Run{
			Name:      name,
			Path:      PublicPath(name),
			Score:     float64(i) / 10,
			CreatedAt: time.Unix(int64(100*(i+1)), 0).UTC(),
		}))
	}

	runs, err := idx.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "200_b", runs[0].Name)
	assert.Equal(t, "/runs/200_b", runs[0].Path)
	assert.InDelta(t, 0.2, runs[0].Score, 1e-9)
	assert.Equal(t, "300_c", runs[1].Name)

	require.NoError(t, idx.Remove(ctx, "200_b"))
	runs, err = idx.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "300_c", runs[0].Name)
}

func TestRecentFallsBackToDisk(t *testing.T) {
	s := newStore(t)
	seedRuns(t, s, "1_a", "2_b", "3_c")

	client, mr := setupTestRedis(t)
	idx := NewRedisIndex(client)
	mr.Close()

	runs, err := Recent(context.Background(), s, idx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "3_c", runs[0].Name)

	runs, err = Recent(context.Background(), s, nil, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}
