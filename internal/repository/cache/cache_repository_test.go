package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/library-availability/internal/domain"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisWithClient(client, zap.NewNop()), mr
}

func TestCacheRepository_Bytes(t *testing.T) {
	r, mr := newTestRedis(t)
	repo := NewCacheRepository(r)
	ctx := context.Background()

	val, err := repo.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, repo.Set(ctx, "k", []byte("v"), time.Minute))

	val, err = repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)

	exists, err := repo.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	mr.FastForward(2 * time.Minute)

	exists, err = repo.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, repo.Delete(ctx, "k"))
	val, err = repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestCacheRepository_Libraries(t *testing.T) {
	r, mr := newTestRedis(t)
	repo := NewCacheRepository(r)
	ctx := context.Background()
	key := "libraries:near:49.283:-123.121:15.0"

	libs, err := repo.GetLibraries(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, libs)

	stored := []domain.RawLibrary{
		{ExternalID: "node/101", Name: "Vancouver Public Library - Central", Location: domain.Coordinate{Lat: 49.2799, Lon: -123.1156}, City: "Vancouver"},
		{ExternalID: "way/202", Name: "Kitsilano Branch", Location: domain.Coordinate{Lat: 49.2688, Lon: -123.1551}},
	}
	require.NoError(t, repo.SetLibraries(ctx, key, stored, time.Hour))

	libs, err = repo.GetLibraries(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, stored, libs)
	assert.Equal(t, time.Hour, mr.TTL(key))

	t.Run("corrupted entry is a miss", func(t *testing.T) {
		require.NoError(t, mr.Set(key, "{not json"))

		libs, err := repo.GetLibraries(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, libs)
		assert.False(t, mr.Exists(key))
	})

	t.Run("redis down", func(t *testing.T) {
		mr.Close()
		_, err := repo.GetLibraries(ctx, key)
		assert.Error(t, err)
	})
}
