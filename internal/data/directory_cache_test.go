package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailfin-labs/tailfin/internal/domain/model"
	"github.com/tailfin-labs/tailfin/internal/testutil"
)

func TestRedisDirectoryCache_RoundTrip(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer func() { _ = client.Close() }()

	cache := NewRedisDirectoryCache(RedisDirectoryCacheOptions{Client: client, Logger: testLogger()})
	ctx := context.Background()

	dir, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, dir)

	want := model.Directory{
		"MintA": {{JobID: "job-1", Category: model.CategoryMintActivity}},
		"ProgB": {{JobID: "job-2", Category: model.CategoryProgramInteractions}},
	}
	require.NoError(t, cache.Set(ctx, want, time.Minute))

	got, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, cache.Invalidate(ctx))
	_, ok, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisDirectoryCache_CorruptEntryIsMiss(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer func() { _ = client.Close() }()

	cache := NewRedisDirectoryCache(RedisDirectoryCacheOptions{Client: client, Logger: testLogger()})
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "tailfin:directory:v1", "{not json", time.Minute).Err())

	dir, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, dir)

	// The corrupt entry is dropped so the next write starts clean.
	exists, err := client.Exists(ctx, "tailfin:directory:v1").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
