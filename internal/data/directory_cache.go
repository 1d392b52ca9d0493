package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tailfin-labs/tailfin/internal/domain/model"
)

const directoryCacheKey = "tailfin:directory:v1"

// RedisDirectoryCache stores the serialized address directory so the gateway
// does not rebuild from the jobs table on every webhook batch.
type RedisDirectoryCache struct {
	client *redis.Client
	logger *slog.Logger
}

// RedisDirectoryCacheOptions configures a RedisDirectoryCache.
type RedisDirectoryCacheOptions struct {
	Client *redis.Client
	Logger *slog.Logger
}

func NewRedisDirectoryCache(opts RedisDirectoryCacheOptions) *RedisDirectoryCache {
	return &RedisDirectoryCache{
		client: opts.Client,
		logger: opts.Logger.With("component", "directory_cache"),
	}
}

// Get returns the cached directory. The second return is false on a miss.
// Redis failures are returned so the caller can fall back to a rebuild.
func (c *RedisDirectoryCache) Get(ctx context.Context) (model.Directory, bool, error) {
	raw, err := c.client.Get(ctx, directoryCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("directory cache get: %w", err)
	}

	var dir model.Directory
	if err := json.Unmarshal(raw, &dir); err != nil {
		// A corrupt entry is a miss, not a fatal error.
		c.logger.WarnContext(ctx, "dropping corrupt directory cache entry", "error", err)
		_ = c.client.Del(ctx, directoryCacheKey).Err()
		return nil, false, nil
	}
	return dir, true, nil
}

// Set stores the directory with a TTL bound so a missed invalidation heals
// itself.
func (c *RedisDirectoryCache) Set(ctx context.Context, dir model.Directory, ttl time.Duration) error {
	raw, err := json.Marshal(dir)
	if err != nil {
		return fmt.Errorf("directory cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, directoryCacheKey, raw, ttl).Err(); err != nil {
		return fmt.Errorf("directory cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached directory after any job mutation.
func (c *RedisDirectoryCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, directoryCacheKey).Err(); err != nil {
		return fmt.Errorf("directory cache invalidate: %w", err)
	}
	return nil
}
