package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var errRedisUnavailable = errors.New("redis cache client unavailable")

const defaultRedisPrefix = "revalidate"

// RedisClient captures the subset of redis.Client used by the cache.
type RedisClient interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Persist(ctx context.Context, key string) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCache stores each cache entry as a Redis hash.
type RedisCache struct {
	client    RedisClient
	retention time.Duration
	prefix    string
}

// NewRedisCache creates a cache on the given client, namespacing keys with prefix.
// Entries are dropped by Redis once retention has passed since storing them;
// zero retention keeps them forever.
func NewRedisCache(client RedisClient, retention time.Duration, prefix string) *RedisCache {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisCache{
		client:    client,
		retention: retention,
		prefix:    prefix,
	}
}

func (r *RedisCache) Get(ctx context.Context, key string) (CacheEntry, bool, error) {
	entry := CacheEntry{Key: key}
	if r.client == nil {
		return entry, false, errRedisUnavailable
	}
	fields, err := r.client.HGetAll(ctx, r.cacheKey(key)).Result()
	if err != nil {
		return entry, false, err
	}
	// a missing key yields an empty hash
	bytes, ok := fields["bytes"]
	if !ok {
		return entry, false, nil
	}
	entry.Bytes = []byte(bytes)
	for name, t := range map[string]*time.Time{
		"expires":      &entry.Expires,
		"requested_at": &entry.RequestedAt,
		"received_at":  &entry.ReceivedAt,
	} {
		millis, err := strconv.ParseInt(fields[name], 10, 64)
		if err != nil {
			return entry, false, fmt.Errorf("malformed %s of %s: %w", name, key, err)
		}
		*t = time.UnixMilli(millis)
	}
	return entry, true, nil
}

func (r *RedisCache) Put(ctx context.Context, entry CacheEntry) error {
	if r.client == nil {
		return errRedisUnavailable
	}
	cacheKey := r.cacheKey(entry.Key)
	err := r.client.HSet(ctx, cacheKey,
		"expires", entry.Expires.UnixMilli(),
		"requested_at", entry.RequestedAt.UnixMilli(),
		"received_at", entry.ReceivedAt.UnixMilli(),
		"bytes", entry.Bytes,
	).Err()
	if err != nil {
		return err
	}
	if r.retention > 0 {
		if err := r.client.Expire(ctx, cacheKey, r.retention).Err(); err != nil {
			return fmt.Errorf("expire cache key: %w", err)
		}
		return nil
	}
	return r.client.Persist(ctx, cacheKey).Err()
}

func (r *RedisCache) Purge(ctx context.Context, key string) error {
	if r.client == nil {
		return errRedisUnavailable
	}
	return r.client.Del(ctx, r.cacheKey(key)).Err()
}

func (r *RedisCache) cacheKey(key string) string {
	return r.prefix + ":" + key
}
