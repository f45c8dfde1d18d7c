// Package cache stores serialized HTTP responses for the client-side cache.
package cache

import (
	"context"
	"time"
)

// CacheProvider is an interface for a cache provider.
// It stores and retrieves cache entries, which represent HTTP responses.
//
// Entries are returned regardless of their freshness: stale responses are still needed
// for cache-only lookups and for revalidation. Providers drop entries only when
// their retention period has passed.
//
// Implementations must be thread-safe!
type CacheProvider interface {
	// Get returns the cache entry for the given key, if it exists.
	// It also returns a boolean indicating whether retrieval was successful.
	// A missing entry is not an error.
	Get(ctx context.Context, key string) (CacheEntry, bool, error)
	// Put stores the given entry in the cache, replacing any entry with the same key.
	Put(ctx context.Context, entry CacheEntry) error
	// Purge removes the cache entry for the given key.
	// Purging a missing key is not an error.
	Purge(ctx context.Context, key string) error
}

type CacheEntry struct {
	Key string
	// Time after which the stored response is stale.
	Expires time.Time
	// The value of the clock at the time of the request that resulted in the stored response.
	RequestedAt time.Time
	// The value of the clock at the time the response was received.
	ReceivedAt time.Time
	// The serialized response.
	Bytes []byte
}

// retainUntil returns the time after which the entry may be dropped.
// The zero time means the entry is kept indefinitely.
func retainUntil(retention time.Duration, now time.Time) time.Time {
	if retention <= 0 {
		return time.Time{}
	}
	return now.Add(retention)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	clone := make([]byte, len(b))
	copy(clone, b)
	return clone
}
