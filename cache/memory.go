package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const defaultMemoryCleanupInterval = 10 * time.Minute

// MemoryCache keeps cache entries in process memory.
type MemoryCache struct {
	cache     *gocache.Cache
	retention time.Duration
}

// NewMemoryCache creates an empty in-memory cache.
// Entries are dropped once retention has passed since storing them; zero retention keeps them forever.
func NewMemoryCache(retention time.Duration) *MemoryCache {
	expiration := gocache.NoExpiration
	if retention > 0 {
		expiration = retention
	}
	return &MemoryCache{
		cache:     gocache.New(expiration, defaultMemoryCleanupInterval),
		retention: expiration,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (CacheEntry, bool, error) {
	item, ok := m.cache.Get(key)
	if !ok {
		return CacheEntry{}, false, nil
	}
	entry, ok := item.(CacheEntry)
	if !ok {
		return CacheEntry{}, false, nil
	}
	entry.Bytes = cloneBytes(entry.Bytes)
	return entry, true, nil
}

func (m *MemoryCache) Put(_ context.Context, entry CacheEntry) error {
	entry.Bytes = cloneBytes(entry.Bytes)
	m.cache.Set(entry.Key, entry, m.retention)
	return nil
}

func (m *MemoryCache) Purge(_ context.Context, key string) error {
	m.cache.Delete(key)
	return nil
}

// Len returns the number of stored entries, including ones not yet cleaned up.
func (m *MemoryCache) Len() int {
	return m.cache.ItemCount()
}
