package cache

import (
	"sync"
	"time"
)

// entry is a cached value with a fixed expiry
type entry struct {
	value     interface{}
	expiresAt time.Time
}

// TTLCache is a concurrent map with time-based expiry. Entries are never
// proactively invalidated; staleness is bounded only by the TTL supplied at
// Set time. Reads on different keys never block on each other's fetches.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New creates an empty cache
func New() *TTLCache {
	return &TTLCache{
		entries: make(map[string]entry),
	}
}

// Get returns the cached value for the key when present and not expired
func (ttlCache *TTLCache) Get(key string) (interface{}, bool) {
	ttlCache.mu.RLock()
	cachedEntry, found := ttlCache.entries[key]
	ttlCache.mu.RUnlock()

	if !found || time.Now().After(cachedEntry.expiresAt) {
		return nil, false
	}
	return cachedEntry.value, true
}

// Set stores the value under the key with a fixed TTL, replacing any
// previous entry
func (ttlCache *TTLCache) Set(key string, value interface{}, ttl time.Duration) {
	ttlCache.mu.Lock()
	ttlCache.entries[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	ttlCache.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included
func (ttlCache *TTLCache) Len() int {
	ttlCache.mu.RLock()
	defer ttlCache.mu.RUnlock()
	return len(ttlCache.entries)
}

// Purge removes entries that expired before now. Callers that keep a cache
// for long-running processes can run this periodically; correctness never
// depends on it.
func (ttlCache *TTLCache) Purge() {
	currentTime := time.Now()
	ttlCache.mu.Lock()
	for key, cachedEntry := range ttlCache.entries {
		if currentTime.After(cachedEntry.expiresAt) {
			delete(ttlCache.entries, key)
		}
	}
	ttlCache.mu.Unlock()
}
