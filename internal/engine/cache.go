package engine

import (
	"sync"
	"time"

	"github.com/moodcraft/backend/internal/models"
)

// Cache memoizes finished playlists by request fingerprint. Implementations
// must be safe for concurrent use.
type Cache interface {
	Get(fingerprint string) (*models.GeneratedPlaylist, bool)
	Put(fingerprint string, p *models.GeneratedPlaylist)
	Invalidate(fingerprint string)
}

type cacheEntry struct {
	playlist *models.GeneratedPlaylist
	expiry   time.Time
}

// MemoryCache is an in-process TTL cache. Expired entries are dropped
// lazily on Get and swept by a background janitor.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates a MemoryCache with the given entry TTL and starts
// the sweep goroutine.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	c := newMemoryCache(ttl)
	go c.sweep()
	return c
}

func newMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached playlist for the fingerprint if it has not expired.
func (c *MemoryCache) Get(fingerprint string) (*models.GeneratedPlaylist, bool) {
	c.mu.RLock()
	entry, ok := c.entries[fingerprint]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.now().After(entry.expiry) {
		c.dropExpired(fingerprint)
		return nil, false
	}
	return entry.playlist, true
}

// dropExpired deletes the entry only if it is still expired; a concurrent
// Put may have refreshed it between the read and this write.
func (c *MemoryCache) dropExpired(fingerprint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[fingerprint]; ok && c.now().After(entry.expiry) {
		delete(c.entries, fingerprint)
	}
}

// Put stores a playlist under the fingerprint with the cache's TTL.
func (c *MemoryCache) Put(fingerprint string, p *models.GeneratedPlaylist) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fingerprint] = cacheEntry{playlist: p, expiry: c.now().Add(c.ttl)}
}

// Invalidate removes the entry for the fingerprint, if any.
func (c *MemoryCache) Invalidate(fingerprint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, fingerprint)
}

// sweep removes expired entries once a minute.
func (c *MemoryCache) sweep() {
	for {
		time.Sleep(time.Minute)

		c.mu.Lock()
		now := c.now()
		for fp, entry := range c.entries {
			if now.After(entry.expiry) {
				delete(c.entries, fp)
			}
		}
		c.mu.Unlock()
	}
}
