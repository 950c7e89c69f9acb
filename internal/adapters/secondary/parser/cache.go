package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// DefaultCacheSize is the number of rendered blocks a RenderCache keeps
const DefaultCacheSize = 1024

// RenderCache keeps sanitized HTML keyed by the markdown it came from, so
// re-parsing an edited note only renders the blocks that changed
type RenderCache struct {
	mu      sync.RWMutex
	entries map[string]*cachedRender
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	hits   int64
	misses int64
}

type cachedRender struct {
	html      string
	expiresAt time.Time
	lastHit   time.Time
}

// CacheStats reports how a RenderCache is doing
type CacheStats struct {
	Size    int
	MaxSize int
	Hits    int64
	Misses  int64
}

// NewRenderCache creates a cache holding at most maxSize entries.
// A ttl of 0 keeps entries until they are evicted.
func NewRenderCache(maxSize int, ttl time.Duration) *RenderCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &RenderCache{
		entries: make(map[string]*cachedRender),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

func cacheKey(markdown string) string {
	sum := sha256.Sum256([]byte(markdown))
	return hex.EncodeToString(sum[:])
}

// Get returns the HTML previously stored for markdown
func (c *RenderCache) Get(markdown string) (string, bool) {
	key := cacheKey(markdown)

	c.mu.Lock()
	defer c.mu.Unlock()

	cached, ok := c.entries[key]
	if !ok {
		c.misses++
		return "", false
	}

	now := c.now()
	if !cached.expiresAt.IsZero() && now.After(cached.expiresAt) {
		delete(c.entries, key)
		c.misses++
		return "", false
	}

	cached.lastHit = now
	c.hits++
	return cached.html, true
}

// Set stores the HTML rendered from markdown
func (c *RenderCache) Set(markdown, html string) {
	key := cacheKey(markdown)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictLRU()
	}

	now := c.now()
	expiresAt := time.Time{}
	if c.ttl > 0 {
		expiresAt = now.Add(c.ttl)
	}

	c.entries[key] = &cachedRender{
		html:      html,
		expiresAt: expiresAt,
		lastHit:   now,
	}
}

// Clear drops every entry and resets the counters
func (c *RenderCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cachedRender)
	c.hits = 0
	c.misses = 0
}

// evictLRU removes the least recently used entry
func (c *RenderCache) evictLRU() {
	var (
		evictKey string
		oldest   time.Time
	)

	for key, cached := range c.entries {
		if evictKey == "" || cached.lastHit.Before(oldest) {
			oldest = cached.lastHit
			evictKey = key
		}
	}

	if evictKey != "" {
		delete(c.entries, evictKey)
	}
}

// Stats returns cache statistics
func (c *RenderCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return CacheStats{
		Size:    len(c.entries),
		MaxSize: c.maxSize,
		Hits:    c.hits,
		Misses:  c.misses,
	}
}
