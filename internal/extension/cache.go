package extension

import (
	"sync"
	"time"
)

// DefaultStatusTTL is how long a bookmark status answer is trusted.
const DefaultStatusTTL = 5 * time.Minute

// CacheEntry is the last known status of one URL.
type CacheEntry struct {
	URL        string     `json:"url"`
	Bookmarked bool       `json:"bookmarked"`
	BookmarkID *int64     `json:"bookmarkId,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	CachedAt   time.Time  `json:"cachedAt"`
}

// StatusCache maps URLs to their bookmark status. Entries older than the TTL
// are ignored on read; Sweep drops them.
type StatusCache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewStatusCache uses DefaultStatusTTL when ttl <= 0 and the wall clock when
// now is nil.
func NewStatusCache(ttl time.Duration, now func() time.Time) *StatusCache {
	if ttl <= 0 {
		ttl = DefaultStatusTTL
	}
	if now == nil {
		now = time.Now
	}
	return &StatusCache{
		entries: make(map[string]CacheEntry),
		ttl:     ttl,
		now:     now,
	}
}

func (c *StatusCache) TTL() time.Duration { return c.ttl }

// Get returns the entry for url if it is still fresh.
func (c *StatusCache) Get(url string) (CacheEntry, bool) {
	c.mu.RLock()
	e, ok := c.entries[url]
	c.mu.RUnlock()

	if !ok || !c.fresh(e, c.now()) {
		return CacheEntry{}, false
	}
	return e, true
}

// Put stores e under e.URL, stamped with the current time.
func (c *StatusCache) Put(e CacheEntry) {
	e.CachedAt = c.now()

	c.mu.Lock()
	c.entries[e.URL] = e
	c.mu.Unlock()
}

func (c *StatusCache) Clear() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

func (c *StatusCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Sweep removes stale entries and returns how many were dropped.
func (c *StatusCache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for url, e := range c.entries {
		if !c.fresh(e, now) {
			delete(c.entries, url)
			n++
		}
	}
	return n
}

func (c *StatusCache) fresh(e CacheEntry, now time.Time) bool {
	return now.Sub(e.CachedAt) < c.ttl
}
