package knowledge

import (
	"container/list"
	"sync"
	"time"
)

// AiCache is an LRU+TTL cache for collaborator answers. Reads and writes
// both refresh recency; eviction pops from the iteration head once over
// capacity.
type AiCache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	order      *list.List // Front = oldest, back = most recent
	entries    map[string]*list.Element
	now        func() time.Time
}

type cacheEntry struct {
	key       string
	value     any
	expiresAt time.Time
}

// NewAiCache creates a cache holding maxEntries values for ttl each.
func NewAiCache(maxEntries int, ttl time.Duration) *AiCache {
	if maxEntries <= 0 {
		maxEntries = 64
	}
	return &AiCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
		now:        time.Now,
	}
}

// Set stores a value: an existing key is removed first (for ordering), the
// fresh entry re-inserted at the recent end, then the oldest entry evicted
// if the cache is over capacity.
func (c *AiCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}
	el := c.order.PushBack(&cacheEntry{key: key, value: value, expiresAt: c.now().Add(c.ttl)})
	c.entries[key] = el

	for c.order.Len() > c.maxEntries {
		oldest := c.order.Front()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

// Get returns a live value, refreshing its recency. Expired entries are
// dropped on access.
func (c *AiCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if c.now().After(entry.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, key)
		return nil, false
	}
	c.order.Remove(el)
	c.entries[key] = c.order.PushBack(entry)
	return entry.value, true
}

// Len returns the number of stored entries.
func (c *AiCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Keys returns the keys in iteration order, oldest first.
func (c *AiCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*cacheEntry).key)
	}
	return out
}
