// Package cache holds rendered public responses and invalidates them on admin writes.
package cache

import (
	"context"
	"sync"
	"time"

	"clubevents/internal/domain"
)

type cachedPage struct {
	body     []byte
	storedAt time.Time
}

// PageCache is an in-process cache of rendered responses keyed by path.
// Entries live until invalidated or until maxAge elapses.
type PageCache struct {
	mu     sync.RWMutex
	pages  map[string]cachedPage
	gen    uint64
	maxAge time.Duration
	now    func() time.Time
}

var _ domain.PageCache = (*PageCache)(nil)

// NewPageCache returns an empty cache. A zero maxAge keeps entries until invalidated.
func NewPageCache(maxAge time.Duration) *PageCache {
	return &PageCache{
		pages:  make(map[string]cachedPage),
		maxAge: maxAge,
		now:    time.Now,
	}
}

func (c *PageCache) Get(path string) ([]byte, bool) {
	c.mu.RLock()
	p, ok := c.pages[path]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.maxAge > 0 && c.now().Sub(p.storedAt) > c.maxAge {
		c.mu.Lock()
		delete(c.pages, path)
		c.mu.Unlock()
		return nil, false
	}
	return p.body, true
}

func (c *PageCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// Set stores body unless the cache was invalidated after gen was read.
func (c *PageCache) Set(path string, body []byte, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.pages[path] = cachedPage{body: body, storedAt: c.now()}
	return true
}

// Invalidate drops the given paths. It never fails.
func (c *PageCache) Invalidate(_ context.Context, paths ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	for _, p := range paths {
		delete(c.pages, p)
	}
	return nil
}

// Len returns the number of cached pages.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}
