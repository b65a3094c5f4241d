package versions

import (
	"sync"
	"time"

	"github.com/facebookgo/clock"
)

// memoCache is a bounded TTL cache for resolution results. It only ever
// serves as a shortcut past the network: a TTL of zero disables it entirely
// and every lookup goes upstream.
type memoCache struct {
	clock clock.Clock
	ttl   time.Duration
	max   int

	mu      sync.Mutex
	entries map[string]memoEntry
}

type memoEntry struct {
	value    []string
	storedAt time.Time
}

func newMemoCache(clk clock.Clock, ttl time.Duration, max int) *memoCache {
	return &memoCache{
		clock:   clk,
		ttl:     ttl,
		max:     max,
		entries: make(map[string]memoEntry),
	}
}

func (c *memoCache) get(key string) ([]string, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock.Now().Sub(entry.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (c *memoCache) put(key string, value []string) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()

	// Drop expired entries first, then the oldest, to stay within bounds.
	if len(c.entries) >= c.max {
		for k, e := range c.entries {
			if now.Sub(e.storedAt) >= c.ttl {
				delete(c.entries, k)
			}
		}
	}
	for len(c.entries) >= c.max {
		var oldestKey string
		var oldestAt time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.storedAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = e.storedAt
			}
		}
		delete(c.entries, oldestKey)
	}

	c.entries[key] = memoEntry{value: value, storedAt: now}
}

func (c *memoCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
