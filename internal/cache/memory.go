package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	payload  []byte
	storedAt time.Time
}

// MemoryCache is an in-process QueryCache.
// Expired entries are evicted on read; when full, the oldest inserted entry is evicted.
type MemoryCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	entries  map[string]memoryEntry
	order    []string // insertion order, oldest first
	hits     uint64
	misses   uint64
	now      func() time.Time
}

// NewMemoryCache creates a MemoryCache holding at most capacity entries for ttl each.
func NewMemoryCache(ttl time.Duration, capacity int) *MemoryCache {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryCache{
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[string]memoryEntry),
		now:      time.Now,
	}
}

// WithClock replaces the time source, used by tests.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return false, nil
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		c.removeLocked(key)
		c.misses++
		return false, nil
	}
	if err := json.Unmarshal(entry.payload, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	c.hits++
	return true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s for cache: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.removeLocked(key)
	}
	for len(c.entries) >= c.capacity && len(c.order) > 0 {
		c.removeLocked(c.order[0])
	}
	c.entries[key] = memoryEntry{payload: payload, storedAt: c.now()}
	c.order = append(c.order, key)
	return nil
}

func (c *MemoryCache) Flush(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]memoryEntry)
	c.order = nil
	return nil
}

func (c *MemoryCache) Stats(_ context.Context) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Backend:  "memory",
		Entries:  len(c.entries),
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,
		TTL:      c.ttl.String(),
	}
}

// Len is the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
