package cache

import (
	"context"
	"encoding/json"
	"fmt"
)

// QueryCache memoizes read query results for a fixed TTL.
// Any write to the catalog flushes it completely.
type QueryCache interface {
	// Get unmarshals the cached value for key into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	// Set stores value under key for the configured TTL.
	Set(ctx context.Context, key string, value interface{}) error
	// Flush drops every entry.
	Flush(ctx context.Context) error
	// Stats reports hit/miss counters and the current size.
	Stats(ctx context.Context) Stats
}

// Stats describes cache effectiveness.
type Stats struct {
	Backend  string `json:"backend"`
	Entries  int    `json:"entries"`
	Capacity int    `json:"capacity,omitempty"`
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	TTL      string `json:"ttl"`
}

// Key builds a cache key from a query name and its options.
// encoding/json sorts map keys and keeps struct field order, so equal options give equal keys.
func Key(name string, options interface{}) string {
	if options == nil {
		return name
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return fmt.Sprintf("%s:%v", name, options)
	}
	return name + ":" + string(raw)
}

// Remember returns the cached value for key, or calls load and caches its result.
// Cache errors are not fatal: the query still runs.
func Remember[T any](ctx context.Context, c QueryCache, key string, load func() (T, error)) (T, error) {
	var cached T
	if c != nil {
		if found, err := c.Get(ctx, key, &cached); err == nil && found {
			return cached, nil
		}
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if c != nil {
		_ = c.Set(ctx, key, value)
	}
	return value, nil
}
