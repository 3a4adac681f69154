package cache_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkbook/internal/cache"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newCache(ttl time.Duration, capacity int) (*cache.MemoryCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	return cache.NewMemoryCache(ttl, capacity).WithClock(clock.Now), clock
}

func TestMemoryCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(time.Minute, 10)

	require.NoError(t, c.Set(ctx, "artists", []string{"mira", "jon"}))

	var got []string
	found, err := c.Get(ctx, "artists", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"mira", "jon"}, got)

	found, err = c.Get(ctx, "salons", &got)
	require.NoError(t, err)
	assert.False(t, found)

	stats := c.Stats(ctx)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, "memory", stats.Backend)
}

func TestMemoryCacheExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	c, clock := newCache(time.Minute, 10)
	require.NoError(t, c.Set(ctx, "k", 42))

	clock.Advance(time.Minute)
	var v int
	found, _ := c.Get(ctx, "k", &v)
	assert.True(t, found, "entry exactly at ttl is still fresh")

	clock.Advance(time.Second)
	found, _ = c.Get(ctx, "k", &v)
	assert.False(t, found)
	assert.Equal(t, 0, c.Len(), "expired entry is evicted on read")
}

func TestMemoryCacheEvictsOldestInserted(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(time.Hour, 2)

	require.NoError(t, c.Set(ctx, "a", 1))
	require.NoError(t, c.Set(ctx, "b", 2))

	// Reading "a" does not refresh it: eviction follows insertion order, not recency.
	var v int
	found, _ := c.Get(ctx, "a", &v)
	require.True(t, found)

	require.NoError(t, c.Set(ctx, "c", 3))
	assert.Equal(t, 2, c.Len())

	found, _ = c.Get(ctx, "a", &v)
	assert.False(t, found)
	found, _ = c.Get(ctx, "b", &v)
	assert.True(t, found)
	found, _ = c.Get(ctx, "c", &v)
	assert.True(t, found)
}

func TestMemoryCacheOverwriteMovesKeyToBack(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(time.Hour, 2)

	require.NoError(t, c.Set(ctx, "a", 1))
	require.NoError(t, c.Set(ctx, "b", 2))
	require.NoError(t, c.Set(ctx, "a", 10))
	require.NoError(t, c.Set(ctx, "c", 3))

	var v int
	found, _ := c.Get(ctx, "b", &v)
	assert.False(t, found)
	found, _ = c.Get(ctx, "a", &v)
	assert.True(t, found)
	assert.Equal(t, 10, v)
}

func TestMemoryCacheFlush(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(time.Hour, 10)
	require.NoError(t, c.Set(ctx, "a", 1))
	require.NoError(t, c.Set(ctx, "b", 2))

	require.NoError(t, c.Flush(ctx))
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(time.Minute, 50)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := cache.Key("q", map[string]int{"i": i % 5})
			for j := 0; j < 100; j++ {
				_ = c.Set(ctx, key, j)
				var v int
				_, _ = c.Get(ctx, key, &v)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 50)
}

func TestKeyIsDeterministic(t *testing.T) {
	a := cache.Key("artists.list", map[string]interface{}{"city": "berlin", "page": 1})
	b := cache.Key("artists.list", map[string]interface{}{"page": 1, "city": "berlin"})
	assert.Equal(t, a, b)
	assert.Equal(t, `artists.list:{"city":"berlin","page":1}`, a)
	assert.Equal(t, "cities", cache.Key("cities", nil))
}

func TestRememberLoadsOnceWithinTTL(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(time.Minute, 10)
	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"blackwork"}, nil
	}

	first, err := cache.Remember(ctx, c, "tags", load)
	require.NoError(t, err)
	second, err := cache.Remember(ctx, c, "tags", load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestRememberDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(time.Minute, 10)
	boom := errors.New("db down")

	_, err := cache.Remember(ctx, c, "tags", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestRememberWithoutCache(t *testing.T) {
	v, err := cache.Remember(context.Background(), nil, "k", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}
