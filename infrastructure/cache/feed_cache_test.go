package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Marc02130/tiktaik-sub000/domain/model"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/cache"
)

// manualClock lets tests move cache time without sleeping.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func page(ids ...string) []model.VideoItem {
	items := make([]model.VideoItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, model.VideoItem{ID: id})
	}
	return items
}

func TestMemoryFeedCache_SetGet(t *testing.T) {
	clock := newManualClock()
	c := cache.NewMemoryFeedCache(5*time.Minute, time.Hour, clock.Now)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "discovery|viewer-1|initial", page("v1", "v2"))

	items, ok := c.Get(ctx, "discovery|viewer-1|initial")
	assert.True(t, ok)
	assert.Equal(t, page("v1", "v2"), items)

	_, ok = c.Get(ctx, "discovery|viewer-2|initial")
	assert.False(t, ok)
}

func TestMemoryFeedCache_ExpiredEntryReadsAsMiss(t *testing.T) {
	clock := newManualClock()
	c := cache.NewMemoryFeedCache(5*time.Minute, time.Hour, clock.Now)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "key", page("v1"))

	clock.Advance(5*time.Minute - time.Second)
	_, ok := c.Get(ctx, "key")
	assert.True(t, ok)

	clock.Advance(2 * time.Second)
	_, ok = c.Get(ctx, "key")
	assert.False(t, ok)
	// The expired entry stays until a sweep removes it.
	assert.Equal(t, 1, c.Len())
}

func TestMemoryFeedCache_SweepEvictsExpired(t *testing.T) {
	clock := newManualClock()
	c := cache.NewMemoryFeedCache(5*time.Minute, time.Hour, clock.Now)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "old", page("v1"))
	clock.Advance(4 * time.Minute)
	c.Set(ctx, "young", page("v2"))

	clock.Advance(2 * time.Minute)
	c.Sweep()

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get(ctx, "young")
	assert.True(t, ok)
}

func TestMemoryFeedCache_SweepKeepsRefreshedEntry(t *testing.T) {
	clock := newManualClock()
	c := cache.NewMemoryFeedCache(5*time.Minute, time.Hour, clock.Now)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "key", page("v1"))
	clock.Advance(4 * time.Minute)
	// Overwrite restarts the TTL; the first heap item must not evict it.
	c.Set(ctx, "key", page("v2"))

	clock.Advance(2 * time.Minute)
	c.Sweep()

	items, ok := c.Get(ctx, "key")
	assert.True(t, ok)
	assert.Equal(t, page("v2"), items)
}

func TestMemoryFeedCache_SetRestartsTTL(t *testing.T) {
	clock := newManualClock()
	c := cache.NewMemoryFeedCache(5*time.Minute, time.Hour, clock.Now)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "key", page("v1"))
	clock.Advance(4 * time.Minute)
	c.Set(ctx, "key", page("v2"))
	clock.Advance(4 * time.Minute)

	items, ok := c.Get(ctx, "key")
	assert.True(t, ok)
	assert.Equal(t, page("v2"), items)
}

func TestMemoryFeedCache_Invalidate(t *testing.T) {
	clock := newManualClock()
	c := cache.NewMemoryFeedCache(5*time.Minute, time.Hour, clock.Now)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "key", page("v1"))
	c.Invalidate(ctx, "key")

	_, ok := c.Get(ctx, "key")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryFeedCache_InvalidateFresh(t *testing.T) {
	clock := newManualClock()
	c := cache.NewMemoryFeedCache(5*time.Minute, time.Hour, clock.Now)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "discovery|viewer-1|initial", page("v1"))
	c.Set(ctx, "discovery|viewer-2|initial", page("v2"))
	c.Set(ctx, "discovery|viewer-1|video-9", page("v3"))
	c.Set(ctx, "following|viewer-1|initial", page("v4"))

	c.InvalidateFresh(ctx, model.FeedModeDiscovery)

	_, ok := c.Get(ctx, "discovery|viewer-1|initial")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "discovery|viewer-2|initial")
	assert.False(t, ok)
	// Deep pages and other modes survive.
	_, ok = c.Get(ctx, "discovery|viewer-1|video-9")
	assert.True(t, ok)
	_, ok = c.Get(ctx, "following|viewer-1|initial")
	assert.True(t, ok)
}

func TestMemoryFeedCache_ConcurrentAccess(t *testing.T) {
	c := cache.NewMemoryFeedCache(5*time.Minute, time.Hour, nil)
	defer c.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	keys := []string{"a", "b", "c", "d"}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := keys[i%len(keys)]
			c.Set(ctx, key, page("v1"))
			c.Get(ctx, key)
			if i%7 == 0 {
				c.Invalidate(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), len(keys))
}

func TestMemoryFeedCache_CancelledContextDoesNotBlock(t *testing.T) {
	c := cache.NewMemoryFeedCache(5*time.Minute, time.Hour, nil)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		c.Set(ctx, "key", page("v1"))
		c.Get(ctx, "key")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cache operation blocked on a cancelled context")
	}
}
