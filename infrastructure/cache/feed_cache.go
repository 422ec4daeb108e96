package cache

import (
	"container/heap"
	"context"
	"strings"
	"time"

	"github.com/Marc02130/tiktaik-sub000/domain/model"
	"github.com/Marc02130/tiktaik-sub000/domain/repository"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/metrics"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/utils"
)

// DefaultTTL is how long a cached page stays visible.
const DefaultTTL = 5 * time.Minute

const defaultSweepInterval = 30 * time.Second

type pageEntry struct {
	items     []model.VideoItem
	createdAt time.Time
}

type expiryItem struct {
	key      string
	expireAt time.Time
}

// expiryHeap orders pending evictions by expiry time.
type expiryHeap []expiryItem

func (h expiryHeap) Len() int            { return len(h) }
func (h expiryHeap) Less(i, j int) bool  { return h[i].expireAt.Before(h[j].expireAt) }
func (h expiryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *expiryHeap) Push(x interface{}) { *h = append(*h, x.(expiryItem)) }
func (h *expiryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// MemoryFeedCache is the in-process result cache. A single goroutine owns
// the entry map and the expiry heap; concurrent callers queue their
// operations on a channel instead of racing on shared state. Expired
// entries read as misses immediately but are only removed by the periodic
// sweep; a sweep re-checks the live entry's age, so a heap item left over
// from a superseded Set never evicts a fresher entry early.
type MemoryFeedCache struct {
	ttl  time.Duration
	now  func() time.Time
	ops  chan func()
	done chan struct{}

	// owned by the run goroutine
	entries  map[string]pageEntry
	expiries expiryHeap
}

// NewMemoryFeedCache starts the cache actor. Non-positive durations fall
// back to a 5 minute TTL and a 30 second sweep; a nil clock uses UTC wall
// time. Call Close to stop the actor.
func NewMemoryFeedCache(ttl, sweepInterval time.Duration, now func() time.Time) *MemoryFeedCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}
	if now == nil {
		now = utils.GetCurrentTime
	}
	c := &MemoryFeedCache{
		ttl:     ttl,
		now:     now,
		ops:     make(chan func()),
		done:    make(chan struct{}),
		entries: make(map[string]pageEntry),
	}
	heap.Init(&c.expiries)
	go c.run(sweepInterval)
	return c
}

func (c *MemoryFeedCache) run(sweepInterval time.Duration) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case op := <-c.ops:
			op()
		case <-ticker.C:
			c.sweep()
		case <-c.done:
			return
		}
	}
}

// do queues op on the owner goroutine and waits for it to run.
func (c *MemoryFeedCache) do(ctx context.Context, op func()) {
	ran := make(chan struct{})
	wrapped := func() {
		op()
		close(ran)
	}
	select {
	case c.ops <- wrapped:
	case <-c.done:
		return
	case <-ctx.Done():
		return
	}
	select {
	case <-ran:
	case <-c.done:
	}
}

// Get returns the cached page for key. An entry past its TTL is treated
// as absent without being removed; the sweep deletes it later.
func (c *MemoryFeedCache) Get(ctx context.Context, key string) ([]model.VideoItem, bool) {
	var items []model.VideoItem
	var ok bool
	c.do(ctx, func() {
		entry, found := c.entries[key]
		if !found || c.now().Sub(entry.createdAt) >= c.ttl {
			return
		}
		items = entry.items
		ok = true
	})
	if ok {
		metrics.CacheLookups.WithLabelValues("memory", "hit").Inc()
	} else {
		metrics.CacheLookups.WithLabelValues("memory", "miss").Inc()
	}
	return items, ok
}

// Set stores the page under key and restarts its TTL. Last write wins
// when two sessions race on the same key.
func (c *MemoryFeedCache) Set(ctx context.Context, key string, items []model.VideoItem) {
	c.do(ctx, func() {
		stored := c.now()
		c.entries[key] = pageEntry{items: items, createdAt: stored}
		heap.Push(&c.expiries, expiryItem{key: key, expireAt: stored.Add(c.ttl)})
	})
}

// Invalidate removes the entry for key if present. Any heap items for the
// key become no-ops.
func (c *MemoryFeedCache) Invalidate(ctx context.Context, key string) {
	c.do(ctx, func() {
		delete(c.entries, key)
	})
}

// InvalidateFresh removes every first-page entry of the given mode.
func (c *MemoryFeedCache) InvalidateFresh(ctx context.Context, mode model.FeedMode) {
	prefix := string(mode) + "|"
	c.do(ctx, func() {
		for key := range c.entries {
			if strings.HasPrefix(key, prefix) && strings.HasSuffix(key, "|initial") {
				delete(c.entries, key)
			}
		}
	})
}

// Len reports the number of stored entries, expired or not.
func (c *MemoryFeedCache) Len() int {
	n := 0
	c.do(context.Background(), func() { n = len(c.entries) })
	return n
}

// Sweep forces an eviction pass. Normally the ticker drives this; tests
// call it directly with an advanced clock.
func (c *MemoryFeedCache) Sweep() {
	c.do(context.Background(), c.sweep)
}

func (c *MemoryFeedCache) sweep() {
	now := c.now()
	for c.expiries.Len() > 0 && !c.expiries[0].expireAt.After(now) {
		item := heap.Pop(&c.expiries).(expiryItem)
		entry, found := c.entries[item.key]
		if !found {
			continue
		}
		// The live entry may be newer than this heap item.
		if now.Sub(entry.createdAt) >= c.ttl {
			delete(c.entries, item.key)
		}
	}
}

// Close stops the actor goroutine. The cache must not be used afterwards.
func (c *MemoryFeedCache) Close() {
	close(c.done)
}

var _ repository.IFeedCache = (*MemoryFeedCache)(nil)
