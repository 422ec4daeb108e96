package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Marc02130/tiktaik-sub000/domain/model"
	"github.com/Marc02130/tiktaik-sub000/domain/repository"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/logger"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/metrics"
)

const redisKeyPrefix = "feed:"

// NewCache connects a redis client and verifies it with a ping.
func NewCache(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// RedisFeedCache is the result cache backed by redis for multi-instance
// deployments, relying on native key TTLs instead of a local sweep. It
// fails open: any redis error logs, reads as a miss, and never reaches
// the fetch path.
type RedisFeedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisFeedCache wraps an already-connected client. A non-positive ttl
// falls back to the default 5 minutes.
func NewRedisFeedCache(client *redis.Client, ttl time.Duration) *RedisFeedCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisFeedCache{client: client, ttl: ttl}
}

func (c *RedisFeedCache) Get(ctx context.Context, key string) ([]model.VideoItem, bool) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.GetLogger().WithField("error", err).Warn("Redis get failed; treating as cache miss")
		}
		metrics.CacheLookups.WithLabelValues("redis", "miss").Inc()
		return nil, false
	}
	var items []model.VideoItem
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis entry not decodable; treating as cache miss")
		metrics.CacheLookups.WithLabelValues("redis", "miss").Inc()
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("redis", "hit").Inc()
	return items, true
}

func (c *RedisFeedCache) Set(ctx context.Context, key string, items []model.VideoItem) {
	raw, err := json.Marshal(items)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Feed page not encodable; skipping cache set")
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis set failed; page not cached")
	}
}

func (c *RedisFeedCache) Invalidate(ctx context.Context, key string) {
	if err := c.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis delete failed")
	}
}

func (c *RedisFeedCache) InvalidateFresh(ctx context.Context, mode model.FeedMode) {
	pattern := redisKeyPrefix + string(mode) + "|*|initial"
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis scan failed during invalidation")
		return
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Redis delete failed during invalidation")
		}
	}
}

var _ repository.IFeedCache = (*RedisFeedCache)(nil)
