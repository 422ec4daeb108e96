package configuration

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestConfiguration tests the configuration package basic functionality
func TestConfiguration(t *testing.T) {
	t.Run("configuration_struct_exists", func(t *testing.T) {
		require.NotNil(t, &C, "Configuration should not be nil")
		require.NotNil(t, &C.App, "App configuration should exist")
		require.NotNil(t, &C.Database.Mongo, "Mongo configuration should exist")
	})

	t.Run("feed_defaults_applied", func(t *testing.T) {
		cfg := Config{}
		initFeed(&cfg)

		require.Equal(t, "memory", cfg.Feed.CacheBackend)
		require.Equal(t, 300, cfg.Feed.CacheTTLSeconds)
		require.Equal(t, 3, cfg.Feed.OverfetchFactor)
		require.Equal(t, 150, cfg.Feed.OverfetchCap)
		require.Equal(t, 100, cfg.Feed.WatchHistorySize)
		require.Equal(t, 5, cfg.Feed.ConstrainedPageSize)
		require.Equal(t, 5, cfg.Feed.PrefetchLookahead)
		require.Equal(t, 2, cfg.Feed.PreloadThreshold)
		require.Equal(t, 20, cfg.Feed.DefaultPageSize)
		require.Equal(t, 50, cfg.Feed.MaxPageSize)
	})

	t.Run("feed_config_values_kept", func(t *testing.T) {
		cfg := Config{}
		cfg.Feed.CacheTTLSeconds = 60
		cfg.Feed.CacheBackend = "redis"
		initFeed(&cfg)

		require.Equal(t, 60, cfg.Feed.CacheTTLSeconds)
		require.Equal(t, "redis", cfg.Feed.CacheBackend)
	})

	t.Run("app_defaults_applied", func(t *testing.T) {
		cfg := Config{}
		initApp(&cfg)
		require.Equal(t, 10001, cfg.App.Port)
	})
}
