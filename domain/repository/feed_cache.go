package repository

import (
	"context"

	"github.com/Marc02130/tiktaik-sub000/domain/model"
)

// IFeedCache is the short-lived page cache in front of the data store.
// Implementations never return errors: a cache-layer problem reads as a
// miss and must not block the primary fetch path.
type IFeedCache interface {
	// Get returns the cached page for key, or ok=false on a miss. An
	// entry past its TTL reads as a miss even before it is swept.
	Get(ctx context.Context, key string) ([]model.VideoItem, bool)

	// Set stores the page under key, restarting its TTL.
	Set(ctx context.Context, key string, items []model.VideoItem)

	// Invalidate removes the entry for key if present.
	Invalidate(ctx context.Context, key string)

	// InvalidateFresh removes all first-page entries of the given mode,
	// across viewers, so newly published content surfaces promptly.
	InvalidateFresh(ctx context.Context, mode model.FeedMode)
}
