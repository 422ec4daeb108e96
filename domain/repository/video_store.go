package repository

import (
	"context"

	"github.com/Marc02130/tiktaik-sub000/domain/model"
)

// IVideoStore defines the query capabilities the engine consumes from the
// video/user/follow data store. All item queries return results ordered by
// createdAt descending (id ascending within equal timestamps) and honor
// cursor continuation: only items strictly after the cursor are returned.
type IVideoStore interface {
	// QueryByCreator returns the creator's own items, private included.
	QueryByCreator(ctx context.Context, creatorID string, limit int, cursor *model.VideoItem) ([]model.VideoItem, error)

	// QueryByCreators returns public items authored by any of the given
	// creators. An empty creator set yields an empty result.
	QueryByCreators(ctx context.Context, creatorIDs []string, limit int, cursor *model.VideoItem) ([]model.VideoItem, error)

	// QueryPublic returns public items across all creators by recency.
	// A non-empty tags set narrows the result to items carrying at least
	// one of the given tags.
	QueryPublic(ctx context.Context, limit int, cursor *model.VideoItem, tags []string) ([]model.VideoItem, error)

	// GetFollowedCreators returns the ids of creators the viewer follows.
	GetFollowedCreators(ctx context.Context, viewerID string) ([]string, error)

	// GetWatchHistory returns the viewer's most recent view records,
	// newest first, at most limit entries.
	GetWatchHistory(ctx context.Context, viewerID string, limit int) ([]model.WatchRecord, error)

	// GetMostWatched returns the items the viewer has watched the most,
	// bounded to limit, for preferred-tag derivation.
	GetMostWatched(ctx context.Context, viewerID string, limit int) ([]model.VideoItem, error)
}
