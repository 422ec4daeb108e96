package usecase

import (
	"context"

	"github.com/Marc02130/tiktaik-sub000/domain/model"
	"github.com/Marc02130/tiktaik-sub000/domain/repository"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/logger"
)

// IRefreshBroadcaster pushes a refresh hint to connected viewers after an
// invalidation. Implemented by the realtime SSE hub.
type IRefreshBroadcaster interface {
	BroadcastRefresh(videoID, creatorID string)
}

// FeedInvalidator reacts to content events from the upload pipeline by
// dropping the cache entries the new content should appear in.
type FeedInvalidator struct {
	cache repository.IFeedCache
	hub   IRefreshBroadcaster
}

// NewFeedInvalidator creates an invalidator; hub may be nil.
func NewFeedInvalidator(cache repository.IFeedCache, hub IRefreshBroadcaster) *FeedInvalidator {
	return &FeedInvalidator{cache: cache, hub: hub}
}

// HandleVideoCreated invalidates the creator's own first page and all
// first-page following/discovery entries, then notifies connected viewers.
// Deeper pages keep serving until their TTL expires; a new upload only
// belongs on page one of a recency-ordered feed.
func (f *FeedInvalidator) HandleVideoCreated(ctx context.Context, videoID, creatorID string) {
	if f.cache != nil {
		f.cache.Invalidate(ctx, CacheKey(model.FeedQuery{
			Config: model.FeedConfiguration{ViewerID: creatorID, IsCreatorOnly: true},
		}))
		f.cache.InvalidateFresh(ctx, model.FeedModeFollowing)
		f.cache.InvalidateFresh(ctx, model.FeedModeDiscovery)
	}
	if f.hub != nil {
		f.hub.BroadcastRefresh(videoID, creatorID)
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"video":   videoID,
		"creator": creatorID,
	}).Info("Feed cache invalidated for new video")
}
