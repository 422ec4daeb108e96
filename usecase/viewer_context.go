package usecase

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Marc02130/tiktaik-sub000/domain/model"
	"github.com/Marc02130/tiktaik-sub000/domain/repository"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/logger"
)

// IViewerContextResolver builds the ranking signal bundle for a viewer.
type IViewerContextResolver interface {
	Resolve(ctx context.Context, viewerID string) *model.ViewerContext
}

// ViewerContextResolver loads follow, tag-preference, and watch-history
// signals concurrently. Any sub-fetch failure degrades that signal to its
// empty value; resolution never blocks feed delivery.
type ViewerContextResolver struct {
	store       repository.IVideoStore
	historySize int
	tagSample   int
}

// NewViewerContextResolver creates a resolver. historySize bounds the
// watch-history map, tagSample bounds the most-watched sample used to
// derive preferred tags; non-positive values fall back to 100 and 50.
func NewViewerContextResolver(store repository.IVideoStore, historySize, tagSample int) IViewerContextResolver {
	if historySize <= 0 {
		historySize = 100
	}
	if tagSample <= 0 {
		tagSample = 50
	}
	return &ViewerContextResolver{store: store, historySize: historySize, tagSample: tagSample}
}

// Resolve fetches the three signal sets concurrently and returns whatever
// it could load. It has no side effects on the data store.
func (r *ViewerContextResolver) Resolve(ctx context.Context, viewerID string) *model.ViewerContext {
	vctx := model.NewViewerContext(viewerID)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		creators, err := r.store.GetFollowedCreators(gctx, viewerID)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Followed-creator fetch failed; scoring without follow signal")
			return nil
		}
		for _, id := range creators {
			vctx.FollowedCreators[id] = struct{}{}
		}
		return nil
	})

	g.Go(func() error {
		watched, err := r.store.GetMostWatched(gctx, viewerID, r.tagSample)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Most-watched fetch failed; scoring without tag preferences")
			return nil
		}
		for _, item := range watched {
			for _, tag := range item.Tags {
				vctx.PreferredTags[tag] = struct{}{}
			}
		}
		return nil
	})

	g.Go(func() error {
		records, err := r.store.GetWatchHistory(gctx, viewerID, r.historySize)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Watch-history fetch failed; scoring without watch stats")
			return nil
		}
		// Records arrive newest first; keep the most recent per video.
		for _, rec := range records {
			if _, seen := vctx.VideoStats[rec.VideoID]; seen {
				continue
			}
			vctx.VideoStats[rec.VideoID] = model.VideoStats{
				CompletionRate:   rec.CompletionRate,
				WatchTimeSeconds: rec.WatchTimeSeconds,
				LastWatchedAt:    rec.WatchedAt,
			}
		}
		return nil
	})

	// Sub-fetch errors are swallowed above; Wait only reflects ctx state.
	_ = g.Wait()
	return vctx
}
