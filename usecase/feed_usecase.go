package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Marc02130/tiktaik-sub000/domain/model"
	"github.com/Marc02130/tiktaik-sub000/domain/repository"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/logger"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/metrics"
)

// IFeedUsecase is the feed-page API exposed to the session layer.
type IFeedUsecase interface {
	FetchPage(ctx context.Context, query model.FeedQuery) ([]model.VideoItem, error)
}

// FeedOptions tunes the assembler. Zero values fall back to an over-fetch
// factor of 3 capped at 150 candidates.
type FeedOptions struct {
	OverfetchFactor int
	OverfetchCap    int
}

// FeedUsecase assembles feed pages: it selects items per the query's mode,
// ranks discovery candidates, trims to the requested size, and keeps a
// short-lived page cache in front of the store.
type FeedUsecase struct {
	store    repository.IVideoStore
	cache    repository.IFeedCache
	resolver IViewerContextResolver
	scorer   *Scorer
	opts     FeedOptions
}

// NewFeedUsecase creates the assembler. All collaborators are required
// except cache, which may be nil to disable caching (tests).
func NewFeedUsecase(
	store repository.IVideoStore,
	cache repository.IFeedCache,
	resolver IViewerContextResolver,
	scorer *Scorer,
	opts FeedOptions,
) IFeedUsecase {
	if opts.OverfetchFactor <= 0 {
		opts.OverfetchFactor = 3
	}
	if opts.OverfetchCap <= 0 {
		opts.OverfetchCap = 150
	}
	return &FeedUsecase{store: store, cache: cache, resolver: resolver, scorer: scorer, opts: opts}
}

// CacheKey fingerprints a query for the result cache: mode, viewer, and
// cursor identity. Tag filters are deliberately not part of the key, so
// two queries differing only in selected tags share an entry; the entry
// TTL bounds how long the coarser key can serve a mismatched tag set.
func CacheKey(query model.FeedQuery) string {
	cursorID := "initial"
	if query.Cursor != nil {
		cursorID = query.Cursor.ID
	}
	return strings.Join([]string{string(query.Config.Mode()), query.Config.ViewerID, cursorID}, "|")
}

// FetchPage returns one ordered page of at most query.Limit items.
//
// Discovery pages re-rank a fresh candidate set on every request, so
// cursoring across pages while engagement counters move can duplicate or
// skip items. That is a property of stateless re-ranking, accepted here;
// there is no pinned per-session ranking snapshot.
func (u *FeedUsecase) FetchPage(ctx context.Context, query model.FeedQuery) ([]model.VideoItem, error) {
	mode := string(query.Config.Mode())

	if query.Config.ViewerID == "" {
		metrics.FeedRequests.WithLabelValues(mode, "error").Inc()
		return nil, model.ErrNotAuthenticated
	}
	if query.Limit <= 0 {
		metrics.FeedRequests.WithLabelValues(mode, "error").Inc()
		return nil, model.NewInvalidQueryError("limit", "must be a positive integer")
	}

	key := CacheKey(query)
	if u.cache != nil {
		if items, ok := u.cache.Get(ctx, key); ok {
			metrics.FeedRequests.WithLabelValues(mode, "hit").Inc()
			return trimPage(items, query.Limit), nil
		}
	}

	items, err := u.assemble(ctx, query)
	if err != nil {
		metrics.FeedRequests.WithLabelValues(mode, "error").Inc()
		return nil, err
	}
	if len(items) == 0 {
		metrics.FeedRequests.WithLabelValues(mode, "empty").Inc()
		return nil, model.ErrEmptyResult
	}

	// A cancelled request must not seed the cache.
	if u.cache != nil && ctx.Err() == nil {
		u.cache.Set(ctx, key, items)
	}
	metrics.FeedRequests.WithLabelValues(mode, "miss").Inc()
	return trimPage(items, query.Limit), nil
}

func (u *FeedUsecase) assemble(ctx context.Context, query model.FeedQuery) ([]model.VideoItem, error) {
	fetchLimit := query.EffectiveFetchLimit()

	switch query.Config.Mode() {
	case model.FeedModeCreator:
		return u.store.QueryByCreator(ctx, query.Config.ViewerID, fetchLimit, query.Cursor)

	case model.FeedModeFollowing:
		creators, err := u.store.GetFollowedCreators(ctx, query.Config.ViewerID)
		if err != nil {
			return nil, err
		}
		if len(creators) == 0 {
			return nil, nil
		}
		return u.store.QueryByCreators(ctx, creators, fetchLimit, query.Cursor)

	default:
		return u.assembleDiscovery(ctx, query, fetchLimit)
	}
}

// assembleDiscovery over-fetches a recency-ordered candidate superset,
// narrowed to the selected tags when the viewer chose any, ranks it
// against the viewer context, and keeps the top of the ranking.
func (u *FeedUsecase) assembleDiscovery(ctx context.Context, query model.FeedQuery, fetchLimit int) ([]model.VideoItem, error) {
	vctx := u.resolver.Resolve(ctx, query.Config.ViewerID)

	candidateLimit := fetchLimit * u.opts.OverfetchFactor
	if candidateLimit > u.opts.OverfetchCap {
		candidateLimit = u.opts.OverfetchCap
	}

	candidates, err := u.store.QueryPublic(ctx, candidateLimit, query.Cursor, query.Config.SelectedTags)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	started := time.Now()
	scores := make(map[string]float64, len(candidates))
	for _, item := range candidates {
		scores[item.ID] = u.scorer.Score(item, vctx)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if scores[a.ID] != scores[b.ID] {
			return scores[a.ID] > scores[b.ID]
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	metrics.RankingDuration.Observe(time.Since(started).Seconds())

	if len(candidates) > fetchLimit {
		candidates = candidates[:fetchLimit]
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"viewer":     query.Config.ViewerID,
		"candidates": len(scores),
		"returned":   len(candidates),
	}).Debug("Discovery page ranked")
	return candidates, nil
}

func trimPage(items []model.VideoItem, limit int) []model.VideoItem {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
