package usecase

import "github.com/Marc02130/tiktaik-sub000/domain/model"

// QueryOptimizer adapts page sizing to network conditions and tells the
// caller when to prefetch the next page. Pure transformations only.
type QueryOptimizer struct {
	constrainedPageSize int
	prefetchLookahead   int
	preloadThreshold    int
}

// NewQueryOptimizer creates an optimizer; non-positive settings fall back
// to a constrained page of 5, a +5 lookahead, and a preload threshold of 2.
func NewQueryOptimizer(constrainedPageSize, prefetchLookahead, preloadThreshold int) *QueryOptimizer {
	if constrainedPageSize <= 0 {
		constrainedPageSize = 5
	}
	if prefetchLookahead <= 0 {
		prefetchLookahead = 5
	}
	if preloadThreshold <= 0 {
		preloadThreshold = 2
	}
	return &QueryOptimizer{
		constrainedPageSize: constrainedPageSize,
		prefetchLookahead:   prefetchLookahead,
		preloadThreshold:    preloadThreshold,
	}
}

// AdjustForNetwork returns the query tuned for the reported network. On a
// constrained network the page shrinks while the store fetch widens by a
// fixed lookahead, so the follow-up page is already warm in the cache.
func (o *QueryOptimizer) AdjustForNetwork(query model.FeedQuery, quality model.NetworkQuality) model.FeedQuery {
	if quality != model.NetworkConstrained {
		return query
	}
	if query.Limit > o.constrainedPageSize {
		query.Limit = o.constrainedPageSize
	}
	query.FetchLimit = query.Limit + o.prefetchLookahead
	return query
}

// ShouldPreload reports whether the caller, currently at currentIndex of a
// totalCount-item page, is close enough to the end to request the next
// page before the scroll visibly stalls.
func (o *QueryOptimizer) ShouldPreload(currentIndex, totalCount int) bool {
	if totalCount <= 0 || currentIndex < 0 {
		return false
	}
	return currentIndex >= totalCount-1-o.preloadThreshold
}
