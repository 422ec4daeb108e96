package usecase

import (
	"math"
	"time"

	"github.com/Marc02130/tiktaik-sub000/domain/model"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/utils"
)

// Relevance weights. The engagement mix dampens raw counters with log10 so
// a viral counter cannot dominate; shares weigh most, views least.
const (
	recencyWindowHours  = 48.0
	recencyMaxBoost     = 2.0
	followBoost         = 1.5
	tagMatchBoost       = 1.2
	completionMaxBoost  = 0.3
	watchTimeCapBoost   = 1.2
	watchTimeFullBoost  = 300.0 // seconds of watch time for the full boost
	engagementDampening = 10.0
)

// Scorer computes the relevance of a video item for a viewer. It is pure:
// the same item, context, and clock always produce the same score.
type Scorer struct {
	now func() time.Time
}

// NewScorer creates a Scorer. A nil clock defaults to UTC wall time.
func NewScorer(now func() time.Time) *Scorer {
	if now == nil {
		now = utils.GetCurrentTime
	}
	return &Scorer{now: now}
}

// Score maps an item and viewer context to a non-negative relevance score,
// higher meaning more relevant. The model is multiplicative: base 1.0
// times recency, follow, tag-match, watch-history, and engagement factors.
func (s *Scorer) Score(item model.VideoItem, vctx *model.ViewerContext) float64 {
	score := 1.0

	// Linear decay from 2.0x at upload time to 0 at 48 hours.
	hours := s.now().Sub(item.CreatedAt).Hours()
	score *= math.Max(0, recencyMaxBoost-hours/(recencyWindowHours/recencyMaxBoost))

	if vctx == nil {
		return score * s.engagementFactor(item.Engagement)
	}

	if vctx.Follows(item.CreatorID) {
		score *= followBoost
	}

	// Each matching preferred tag compounds a 20% boost.
	matches := 0
	for _, tag := range item.Tags {
		if _, ok := vctx.PreferredTags[tag]; ok {
			matches++
		}
	}
	if matches > 0 {
		score *= math.Pow(tagMatchBoost, float64(matches))
	}

	if stats, ok := vctx.VideoStats[item.ID]; ok {
		score *= 1 + completionMaxBoost*stats.CompletionRate
		score *= math.Min(watchTimeCapBoost, 1+stats.WatchTimeSeconds/watchTimeFullBoost)
	}

	return score * s.engagementFactor(item.Engagement)
}

func (s *Scorer) engagementFactor(e model.Engagement) float64 {
	weighted := math.Log10(float64(e.Views)+1) +
		2*math.Log10(float64(e.Likes)+1) +
		1.5*math.Log10(float64(e.CommentCount)+1) +
		3*math.Log10(float64(e.Shares)+1)
	return 1 + weighted/engagementDampening
}
