package model

import "time"

// FeedMode identifies which retrieval strategy a feed request uses.
type FeedMode string

const (
	FeedModeCreator   FeedMode = "creator"
	FeedModeFollowing FeedMode = "following"
	FeedModeDiscovery FeedMode = "discovery"
)

// NetworkQuality is the caller-reported network condition used by the
// adaptive query optimizer.
type NetworkQuality string

const (
	NetworkNormal      NetworkQuality = "normal"
	NetworkConstrained NetworkQuality = "constrained"
)

// Engagement holds the counters recorded against a video at snapshot time.
type Engagement struct {
	Views        int64 `json:"views"         bson:"views"`
	Likes        int64 `json:"likes"         bson:"likes"`
	Shares       int64 `json:"shares"        bson:"shares"`
	CommentCount int64 `json:"comment_count" bson:"commentCount"`
}

// VideoItem is an immutable snapshot of a video at query time. The engine
// only reads and ranks copies; it never writes one back.
type VideoItem struct {
	ID         string     `json:"id"         bson:"_id"`
	CreatorID  string     `json:"creator_id" bson:"creatorId"`
	CreatedAt  time.Time  `json:"created_at" bson:"createdAt"`
	Tags       []string   `json:"tags"       bson:"tags"`
	IsPrivate  bool       `json:"is_private" bson:"isPrivate"`
	Engagement Engagement `json:"engagement" bson:"engagement"`
}

// FeedConfiguration carries the viewer-supplied filter intent for one
// request. When both mode flags are set, creator-only wins.
type FeedConfiguration struct {
	ViewerID      string   `json:"viewer_id"`
	IsCreatorOnly bool     `json:"is_creator_only"`
	FollowingOnly bool     `json:"following_only"`
	SelectedTags  []string `json:"selected_tags,omitempty"`
}

// Mode resolves the mutually exclusive retrieval mode, creator-only taking
// precedence over following-only.
func (c FeedConfiguration) Mode() FeedMode {
	switch {
	case c.IsCreatorOnly:
		return FeedModeCreator
	case c.FollowingOnly:
		return FeedModeFollowing
	default:
		return FeedModeDiscovery
	}
}

// FeedQuery is a single page request. Cursor is the last item of the
// previous page, nil for the first page. FetchLimit is the size actually
// requested from the store; the optimizer widens it beyond Limit so the
// following page is already warm in the cache.
type FeedQuery struct {
	Limit      int               `json:"limit"`
	FetchLimit int               `json:"fetch_limit,omitempty"`
	Cursor     *VideoItem        `json:"cursor,omitempty"`
	Config     FeedConfiguration `json:"config"`
}

// EffectiveFetchLimit returns FetchLimit when set, otherwise Limit.
func (q FeedQuery) EffectiveFetchLimit() int {
	if q.FetchLimit > q.Limit {
		return q.FetchLimit
	}
	return q.Limit
}
