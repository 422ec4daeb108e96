package model

import "time"

// VideoStats summarizes a viewer's watch behaviour for one video.
// CompletionRate is clamped to [0,1] by the store.
type VideoStats struct {
	CompletionRate   float64   `json:"completion_rate"    bson:"completionRate"`
	WatchTimeSeconds float64   `json:"watch_time_seconds" bson:"watchTimeSeconds"`
	LastWatchedAt    time.Time `json:"last_watched_at"    bson:"lastWatchedAt"`
}

// WatchRecord is one view event as stored in watch history.
type WatchRecord struct {
	ID               string    `json:"id"                 bson:"_id"`
	ViewerID         string    `json:"viewer_id"          bson:"viewerId"`
	VideoID          string    `json:"video_id"           bson:"videoId"`
	CompletionRate   float64   `json:"completion_rate"    bson:"completionRate"`
	WatchTimeSeconds float64   `json:"watch_time_seconds" bson:"watchTimeSeconds"`
	WatchedAt        time.Time `json:"watched_at"         bson:"watchedAt"`
}

// ViewerContext bundles the per-request ranking signals for one viewer.
// It is built fresh for each ranked request and never persisted here; a
// missing signal leaves its field empty and only reduces scoring precision.
type ViewerContext struct {
	ViewerID         string
	FollowedCreators map[string]struct{}
	PreferredTags    map[string]struct{}
	VideoStats       map[string]VideoStats
}

// NewViewerContext returns an empty context for the viewer; all signal
// fields are allocated so lookups are safe on a degraded resolution.
func NewViewerContext(viewerID string) *ViewerContext {
	return &ViewerContext{
		ViewerID:         viewerID,
		FollowedCreators: make(map[string]struct{}),
		PreferredTags:    make(map[string]struct{}),
		VideoStats:       make(map[string]VideoStats),
	}
}

// Follows reports whether the viewer follows the given creator.
func (v *ViewerContext) Follows(creatorID string) bool {
	_, ok := v.FollowedCreators[creatorID]
	return ok
}
