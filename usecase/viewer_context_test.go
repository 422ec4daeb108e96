package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Marc02130/tiktaik-sub000/domain/model"
	"github.com/Marc02130/tiktaik-sub000/usecase"
)

func TestViewerContextResolver_CollectsAllSignals(t *testing.T) {
	store := new(MockVideoStore)
	resolver := usecase.NewViewerContextResolver(store, 100, 50)

	store.On("GetFollowedCreators", mock.Anything, "viewer-1").
		Return([]string{"creator-1", "creator-2"}, nil)
	store.On("GetMostWatched", mock.Anything, "viewer-1", 50).
		Return([]model.VideoItem{
			{ID: "v1", Tags: []string{"cats", "dogs"}},
			{ID: "v2", Tags: []string{"cats"}},
		}, nil)
	store.On("GetWatchHistory", mock.Anything, "viewer-1", 100).
		Return([]model.WatchRecord{
			{VideoID: "v1", CompletionRate: 0.8, WatchTimeSeconds: 42, WatchedAt: scoringNow},
		}, nil)

	vctx := resolver.Resolve(context.Background(), "viewer-1")

	assert.Equal(t, "viewer-1", vctx.ViewerID)
	assert.True(t, vctx.Follows("creator-1"))
	assert.True(t, vctx.Follows("creator-2"))
	assert.Contains(t, vctx.PreferredTags, "cats")
	assert.Contains(t, vctx.PreferredTags, "dogs")
	assert.Equal(t, 0.8, vctx.VideoStats["v1"].CompletionRate)
}

func TestViewerContextResolver_KeepsMostRecentWatchPerVideo(t *testing.T) {
	store := new(MockVideoStore)
	resolver := usecase.NewViewerContextResolver(store, 100, 50)

	store.On("GetFollowedCreators", mock.Anything, "viewer-1").Return([]string{}, nil)
	store.On("GetMostWatched", mock.Anything, "viewer-1", 50).Return([]model.VideoItem{}, nil)
	// History arrives newest first; the later record must not overwrite.
	store.On("GetWatchHistory", mock.Anything, "viewer-1", 100).
		Return([]model.WatchRecord{
			{VideoID: "v1", CompletionRate: 0.9, WatchedAt: scoringNow},
			{VideoID: "v1", CompletionRate: 0.2, WatchedAt: scoringNow.Add(-time.Hour)},
		}, nil)

	vctx := resolver.Resolve(context.Background(), "viewer-1")

	assert.Equal(t, 0.9, vctx.VideoStats["v1"].CompletionRate)
}

func TestViewerContextResolver_DegradesPerSignal(t *testing.T) {
	store := new(MockVideoStore)
	resolver := usecase.NewViewerContextResolver(store, 100, 50)

	store.On("GetFollowedCreators", mock.Anything, "viewer-1").
		Return([]string{}, errors.New("follows collection unavailable"))
	store.On("GetMostWatched", mock.Anything, "viewer-1", 50).
		Return([]model.VideoItem{{ID: "v1", Tags: []string{"cats"}}}, nil)
	store.On("GetWatchHistory", mock.Anything, "viewer-1", 100).
		Return([]model.WatchRecord{}, errors.New("history collection unavailable"))

	vctx := resolver.Resolve(context.Background(), "viewer-1")

	// Failed signals come back empty, the healthy one is still loaded.
	assert.NotNil(t, vctx)
	assert.Empty(t, vctx.FollowedCreators)
	assert.Empty(t, vctx.VideoStats)
	assert.Contains(t, vctx.PreferredTags, "cats")
}
