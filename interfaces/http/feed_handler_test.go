package http_test

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Marc02130/tiktaik-sub000/domain/dto"
	"github.com/Marc02130/tiktaik-sub000/domain/model"
	httpHandler "github.com/Marc02130/tiktaik-sub000/interfaces/http"
	"github.com/Marc02130/tiktaik-sub000/usecase"
)

type MockFeedUsecase struct {
	mock.Mock
}

func (m *MockFeedUsecase) FetchPage(ctx context.Context, query model.FeedQuery) ([]model.VideoItem, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VideoItem), args.Error(1)
}

func newFeedRouter(feedUsecase usecase.IFeedUsecase, viewerID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := httpHandler.NewFeedHandler(feedUsecase, usecase.NewQueryOptimizer(5, 5, 2), 20, 50)
	router := gin.New()
	router.GET("/api/feed", func(c *gin.Context) {
		if viewerID != "" {
			c.Set("viewer_id", viewerID)
		}
		handler.GetFeed(c)
	})
	return router
}

func serveFeed(t *testing.T, router *gin.Engine, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(stdhttp.MethodGet, target, nil)
	router.ServeHTTP(rec, req)
	return rec
}

func feedItems(n int) []model.VideoItem {
	items := make([]model.VideoItem, 0, n)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		items = append(items, model.VideoItem{
			ID:        string(rune('a' + i)),
			CreatorID: "creator-1",
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}
	return items
}

func TestFeedHandler_ServesPage(t *testing.T) {
	feedUsecase := new(MockFeedUsecase)
	router := newFeedRouter(feedUsecase, "viewer-1")

	items := feedItems(3)
	feedUsecase.On("FetchPage", mock.Anything, mock.MatchedBy(func(q model.FeedQuery) bool {
		return q.Limit == 20 && q.Config.ViewerID == "viewer-1" && q.Config.Mode() == model.FeedModeDiscovery
	})).Return(items, nil)

	rec := serveFeed(t, router, "/api/feed")

	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	var res dto.FeedPageResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Items, 3)
	assert.False(t, res.Empty)

	// The cursor continues from the last item of the page.
	decoded, err := dto.DecodeCursor(res.Cursor)
	assert.NoError(t, err)
	assert.Equal(t, items[2].ID, decoded.ID)
	assert.Equal(t, 0, res.PreloadAfter)
}

func TestFeedHandler_ModeFlags(t *testing.T) {
	tests := []struct {
		name   string
		target string
		mode   model.FeedMode
	}{
		{"default is discovery", "/api/feed", model.FeedModeDiscovery},
		{"creator flag", "/api/feed?creator_only=true", model.FeedModeCreator},
		{"following flag", "/api/feed?following_only=true", model.FeedModeFollowing},
		{"creator wins over following", "/api/feed?creator_only=true&following_only=true", model.FeedModeCreator},
		{"camel case accepted", "/api/feed?creatorOnly=true", model.FeedModeCreator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feedUsecase := new(MockFeedUsecase)
			router := newFeedRouter(feedUsecase, "viewer-1")
			feedUsecase.On("FetchPage", mock.Anything, mock.MatchedBy(func(q model.FeedQuery) bool {
				return q.Config.Mode() == tt.mode
			})).Return(feedItems(1), nil)

			rec := serveFeed(t, router, tt.target)

			assert.Equal(t, stdhttp.StatusOK, rec.Code)
			feedUsecase.AssertExpectations(t)
		})
	}
}

func TestFeedHandler_ConstrainedNetworkShrinksPage(t *testing.T) {
	feedUsecase := new(MockFeedUsecase)
	router := newFeedRouter(feedUsecase, "viewer-1")

	feedUsecase.On("FetchPage", mock.Anything, mock.MatchedBy(func(q model.FeedQuery) bool {
		return q.Limit == 5 && q.FetchLimit == 10
	})).Return(feedItems(5), nil)

	rec := serveFeed(t, router, "/api/feed?limit=20&network=constrained")

	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	feedUsecase.AssertExpectations(t)
}

func TestFeedHandler_LimitHandling(t *testing.T) {
	t.Run("oversized limit is clamped", func(t *testing.T) {
		feedUsecase := new(MockFeedUsecase)
		router := newFeedRouter(feedUsecase, "viewer-1")
		feedUsecase.On("FetchPage", mock.Anything, mock.MatchedBy(func(q model.FeedQuery) bool {
			return q.Limit == 50
		})).Return(feedItems(2), nil)

		rec := serveFeed(t, router, "/api/feed?limit=500")

		assert.Equal(t, stdhttp.StatusOK, rec.Code)
		feedUsecase.AssertExpectations(t)
	})

	t.Run("malformed limit is rejected", func(t *testing.T) {
		feedUsecase := new(MockFeedUsecase)
		router := newFeedRouter(feedUsecase, "viewer-1")

		rec := serveFeed(t, router, "/api/feed?limit=banana")

		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		feedUsecase.AssertNotCalled(t, "FetchPage", mock.Anything, mock.Anything)
	})
}

func TestFeedHandler_BadCursorRejected(t *testing.T) {
	feedUsecase := new(MockFeedUsecase)
	router := newFeedRouter(feedUsecase, "viewer-1")

	rec := serveFeed(t, router, "/api/feed?cursor=%21%21garbage")

	assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
	feedUsecase.AssertNotCalled(t, "FetchPage", mock.Anything, mock.Anything)
}

func TestFeedHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"unauthenticated", model.ErrNotAuthenticated, stdhttp.StatusUnauthorized},
		{"invalid query", model.NewInvalidQueryError("limit", "bad"), stdhttp.StatusBadRequest},
		{"store failure", errors.New("mongo timeout"), stdhttp.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feedUsecase := new(MockFeedUsecase)
			router := newFeedRouter(feedUsecase, "viewer-1")
			feedUsecase.On("FetchPage", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := serveFeed(t, router, "/api/feed")

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestFeedHandler_EmptyResultIsNotAnError(t *testing.T) {
	feedUsecase := new(MockFeedUsecase)
	router := newFeedRouter(feedUsecase, "viewer-1")
	feedUsecase.On("FetchPage", mock.Anything, mock.Anything).Return(nil, model.ErrEmptyResult)

	rec := serveFeed(t, router, "/api/feed")

	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	var res dto.FeedPageResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Empty)
	assert.Empty(t, res.Items)
	assert.Empty(t, res.Cursor)
}

func TestFeedHandler_TagsParsed(t *testing.T) {
	feedUsecase := new(MockFeedUsecase)
	router := newFeedRouter(feedUsecase, "viewer-1")

	feedUsecase.On("FetchPage", mock.Anything, mock.MatchedBy(func(q model.FeedQuery) bool {
		return len(q.Config.SelectedTags) == 2 &&
			q.Config.SelectedTags[0] == "cats" &&
			q.Config.SelectedTags[1] == "dogs"
	})).Return(feedItems(1), nil)

	rec := serveFeed(t, router, "/api/feed?tags=cats,%20dogs,")

	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	feedUsecase.AssertExpectations(t)
}
