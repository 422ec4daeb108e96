package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Marc02130/tiktaik-sub000/domain/dto"
	"github.com/Marc02130/tiktaik-sub000/domain/model"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/logger"
	"github.com/Marc02130/tiktaik-sub000/usecase"
)

const (
	ErrorInvalidQuery = "Error while parsing feed query"
	ErrorFetchPage    = "Error while fetching feed page"
)

type IFeedHandler interface {
	GetFeed(c *gin.Context)
}

type FeedHandler struct {
	feedUsecase     usecase.IFeedUsecase
	optimizer       *usecase.QueryOptimizer
	defaultPageSize int
	maxPageSize     int
}

func NewFeedHandler(feedUsecase usecase.IFeedUsecase, optimizer *usecase.QueryOptimizer, defaultPageSize, maxPageSize int) IFeedHandler {
	if defaultPageSize <= 0 {
		defaultPageSize = 20
	}
	if maxPageSize <= 0 {
		maxPageSize = 50
	}
	return &FeedHandler{
		feedUsecase:     feedUsecase,
		optimizer:       optimizer,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// GetFeed serves one page of the viewer's feed. The retrieval mode comes
// from the creator_only / following_only flags, pagination from the opaque
// cursor token, and page sizing is adjusted for the reported network.
func (feedHandler *FeedHandler) GetFeed(c *gin.Context) {
	query, err := feedHandler.parseQuery(c)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn(ErrorInvalidQuery)
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}

	items, err := feedHandler.feedUsecase.FetchPage(c.Request.Context(), query)
	if err != nil {
		feedHandler.respondError(c, err)
		return
	}

	res := dto.FeedPageResponse{
		Items:        items,
		PreloadAfter: feedHandler.preloadAfter(len(items)),
	}
	if len(items) > 0 {
		res.Cursor = dto.EncodeCursor(items[len(items)-1])
	}
	c.JSON(http.StatusOK, res)
}

func (feedHandler *FeedHandler) parseQuery(c *gin.Context) (model.FeedQuery, error) {
	var query model.FeedQuery

	limit := feedHandler.defaultPageSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return query, model.NewInvalidQueryError("limit", "must be a positive integer")
		}
		limit = parsed
	}
	if limit > feedHandler.maxPageSize {
		limit = feedHandler.maxPageSize
	}

	cursor, err := dto.DecodeCursor(c.Query("cursor"))
	if err != nil {
		return query, err
	}

	query = model.FeedQuery{
		Limit:  limit,
		Cursor: cursor,
		Config: model.FeedConfiguration{
			ViewerID:      c.GetString("viewer_id"),
			IsCreatorOnly: boolParam(c, "creator_only", "creatorOnly"),
			FollowingOnly: boolParam(c, "following_only", "followingOnly"),
			SelectedTags:  tagsParam(c),
		},
	}

	if model.NetworkQuality(c.Query("network")) == model.NetworkConstrained {
		query = feedHandler.optimizer.AdjustForNetwork(query, model.NetworkConstrained)
	}
	return query, nil
}

// preloadAfter returns the first index of the page at which the client
// should already be requesting the next one.
func (feedHandler *FeedHandler) preloadAfter(totalCount int) int {
	for i := 0; i < totalCount; i++ {
		if feedHandler.optimizer.ShouldPreload(i, totalCount) {
			return i
		}
	}
	return 0
}

func (feedHandler *FeedHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"})
	case model.IsInvalidQuery(err):
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
	case errors.Is(err, model.ErrEmptyResult):
		c.JSON(http.StatusOK, dto.FeedPageResponse{Items: []model.VideoItem{}, Empty: true})
	default:
		logger.GetLogger().WithField("error", err).Error(ErrorFetchPage)
		c.JSON(http.StatusBadGateway, dto.Res{ResponseCode: "502", ResponseMessage: "Upstream store unavailable"})
	}
}

func boolParam(c *gin.Context, names ...string) bool {
	for _, name := range names {
		if raw := c.Query(name); raw != "" {
			value, err := strconv.ParseBool(raw)
			return err == nil && value
		}
	}
	return false
}

func tagsParam(c *gin.Context) []string {
	raw := c.Query("tags")
	if raw == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
