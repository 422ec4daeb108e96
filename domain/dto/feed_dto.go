package dto

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/Marc02130/tiktaik-sub000/domain/model"
)

// Res is the generic error envelope returned by middleware.
type Res struct {
	ResponseCode    string `json:"response_code"`
	ResponseMessage string `json:"response_message"`
}

// FeedPageRequest represents the query parameters of a feed page request.
type FeedPageRequest struct {
	Limit         int      `json:"limit,omitempty"`
	Cursor        string   `json:"cursor,omitempty"`
	CreatorOnly   bool     `json:"creator_only,omitempty"`
	FollowingOnly bool     `json:"following_only,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Network       string   `json:"network,omitempty"`
}

// FeedPageResponse is one page of feed items. Cursor continues pagination;
// it is empty when the page was empty. PreloadAfter is the item index from
// which the client should request the next page ahead of the scroll.
type FeedPageResponse struct {
	Items        []model.VideoItem `json:"items"`
	Cursor       string            `json:"cursor,omitempty"`
	Empty        bool              `json:"empty,omitempty"`
	PreloadAfter int               `json:"preload_after"`
}

// feedCursor is the wire form of a pagination cursor: the identity and
// sort position of the last item on the previous page.
type feedCursor struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// EncodeCursor serializes the last item of a page into an opaque token.
func EncodeCursor(item model.VideoItem) string {
	b, _ := json.Marshal(feedCursor{ID: item.ID, CreatedAt: item.CreatedAt})
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor parses an opaque cursor token back into the minimal item
// the assembler paginates against. Empty input means the first page.
func DecodeCursor(token string) (*model.VideoItem, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, model.NewInvalidQueryError("cursor", "not a valid cursor token")
	}
	var c feedCursor
	if err := json.Unmarshal(raw, &c); err != nil || c.ID == "" {
		return nil, model.NewInvalidQueryError("cursor", "not a valid cursor token")
	}
	return &model.VideoItem{ID: c.ID, CreatedAt: c.CreatedAt}, nil
}
