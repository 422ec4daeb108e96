package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// RefreshEvent is the SSE payload telling a client its first feed page is
// stale and worth re-pulling.
type RefreshEvent struct {
	Type      string `json:"type"`
	VideoID   string `json:"video_id"`
	CreatorID string `json:"creator_id"`
}

// Hub maintains per-viewer subscribers listening for feed refresh events.
type Hub struct {
	mu      sync.RWMutex
	viewers map[string]map[chan RefreshEvent]struct{}
}

func NewFeedHub() *Hub {
	return &Hub{viewers: make(map[string]map[chan RefreshEvent]struct{})}
}

// Serve registers an SSE stream for the authenticated viewer (viewer_id
// set by middleware).
func (h *Hub) Serve(c *gin.Context) {
	viewerID := c.GetString("viewer_id")
	if viewerID == "" {
		c.Status(http.StatusUnauthorized)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	ch := make(chan RefreshEvent, 8)
	h.addSubscriber(viewerID, ch)
	defer h.removeSubscriber(viewerID, ch)

	// Initial comment to keep connection open
	c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case evt := <-ch:
			data, _ := json.Marshal(evt)
			_, _ = c.Writer.Write([]byte("event: feed_refresh\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (h *Hub) addSubscriber(viewerID string, ch chan RefreshEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.viewers[viewerID] == nil {
		h.viewers[viewerID] = make(map[chan RefreshEvent]struct{})
	}
	h.viewers[viewerID][ch] = struct{}{}
}

func (h *Hub) removeSubscriber(viewerID string, ch chan RefreshEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.viewers[viewerID]; subs != nil {
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.viewers, viewerID)
		}
	}
}

// BroadcastRefresh notifies every connected viewer that new content is
// available. Slow subscribers are skipped rather than blocked on.
func (h *Hub) BroadcastRefresh(videoID, creatorID string) {
	evt := RefreshEvent{Type: "feed_refresh", VideoID: videoID, CreatorID: creatorID}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, subs := range h.viewers {
		for ch := range subs {
			select {
			case ch <- evt:
			default:
			}
		}
	}
}
