package dto

// EventVideoCreated is published by the upload pipeline when a new video
// becomes queryable.
const EventVideoCreated = "video.created"

// VideoEventMessage is the broker payload for content events, identical
// over Pub/Sub and Service Bus.
type VideoEventMessage struct {
	Type      string `json:"type"`
	VideoID   string `json:"video_id"`
	CreatorID string `json:"creator_id"`
}
