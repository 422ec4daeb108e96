package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Marc02130/tiktaik-sub000/domain/model"
)

func TestWithCursor_NilCursorKeepsFilter(t *testing.T) {
	filter := bson.D{{Key: "isPrivate", Value: false}}

	assert.Equal(t, filter, withCursor(filter, nil))
}

func TestWithCursor_StrictlyAfterShape(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cursor := &model.VideoItem{ID: "video-42", CreatedAt: at}

	got := withCursor(bson.D{{Key: "isPrivate", Value: false}}, cursor)

	// Strictly-after under the recency order: older than the cursor, or
	// the same instant with a greater id.
	want := bson.D{
		{Key: "isPrivate", Value: false},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "createdAt", Value: bson.D{{Key: "$lt", Value: at}}}},
			bson.D{
				{Key: "createdAt", Value: at},
				{Key: "_id", Value: bson.D{{Key: "$gt", Value: "video-42"}}},
			},
		}},
	}
	assert.Equal(t, want, got)
}

func TestRecencySort_NewestFirstIDTieBreak(t *testing.T) {
	want := bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}

	assert.Equal(t, want, recencySort())
}
