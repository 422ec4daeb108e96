package persistence

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Marc02130/tiktaik-sub000/domain/model"
	"github.com/Marc02130/tiktaik-sub000/domain/repository"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/logger"
)

const (
	videosCollection       = "videos"
	followsCollection      = "follows"
	watchHistoryCollection = "watch_history"
)

// VideoStore serves the engine's read queries from the mongo document
// store. It holds no state beyond the client and performs no writes.
// Driver errors propagate to callers untouched.
type VideoStore struct {
	client *mongo.Client
	dbName string
}

// NewVideoStore creates a VideoStore against the named database.
func NewVideoStore(client *mongo.Client, dbName string) repository.IVideoStore {
	return &VideoStore{client: client, dbName: dbName}
}

func (s *VideoStore) collection(name string) *mongo.Collection {
	return s.client.Database(s.dbName).Collection(name)
}

// recencySort orders newest first, id ascending within equal timestamps,
// matching the pagination tie-break.
func recencySort() bson.D {
	return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
}

// withCursor narrows filter to items strictly after cursor under the
// recency order.
func withCursor(filter bson.D, cursor *model.VideoItem) bson.D {
	if cursor == nil {
		return filter
	}
	return append(filter, bson.E{Key: "$or", Value: bson.A{
		bson.D{{Key: "createdAt", Value: bson.D{{Key: "$lt", Value: cursor.CreatedAt}}}},
		bson.D{
			{Key: "createdAt", Value: cursor.CreatedAt},
			{Key: "_id", Value: bson.D{{Key: "$gt", Value: cursor.ID}}},
		},
	}})
}

func (s *VideoStore) findVideos(ctx context.Context, filter bson.D, limit int) ([]model.VideoItem, error) {
	opts := options.Find().SetSort(recencySort()).SetLimit(int64(limit))
	cur, err := s.collection(videosCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cur.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing cursor")
		}
	}()

	var items []model.VideoItem
	for cur.Next(ctx) {
		var item model.VideoItem
		if err := cur.Decode(&item); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while decoding video item")
			continue
		}
		items = append(items, item)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *VideoStore) QueryByCreator(ctx context.Context, creatorID string, limit int, cursor *model.VideoItem) ([]model.VideoItem, error) {
	filter := withCursor(bson.D{{Key: "creatorId", Value: creatorID}}, cursor)
	return s.findVideos(ctx, filter, limit)
}

func (s *VideoStore) QueryByCreators(ctx context.Context, creatorIDs []string, limit int, cursor *model.VideoItem) ([]model.VideoItem, error) {
	if len(creatorIDs) == 0 {
		return nil, nil
	}
	filter := withCursor(bson.D{
		{Key: "creatorId", Value: bson.D{{Key: "$in", Value: creatorIDs}}},
		{Key: "isPrivate", Value: false},
	}, cursor)
	return s.findVideos(ctx, filter, limit)
}

func (s *VideoStore) QueryPublic(ctx context.Context, limit int, cursor *model.VideoItem, tags []string) ([]model.VideoItem, error) {
	filter := bson.D{{Key: "isPrivate", Value: false}}
	if len(tags) > 0 {
		filter = append(filter, bson.E{Key: "tags", Value: bson.D{{Key: "$in", Value: tags}}})
	}
	return s.findVideos(ctx, withCursor(filter, cursor), limit)
}

func (s *VideoStore) GetFollowedCreators(ctx context.Context, viewerID string) ([]string, error) {
	cur, err := s.collection(followsCollection).Find(ctx, bson.D{{Key: "viewerId", Value: viewerID}})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cur.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing cursor")
		}
	}()

	var creators []string
	for cur.Next(ctx) {
		var edge struct {
			CreatorID string `bson:"creatorId"`
		}
		if err := cur.Decode(&edge); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while decoding follow edge")
			continue
		}
		creators = append(creators, edge.CreatorID)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return creators, nil
}

func (s *VideoStore) GetWatchHistory(ctx context.Context, viewerID string, limit int) ([]model.WatchRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "watchedAt", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.collection(watchHistoryCollection).Find(ctx, bson.D{{Key: "viewerId", Value: viewerID}}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cur.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing cursor")
		}
	}()

	var records []model.WatchRecord
	for cur.Next(ctx) {
		var rec model.WatchRecord
		if err := cur.Decode(&rec); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while decoding watch record")
			continue
		}
		records = append(records, rec)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// GetMostWatched aggregates the viewer's history by view count and loads
// the matching items; their tags feed the preferred-tag signal.
func (s *VideoStore) GetMostWatched(ctx context.Context, viewerID string, limit int) ([]model.VideoItem, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "viewerId", Value: viewerID}}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$videoId"},
			{Key: "views", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "views", Value: -1}}}},
		bson.D{{Key: "$limit", Value: limit}},
	}
	cur, err := s.collection(watchHistoryCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cur.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing cursor")
		}
	}()

	var videoIDs []string
	for cur.Next(ctx) {
		var row struct {
			VideoID string `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while decoding aggregate row")
			continue
		}
		videoIDs = append(videoIDs, row.VideoID)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	if len(videoIDs) == 0 {
		return nil, nil
	}

	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: videoIDs}}}}
	return s.findVideos(ctx, filter, len(videoIDs))
}
