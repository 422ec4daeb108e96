package pubsub

import (
	"context"
	"encoding/json"

	"cloud.google.com/go/pubsub"

	"github.com/Marc02130/tiktaik-sub000/domain/dto"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/logger"
	"github.com/Marc02130/tiktaik-sub000/usecase"
)

// NewPubSub creates a Pub/Sub client for the given project.
func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// FeedEventSubscriber consumes content events from Pub/Sub and feeds them
// to the cache invalidator.
type FeedEventSubscriber struct {
	client         *pubsub.Client
	subscriptionID string
	invalidator    *usecase.FeedInvalidator
}

func NewFeedEventSubscriber(client *pubsub.Client, subscriptionID string, invalidator *usecase.FeedInvalidator) *FeedEventSubscriber {
	return &FeedEventSubscriber{client: client, subscriptionID: subscriptionID, invalidator: invalidator}
}

// Start blocks receiving messages until ctx is cancelled. Messages that
// fail to decode are acked and dropped; redelivery cannot fix them.
func (s *FeedEventSubscriber) Start(ctx context.Context) error {
	sub := s.client.Subscription(s.subscriptionID)
	logger.GetLogger().WithField("subscription", s.subscriptionID).Info("Feed event subscription starting")

	return sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		var event dto.VideoEventMessage
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while decoding feed event")
			msg.Ack()
			return
		}
		s.handle(ctx, event)
		msg.Ack()
	})
}

func (s *FeedEventSubscriber) handle(ctx context.Context, event dto.VideoEventMessage) {
	switch event.Type {
	case dto.EventVideoCreated:
		s.invalidator.HandleVideoCreated(ctx, event.VideoID, event.CreatorID)
	default:
		logger.GetLogger().WithField("type", event.Type).Debug("Ignoring unhandled feed event type")
	}
}
