package servicebus

import (
	"context"
	"encoding/json"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"

	"github.com/Marc02130/tiktaik-sub000/domain/dto"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/logger"
	"github.com/Marc02130/tiktaik-sub000/usecase"
)

// NewServiceBus connects a Service Bus client from a connection string.
func NewServiceBus(connectionString string) (*azservicebus.Client, error) {
	return azservicebus.NewClientFromConnectionString(connectionString, nil)
}

// FeedEventReceiver consumes content events from an Azure Service Bus
// queue, the alternative broker to Pub/Sub, and feeds them to the cache
// invalidator.
type FeedEventReceiver struct {
	client      *azservicebus.Client
	queue       string
	invalidator *usecase.FeedInvalidator
}

func NewFeedEventReceiver(client *azservicebus.Client, queue string, invalidator *usecase.FeedInvalidator) *FeedEventReceiver {
	return &FeedEventReceiver{client: client, queue: queue, invalidator: invalidator}
}

// Start blocks receiving messages until ctx is cancelled.
func (r *FeedEventReceiver) Start(ctx context.Context) error {
	receiver, err := r.client.NewReceiverForQueue(r.queue, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while creating service bus receiver")
		return err
	}
	defer func() {
		if err := receiver.Close(context.Background()); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing receiver")
		}
	}()
	logger.GetLogger().WithField("queue", r.queue).Info("Feed event receiver starting")

	for {
		messages, err := receiver.ReceiveMessages(ctx, 10, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.GetLogger().WithField("error", err).Error("Error while receiving messages")
			continue
		}
		for _, msg := range messages {
			var event dto.VideoEventMessage
			if err := json.Unmarshal(msg.Body, &event); err != nil {
				logger.GetLogger().WithField("error", err).Error("Error while decoding feed event")
			} else if event.Type == dto.EventVideoCreated {
				r.invalidator.HandleVideoCreated(ctx, event.VideoID, event.CreatorID)
			}
			if err := receiver.CompleteMessage(ctx, msg, nil); err != nil {
				logger.GetLogger().WithField("error", err).Error("Error while completing message")
			}
		}
	}
}
