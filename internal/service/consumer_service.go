package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/lexcaraig/wheelbase-business/internal/entity"
	"github.com/lexcaraig/wheelbase-business/internal/pkg/logger"
	"github.com/lexcaraig/wheelbase-business/pkg/events"
)

// NotificationDelivery pushes real-time notifications to connected portal
// users. Implemented by the WebSocket hub.
type NotificationDelivery interface {
	Notify(userID string, notification entity.Notification)
	Broadcast(notification entity.Notification)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	delivery  NotificationDelivery
	logger    logger.ILogger
}

func NewConsumerService(pubSub *gochannel.GoChannel, topicName string, delivery NotificationDelivery, log logger.ILogger) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		delivery:  delivery,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var envelope eventEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	notif, target, ok := cs.buildNotification(&envelope)
	if !ok {
		msg.Ack()
		return
	}

	if target == "" {
		cs.delivery.Broadcast(notif)
	} else {
		cs.delivery.Notify(target, notif)
	}
	msg.Ack()
}

// buildNotification maps an event to the notification it raises. Events
// without a notification surface return ok=false.
func (cs *consumerService) buildNotification(envelope *eventEnvelope) (entity.Notification, string, bool) {
	payload := envelope.Payload
	target, _ := payload["user_id"].(string)

	notif := entity.Notification{
		Id:        uuid.New().String(),
		TypeCode:  envelope.Type,
		Payload:   payload,
		CreatedAt: time.UnixMilli(envelope.OccurredAt),
	}

	switch envelope.Type {
	case events.TypeClaimSubmitted:
		notif.Title = "Claim submitted"
		notif.Message = "Your business claim was submitted and is pending review."
	case events.TypeOrderStatusUpdated:
		orderNumber, _ := payload["order_number"].(string)
		status, _ := payload["new_status"].(string)
		notif.Title = "Order updated"
		notif.Message = fmt.Sprintf("Order %s is now %s", orderNumber, status)
	case events.TypeChatMessageSent:
		// Message sends already surface through the chat stream itself.
		return entity.Notification{}, "", false
	case events.TypeDocumentUploaded:
		return entity.Notification{}, "", false
	default:
		cs.logger.Debug("ConsumerService", "No notification mapping for event", map[string]interface{}{"type": envelope.Type})
		return entity.Notification{}, "", false
	}

	return notif, target, true
}
