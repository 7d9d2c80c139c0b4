package service

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/lexcaraig/wheelbase-business/pkg/events"
)

// eventEnvelope is the wire shape events travel in on the in-process bus.
type eventEnvelope struct {
	Type       string                 `json:"type"`
	Payload    map[string]interface{} `json:"payload"`
	OccurredAt int64                  `json:"occurred_at"`
}

type publisherService struct {
	pubSub *gochannel.GoChannel
	topic  string
}

func NewPublisherService(topic string, pubSub *gochannel.GoChannel) EventPublisher {
	return &publisherService{
		pubSub: pubSub,
		topic:  topic,
	}
}

func (p *publisherService) Publish(event events.Event) error {
	envelope := eventEnvelope{
		Type:       event.EventType(),
		Payload:    event.Payload(),
		OccurredAt: event.Timestamp().UnixMilli(),
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	return p.pubSub.Publish(p.topic, msg)
}
