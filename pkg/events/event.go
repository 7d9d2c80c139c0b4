package events

import "time"

// Event defines the contract for all portal events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CLAIM_SUBMITTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event codes published by the portal services.
const (
	TypeClaimSubmitted     = "CLAIM_SUBMITTED"
	TypeDocumentUploaded   = "DOCUMENT_UPLOADED"
	TypeOrderStatusUpdated = "ORDER_STATUS_UPDATED"
	TypeChatMessageSent    = "CHAT_MESSAGE_SENT"
)

// BaseEvent is the common implementation used across services.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func NewBaseEvent(eventType string, payload map[string]interface{}) BaseEvent {
	if payload == nil {
		payload = make(map[string]interface{})
	}
	return BaseEvent{
		Type:       eventType,
		Data:       payload,
		OccurredAt: time.Now(),
	}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
