package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/lexcaraig/wheelbase-business/internal/dto"
	"github.com/lexcaraig/wheelbase-business/internal/entity"
	"github.com/lexcaraig/wheelbase-business/internal/pkg/logger"
	"github.com/lexcaraig/wheelbase-business/pkg/backend"
	"github.com/lexcaraig/wheelbase-business/pkg/events"
	"github.com/lexcaraig/wheelbase-business/pkg/realtime"
)

// ChatDelivery receives the normalized, sorted message collection for a
// conversation on every push. Implemented by the WebSocket hub.
type ChatDelivery interface {
	DeliverSnapshot(conversationID string, messages []realtime.Message)
}

type IChatService interface {
	EnsureRealtime(ctx context.Context, token string) error
	Subscribe(ctx context.Context, token, conversationID string) error
	Unsubscribe(conversationID string)
	SendMessage(ctx context.Context, token, conversationID, senderID, senderName string, req *dto.SendMessageRequest) error
	SendStatusUpdate(ctx context.Context, token, conversationID, senderID, senderName string, req *dto.SendStatusUpdateRequest) error
	SendPaymentRequest(ctx context.Context, token, conversationID, senderID, senderName string, req *dto.SendPaymentRequestRequest) error
	ListConversations(ctx context.Context, token, businessID string) ([]dto.ConversationResponse, error)
	Close()
}

type chatService struct {
	backend   *backend.Client
	store     realtime.Store
	delivery  ChatDelivery
	publisher EventPublisher
	logger    logger.ILogger

	authGroup singleflight.Group

	mu            sync.Mutex
	subscriptions map[string]realtime.Subscription
}

func NewChatService(client *backend.Client, store realtime.Store, delivery ChatDelivery, publisher EventPublisher, log logger.ILogger) IChatService {
	return &chatService{
		backend:       client,
		store:         store,
		delivery:      delivery,
		publisher:     publisher,
		logger:        log,
		subscriptions: make(map[string]realtime.Subscription),
	}
}

// EnsureRealtime performs the credential exchange and store session setup at
// most once, no matter how many callers race into it. Concurrent callers
// share the in-flight exchange instead of stacking duplicates.
func (s *chatService) EnsureRealtime(ctx context.Context, token string) error {
	if s.store.Authenticated() {
		return nil
	}

	_, err, _ := s.authGroup.Do("realtime-auth", func() (interface{}, error) {
		if s.store.Authenticated() {
			return nil, nil
		}

		var exchange struct {
			RealtimeToken string `json:"realtimeToken"`
		}
		if err := s.backend.CallWithAuth(ctx, "create-realtime-token", token, nil, &exchange); err != nil {
			s.logger.Error("ChatService", "Realtime credential exchange failed", map[string]interface{}{"error": err.Error()})
			return nil, fmt.Errorf("realtime authentication failed: %w", err)
		}

		if err := s.store.Authenticate(ctx, exchange.RealtimeToken); err != nil {
			return nil, err
		}
		s.logger.Info("ChatService", "Realtime store authenticated", nil)
		return nil, nil
	})
	return err
}

// Subscribe attaches a push listener on a conversation. Subscribing to an
// already-watched conversation is a no-op; the existing listener keeps
// feeding the delivery.
func (s *chatService) Subscribe(ctx context.Context, token, conversationID string) error {
	if err := s.EnsureRealtime(ctx, token); err != nil {
		return err
	}

	s.mu.Lock()
	if _, exists := s.subscriptions[conversationID]; exists {
		s.mu.Unlock()
		return nil
	}
	// Reserve the slot before the store call so a concurrent subscriber
	// backs off instead of double-attaching.
	s.subscriptions[conversationID] = nil
	s.mu.Unlock()

	sub, err := s.store.Subscribe(ctx, conversationID, func(messages []realtime.Message) {
		s.delivery.DeliverSnapshot(conversationID, NormalizeMessages(messages))
	})
	if err != nil {
		s.mu.Lock()
		delete(s.subscriptions, conversationID)
		s.mu.Unlock()
		return fmt.Errorf("failed to subscribe to conversation %s: %w", conversationID, err)
	}

	s.mu.Lock()
	if _, reserved := s.subscriptions[conversationID]; !reserved {
		// An Unsubscribe raced the store call and dropped the reservation.
		// The listener must not outlive it.
		s.mu.Unlock()
		sub.Unsubscribe()
		return nil
	}
	s.subscriptions[conversationID] = sub
	s.mu.Unlock()

	s.logger.Info("ChatService", "Subscribed to conversation", map[string]interface{}{"conversation_id": conversationID})
	return nil
}

// Unsubscribe detaches the conversation listener. Unknown conversations are
// a no-op.
func (s *chatService) Unsubscribe(conversationID string) {
	s.mu.Lock()
	sub, exists := s.subscriptions[conversationID]
	delete(s.subscriptions, conversationID)
	s.mu.Unlock()

	if exists && sub != nil {
		sub.Unsubscribe()
	}
}

// NormalizeMessages applies field defaults and re-sorts the collection
// ascending by timestamp. The sort runs on every snapshot: pushes can carry
// backfilled or reordered nodes, so arrival order is never trusted.
func NormalizeMessages(messages []realtime.Message) []realtime.Message {
	out := make([]realtime.Message, len(messages))
	copy(out, messages)

	for i := range out {
		if out[i].SenderName == "" {
			out[i].SenderName = "Unknown"
		}
		if out[i].Type == "" {
			out[i].Type = "text"
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampMs < out[j].TimestampMs
	})
	return out
}

func (s *chatService) send(ctx context.Context, token, conversationID string, msg *realtime.Message, preview string) error {
	if err := s.EnsureRealtime(ctx, token); err != nil {
		return err
	}

	if err := s.store.Append(ctx, conversationID, msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	// The metadata write is intentionally separate from the message write.
	// A failure here leaves the summary stale but never loses the message.
	meta := &realtime.Metadata{
		LastMessage:          preview,
		LastMessageTimestamp: msg.TimestampMs,
	}
	if err := s.store.SetMetadata(ctx, conversationID, meta); err != nil {
		s.logger.Warn("ChatService", "Metadata update failed after send", map[string]interface{}{
			"conversation_id": conversationID,
			"message_id":      msg.ID,
			"error":           err.Error(),
		})
	}

	_ = s.publisher.Publish(events.NewBaseEvent(events.TypeChatMessageSent, map[string]interface{}{
		"conversation_id": conversationID,
		"message_id":      msg.ID,
		"sender_id":       msg.SenderID,
		"type":            msg.Type,
	}))
	return nil
}

func (s *chatService) SendMessage(ctx context.Context, token, conversationID, senderID, senderName string, req *dto.SendMessageRequest) error {
	if req.Content == "" && len(req.ImageURLs) == 0 {
		return errors.New("message content is required")
	}

	msgType := req.Type
	if msgType == "" {
		msgType = "text"
	}
	if len(req.ImageURLs) > 0 {
		msgType = "image"
	}

	msg := &realtime.Message{
		SenderID:   senderID,
		SenderName: senderName,
		Content:    req.Content,
		Type:       msgType,
		ImageURLs:  req.ImageURLs,
	}

	preview := req.Content
	if msgType == "image" && preview == "" {
		preview = "📷 Photo"
	}
	return s.send(ctx, token, conversationID, msg, preview)
}

// statusTemplates maps an order status to the chat line announcing it.
var statusTemplates = map[string]string{
	"payment_verified": "Payment verified! We're preparing your order.",
	"confirmed":        "Your order has been confirmed! We're preparing your items.",
	"processing":       "Your order is now being processed.",
	"ready_for_pickup": "Your order is ready for pickup!",
	"shipped":          "Your order has been shipped.",
	"delivered":        "Your order has been delivered.",
	"completed":        "Your order is complete. Thank you for your business!",
	"cancelled":        "Your order has been cancelled.",
	"refunded":         "Your order has been refunded.",
}

func (s *chatService) SendStatusUpdate(ctx context.Context, token, conversationID, senderID, senderName string, req *dto.SendStatusUpdateRequest) error {
	content, ok := statusTemplates[req.NewStatus]
	if !ok {
		content = fmt.Sprintf("Order status updated to %s.", req.NewStatus)
	}
	if req.NewStatus == "shipped" && req.TrackingNumber != "" {
		content = fmt.Sprintf("%s Tracking number: %s", content, req.TrackingNumber)
	}
	if req.NewStatus == "cancelled" && req.Reason != "" {
		content = fmt.Sprintf("%s Reason: %s", content, req.Reason)
	}

	msg := &realtime.Message{
		SenderID:   senderID,
		SenderName: senderName,
		Content:    content,
		Type:       "status_update",
		StatusUpdate: &realtime.StatusUpdateData{
			OldStatus:      req.OldStatus,
			NewStatus:      req.NewStatus,
			TrackingNumber: req.TrackingNumber,
			Reason:         req.Reason,
		},
	}
	return s.send(ctx, token, conversationID, msg, content)
}

func (s *chatService) SendPaymentRequest(ctx context.Context, token, conversationID, senderID, senderName string, req *dto.SendPaymentRequestRequest) error {
	content := fmt.Sprintf("Payment request: %s %.2f via %s", req.Currency, float64(req.AmountCents)/100, req.Method)

	msg := &realtime.Message{
		SenderID:   senderID,
		SenderName: senderName,
		Content:    content,
		Type:       "payment_request",
		PaymentReq: &realtime.PaymentRequestData{
			Method:        req.Method,
			AccountNumber: req.AccountNumber,
			AccountName:   req.AccountName,
			BankName:      req.BankName,
			AmountCents:   req.AmountCents,
			Currency:      req.Currency,
		},
	}
	return s.send(ctx, token, conversationID, msg, content)
}

func (s *chatService) ListConversations(ctx context.Context, token, businessID string) ([]dto.ConversationResponse, error) {
	var conversations []entity.Conversation
	fn := fmt.Sprintf("get-business-conversations?business_id=%s", businessID)
	if err := s.backend.Get(ctx, fn, token, &conversations); err != nil {
		return nil, err
	}

	out := make([]dto.ConversationResponse, 0, len(conversations))
	for i := range conversations {
		c := &conversations[i]
		out = append(out, dto.ConversationResponse{
			Id:             c.Id,
			CustomerId:     c.CustomerId,
			CustomerName:   c.CustomerName,
			CustomerAvatar: c.CustomerAvatar,
			LastMessage:    c.LastMessage,
			LastMessageAt:  c.LastMessageAt.UnixMilli(),
			UnreadCount:    c.UnreadCount,
		})
	}
	return out, nil
}

func (s *chatService) Close() {
	s.mu.Lock()
	subs := s.subscriptions
	s.subscriptions = make(map[string]realtime.Subscription)
	s.mu.Unlock()

	for _, sub := range subs {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
	s.store.Close()
}
