package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/lexcaraig/wheelbase-business/internal/dto"
	"github.com/lexcaraig/wheelbase-business/internal/entity"
	"github.com/lexcaraig/wheelbase-business/internal/pkg/logger"
	"github.com/lexcaraig/wheelbase-business/pkg/backend"
	"github.com/lexcaraig/wheelbase-business/pkg/events"
)

type IOrderService interface {
	ListOrders(ctx context.Context, token, businessID, status string) ([]entity.Order, error)
	GetOrder(ctx context.Context, token, orderID string) (*entity.Order, error)
	UpdateStatus(ctx context.Context, token, orderID, senderID, senderName string, req *dto.UpdateOrderStatusRequest) (*entity.Order, error)
	VerifyPayment(ctx context.Context, token, orderID, senderID, senderName string) (*entity.Order, error)
	GetPaymentSettings(ctx context.Context, token, businessID string) (*entity.PaymentSettings, error)
	UpdatePaymentSettings(ctx context.Context, token, businessID string, req *dto.UpdatePaymentSettingsRequest) (*entity.PaymentSettings, error)
}

// allowedTransitions guards the order lifecycle. The backend enforces this
// too; checking here gives the user a readable error without a round trip.
var allowedTransitions = map[entity.OrderStatus][]entity.OrderStatus{
	entity.OrderPending:        {entity.OrderConfirmed, entity.OrderCancelled},
	entity.OrderConfirmed:      {entity.OrderProcessing, entity.OrderCancelled},
	entity.OrderProcessing:     {entity.OrderReadyForPickup, entity.OrderShipped, entity.OrderCancelled},
	entity.OrderReadyForPickup: {entity.OrderCompleted, entity.OrderCancelled},
	entity.OrderShipped:        {entity.OrderDelivered},
	entity.OrderDelivered:      {entity.OrderCompleted},
}

func transitionAllowed(from, to entity.OrderStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

type orderService struct {
	backend   *backend.Client
	chat      IChatService
	publisher EventPublisher
	logger    logger.ILogger
}

func NewOrderService(client *backend.Client, chat IChatService, publisher EventPublisher, log logger.ILogger) IOrderService {
	return &orderService{
		backend:   client,
		chat:      chat,
		publisher: publisher,
		logger:    log,
	}
}

func (s *orderService) ListOrders(ctx context.Context, token, businessID, status string) ([]entity.Order, error) {
	var orders []entity.Order
	fn := fmt.Sprintf("get-business-orders?business_id=%s", url.QueryEscape(businessID))
	if status != "" {
		fn += "&status=" + url.QueryEscape(status)
	}
	if err := s.backend.Get(ctx, fn, token, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, token, orderID string) (*entity.Order, error) {
	var order entity.Order
	fn := fmt.Sprintf("get-order?id=%s", url.QueryEscape(orderID))
	if err := s.backend.Get(ctx, fn, token, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus moves an order through its lifecycle, announces the change in
// the linked conversation, and raises an event for the notification stream.
func (s *orderService) UpdateStatus(ctx context.Context, token, orderID, senderID, senderName string, req *dto.UpdateOrderStatusRequest) (*entity.Order, error) {
	current, err := s.GetOrder(ctx, token, orderID)
	if err != nil {
		return nil, err
	}

	newStatus := entity.OrderStatus(req.Status)
	if !transitionAllowed(current.Status, newStatus) {
		return nil, fmt.Errorf("cannot move order from %s to %s", current.Status, newStatus)
	}
	if newStatus == entity.OrderCancelled && req.Reason == "" {
		return nil, errors.New("a reason is required when cancelling an order")
	}

	body := map[string]string{
		"id":              orderID,
		"status":          req.Status,
		"tracking_number": req.TrackingNumber,
		"reason":          req.Reason,
	}
	var updated entity.Order
	if err := s.backend.CallWithAuth(ctx, "update-order-status", token, body, &updated); err != nil {
		return nil, err
	}

	// Announce in chat when the order has a conversation attached. A chat
	// failure does not roll back the status change.
	if updated.ConversationId != "" {
		chatErr := s.chat.SendStatusUpdate(ctx, token, updated.ConversationId, senderID, senderName, &dto.SendStatusUpdateRequest{
			OldStatus:      string(current.Status),
			NewStatus:      req.Status,
			TrackingNumber: req.TrackingNumber,
			Reason:         req.Reason,
		})
		if chatErr != nil {
			s.logger.Warn("OrderService", "Status chat announcement failed", map[string]interface{}{
				"order_id": orderID,
				"error":    chatErr.Error(),
			})
		}
	}

	_ = s.publisher.Publish(events.NewBaseEvent(events.TypeOrderStatusUpdated, map[string]interface{}{
		"user_id":      updated.CustomerId,
		"order_id":     updated.Id,
		"order_number": updated.OrderNumber,
		"old_status":   string(current.Status),
		"new_status":   req.Status,
	}))

	s.logger.Info("OrderService", "Order status updated", map[string]interface{}{
		"order_id":   orderID,
		"old_status": string(current.Status),
		"new_status": req.Status,
	})
	return &updated, nil
}

// VerifyPayment approves the buyer's submitted payment proof. The backend
// owns the actual verification record; the portal announces the outcome in
// the linked conversation.
func (s *orderService) VerifyPayment(ctx context.Context, token, orderID, senderID, senderName string) (*entity.Order, error) {
	current, err := s.GetOrder(ctx, token, orderID)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{"id": orderID, "approved": true}
	var updated entity.Order
	if err := s.backend.CallWithAuth(ctx, "verify-order-payment", token, body, &updated); err != nil {
		return nil, err
	}

	if updated.ConversationId != "" {
		chatErr := s.chat.SendStatusUpdate(ctx, token, updated.ConversationId, senderID, senderName, &dto.SendStatusUpdateRequest{
			OldStatus: string(current.Status),
			NewStatus: "payment_verified",
		})
		if chatErr != nil {
			s.logger.Warn("OrderService", "Payment verification chat announcement failed", map[string]interface{}{
				"order_id": orderID,
				"error":    chatErr.Error(),
			})
		}
	}

	_ = s.publisher.Publish(events.NewBaseEvent(events.TypeOrderStatusUpdated, map[string]interface{}{
		"user_id":      updated.CustomerId,
		"order_id":     updated.Id,
		"order_number": updated.OrderNumber,
		"old_status":   string(current.Status),
		"new_status":   "payment_verified",
	}))

	s.logger.Info("OrderService", "Payment verified", map[string]interface{}{"order_id": orderID})
	return &updated, nil
}

func (s *orderService) GetPaymentSettings(ctx context.Context, token, businessID string) (*entity.PaymentSettings, error) {
	var settings entity.PaymentSettings
	fn := fmt.Sprintf("get-payment-settings?business_id=%s", url.QueryEscape(businessID))
	if err := s.backend.Get(ctx, fn, token, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *orderService) UpdatePaymentSettings(ctx context.Context, token, businessID string, req *dto.UpdatePaymentSettingsRequest) (*entity.PaymentSettings, error) {
	var settings entity.PaymentSettings
	fn := fmt.Sprintf("update-payment-settings?business_id=%s", url.QueryEscape(businessID))
	if err := s.backend.Put(ctx, fn, token, req, &settings); err != nil {
		return nil, err
	}
	s.logger.Info("OrderService", "Payment settings updated", map[string]interface{}{"business_id": businessID})
	return &settings, nil
}
