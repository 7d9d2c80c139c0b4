package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/lexcaraig/wheelbase-business/internal/dto"
	"github.com/lexcaraig/wheelbase-business/pkg/backend"
	"github.com/lexcaraig/wheelbase-business/pkg/events"
)

// announceRecorder is an IChatService that captures status announcements.
type announceRecorder struct {
	conversations []string
	statusUpdates []dto.SendStatusUpdateRequest
}

func (r *announceRecorder) EnsureRealtime(context.Context, string) error      { return nil }
func (r *announceRecorder) Subscribe(context.Context, string, string) error   { return nil }
func (r *announceRecorder) Unsubscribe(string)                                {}
func (r *announceRecorder) Close()                                            {}
func (r *announceRecorder) SendMessage(ctx context.Context, token, conversationID, senderID, senderName string, req *dto.SendMessageRequest) error {
	return nil
}
func (r *announceRecorder) SendPaymentRequest(ctx context.Context, token, conversationID, senderID, senderName string, req *dto.SendPaymentRequestRequest) error {
	return nil
}
func (r *announceRecorder) SendStatusUpdate(ctx context.Context, token, conversationID, senderID, senderName string, req *dto.SendStatusUpdateRequest) error {
	r.conversations = append(r.conversations, conversationID)
	r.statusUpdates = append(r.statusUpdates, *req)
	return nil
}
func (r *announceRecorder) ListConversations(context.Context, string, string) ([]dto.ConversationResponse, error) {
	return nil, nil
}

var _ IChatService = (*announceRecorder)(nil)

func orderBackendServer(t *testing.T, currentStatus string, writeHits *int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/functions/v1/get-order", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"ord-1","orderNumber":"WB-1001","customerId":"cust-1","conversationId":"conv-1","status":"` + currentStatus + `"}}`))
	})
	mux.HandleFunc("/functions/v1/update-order-status", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(writeHits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"ord-1","orderNumber":"WB-1001","customerId":"cust-1","conversationId":"conv-1","status":"confirmed"}}`))
	})
	mux.HandleFunc("/functions/v1/verify-order-payment", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(writeHits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"ord-1","orderNumber":"WB-1001","customerId":"cust-1","conversationId":"conv-1","status":"confirmed"}}`))
	})
	return httptest.NewServer(mux)
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	var writeHits int64
	ts := orderBackendServer(t, "pending", &writeHits)
	defer ts.Close()

	chat := &announceRecorder{}
	svc := NewOrderService(backend.NewClient(ts.URL, "anon"), chat, &recordingPublisher{}, noopLogger{})

	_, err := svc.UpdateStatus(context.Background(), "token", "ord-1", "biz-1", "Shop", &dto.UpdateOrderStatusRequest{Status: "delivered"})
	if err == nil {
		t.Fatal("expected pending -> delivered to be rejected")
	}
	if got := atomic.LoadInt64(&writeHits); got != 0 {
		t.Fatalf("backend writes = %d, want 0", got)
	}
	if len(chat.statusUpdates) != 0 {
		t.Fatalf("chat announced a rejected transition: %+v", chat.statusUpdates)
	}
}

func TestUpdateStatusCancelRequiresReason(t *testing.T) {
	var writeHits int64
	ts := orderBackendServer(t, "pending", &writeHits)
	defer ts.Close()

	svc := NewOrderService(backend.NewClient(ts.URL, "anon"), &announceRecorder{}, &recordingPublisher{}, noopLogger{})

	_, err := svc.UpdateStatus(context.Background(), "token", "ord-1", "biz-1", "Shop", &dto.UpdateOrderStatusRequest{Status: "cancelled"})
	if err == nil {
		t.Fatal("expected cancellation without a reason to be rejected")
	}
}

func TestVerifyPaymentAnnouncesAndPublishes(t *testing.T) {
	var writeHits int64
	ts := orderBackendServer(t, "pending", &writeHits)
	defer ts.Close()

	chat := &announceRecorder{}
	publisher := &recordingPublisher{}
	svc := NewOrderService(backend.NewClient(ts.URL, "anon"), chat, publisher, noopLogger{})

	order, err := svc.VerifyPayment(context.Background(), "token", "ord-1", "biz-1", "AutoFix Garage")
	if err != nil {
		t.Fatalf("verify payment: %v", err)
	}
	if order.Id != "ord-1" {
		t.Fatalf("order = %+v", order)
	}

	if len(chat.statusUpdates) != 1 {
		t.Fatalf("chat announcements = %d, want 1", len(chat.statusUpdates))
	}
	if chat.conversations[0] != "conv-1" {
		t.Fatalf("announced in %q, want conv-1", chat.conversations[0])
	}
	if got := chat.statusUpdates[0].NewStatus; got != "payment_verified" {
		t.Fatalf("announced status = %q, want payment_verified", got)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("published events = %d, want 1", len(publisher.events))
	}
	ev := publisher.events[0]
	if ev.EventType() != events.TypeOrderStatusUpdated {
		t.Fatalf("event type = %q", ev.EventType())
	}
	if got := ev.Payload()["new_status"]; got != "payment_verified" {
		t.Fatalf("event new_status = %v", got)
	}
}

func TestPaymentSettingsRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/functions/v1/get-payment-settings", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"ps-1","businessId":"biz-1","acceptsGcash":true,"gcashNumber":"09171234567","acceptsCod":true,"offersDelivery":true,"deliveryFeeCents":5000}}`))
	})
	mux.HandleFunc("/functions/v1/update-payment-settings", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("update method = %s, want PUT", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"ps-1","businessId":"biz-1","acceptsGcash":false,"acceptsCod":true}}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	svc := NewOrderService(backend.NewClient(ts.URL, "anon"), &announceRecorder{}, &recordingPublisher{}, noopLogger{})
	ctx := context.Background()

	settings, err := svc.GetPaymentSettings(ctx, "token", "biz-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !settings.AcceptsGcash || settings.GcashNumber != "09171234567" || settings.DeliveryFeeCents != 5000 {
		t.Fatalf("settings = %+v", settings)
	}

	off := false
	updated, err := svc.UpdatePaymentSettings(ctx, "token", "biz-1", &dto.UpdatePaymentSettingsRequest{AcceptsGcash: &off})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.AcceptsGcash {
		t.Fatalf("updated settings = %+v", updated)
	}
}
