package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/lexcaraig/wheelbase-business/internal/dto"
	"github.com/lexcaraig/wheelbase-business/internal/service"
)

type capturingChatService struct {
	senderID   string
	senderName string
}

func (s *capturingChatService) EnsureRealtime(context.Context, string) error    { return nil }
func (s *capturingChatService) Subscribe(context.Context, string, string) error { return nil }
func (s *capturingChatService) Unsubscribe(string)                              {}
func (s *capturingChatService) Close()                                          {}
func (s *capturingChatService) SendMessage(ctx context.Context, token, conversationID, senderID, senderName string, req *dto.SendMessageRequest) error {
	s.senderID = senderID
	s.senderName = senderName
	return nil
}
func (s *capturingChatService) SendStatusUpdate(ctx context.Context, token, conversationID, senderID, senderName string, req *dto.SendStatusUpdateRequest) error {
	s.senderID = senderID
	s.senderName = senderName
	return nil
}
func (s *capturingChatService) SendPaymentRequest(ctx context.Context, token, conversationID, senderID, senderName string, req *dto.SendPaymentRequestRequest) error {
	s.senderID = senderID
	s.senderName = senderName
	return nil
}
func (s *capturingChatService) ListConversations(context.Context, string, string) ([]dto.ConversationResponse, error) {
	return nil, nil
}

var _ service.IChatService = (*capturingChatService)(nil)

type fixedProfileAuthService struct{}

func (fixedProfileAuthService) Login(context.Context, *dto.LoginRequest) (*dto.AuthResponse, error) {
	return nil, nil
}
func (fixedProfileAuthService) Register(context.Context, *dto.RegisterRequest) (*dto.AuthResponse, error) {
	return nil, nil
}
func (fixedProfileAuthService) ClaimInvite(context.Context, *dto.ClaimInviteRequest) (*dto.AuthResponse, error) {
	return nil, nil
}
func (fixedProfileAuthService) Profile(context.Context, string) (*dto.UserResponse, *dto.BusinessSummary, error) {
	return &dto.UserResponse{Id: "user-1", FullName: "Juan Dela Cruz"},
		&dto.BusinessSummary{Id: "biz-1", DisplayName: "AutoFix Garage"}, nil
}
func (fixedProfileAuthService) Logout(context.Context, string) error { return nil }

var _ service.IAuthService = fixedProfileAuthService{}

func TestSendMessageSenderNameComesFromProfile(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	chat := &capturingChatService{}
	app := fiber.New()
	NewChatController(chat, fixedProfileAuthService{}).RegisterRoutes(app.Group("/api"))

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	// A spoofed sender_name in the body must be ignored.
	body, _ := json.Marshal(fiber.Map{"content": "hello", "sender_name": "Somebody Else"})
	req := httptest.NewRequest("POST", "/api/chat/v1/conversations/conv-1/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+raw)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if chat.senderName != "AutoFix Garage" {
		t.Fatalf("senderName = %q, want the profile display name", chat.senderName)
	}
	if chat.senderID != "user-1" {
		t.Fatalf("senderID = %q, want user-1", chat.senderID)
	}
}
