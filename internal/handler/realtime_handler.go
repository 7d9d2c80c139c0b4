package handler

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/lexcaraig/wheelbase-business/internal/pkg/logger"
	"github.com/lexcaraig/wheelbase-business/internal/service"
	internalWS "github.com/lexcaraig/wheelbase-business/internal/websocket"
)

// RealtimeHandler upgrades browser connections onto the websocket hub.
// Plain connections receive notifications; connections carrying a
// conversation query param also join that conversation's room and get
// chat snapshots pushed as they arrive.
type RealtimeHandler struct {
	hub    *internalWS.Hub
	chat   service.IChatService
	logger logger.ILogger
}

func NewRealtimeHandler(hub *internalWS.Hub, chat service.IChatService, log logger.ILogger) *RealtimeHandler {
	return &RealtimeHandler{
		hub:    hub,
		chat:   chat,
		logger: log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *RealtimeHandler) ServeWs(c *fiber.Ctx) error {
	// 1. Get Token source
	// Priority 1: Query Param (Browser standard)
	tokenStr := c.Query("token")

	// Priority 2: Authorization Header (Tooling/Non-browser standard)
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	// 2. Parse JWT
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		h.logger.Warn("RealtimeHandler", "Invalid Token in WS Handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	// 3. Extract UserID from Claim
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		userID, ok = claims["sub"].(string)
	}
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}

	conversationID := c.Query("conversation")

	// 4. Attach the backing chat feed before the client joins the room.
	// Subscribe is idempotent, so concurrent viewers of the same
	// conversation share one feed.
	if conversationID != "" {
		if err := h.chat.Subscribe(c.UserContext(), tokenStr, conversationID); err != nil {
			h.logger.Error("RealtimeHandler", "Failed to subscribe conversation feed", map[string]interface{}{
				"conversation_id": conversationID,
				"error":           err.Error(),
			})
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Realtime feed unavailable"})
		}
	}

	// Upgrade via Fiber WebSocket Middleware
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("RealtimeHandler", "Starting WebSocket session", map[string]interface{}{
				"user_id":         userID,
				"conversation_id": conversationID,
			})
			internalWS.ServeWs(h.hub, conn, userID, conversationID)
			h.logger.Info("RealtimeHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})

			// Drop the backing feed once the last viewer leaves.
			if conversationID != "" && h.hub.RoomEmpty(conversationID) {
				h.chat.Unsubscribe(conversationID)
			}
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *RealtimeHandler) RegisterRoutes(router fiber.Router) {
	ws := router.Group("/realtime/v1")
	ws.Get("/ws", h.ServeWs)
}
