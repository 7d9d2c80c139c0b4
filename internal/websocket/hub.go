package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/lexcaraig/wheelbase-business/internal/entity"
	"github.com/lexcaraig/wheelbase-business/internal/pkg/logger"
	"github.com/lexcaraig/wheelbase-business/pkg/realtime"
)

const clusterChannel = "cluster_events"

// Hub fans portal pushes out to connected browsers: per-user notification
// frames and per-conversation chat snapshot frames. Redis relays both kinds
// to the other instances of the portal.
type Hub struct {
	// Registered clients map: UserID -> List of Clients (multi-device)
	clients map[string][]*Client

	// Conversation rooms: ConversationID -> clients streaming that chat
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out
	rdb *redis.Client

	logger logger.ILogger
}

// clusterPayload is the relay frame between portal instances.
type clusterPayload struct {
	TargetUserID       string          `json:"target_user_id,omitempty"`
	TargetConversation string          `json:"target_conversation,omitempty"`
	Message            json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rooms:      make(map[string]map[*Client]bool),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			if client.ConversationID != "" {
				if h.rooms[client.ConversationID] == nil {
					h.rooms[client.ConversationID] = make(map[*Client]bool)
				}
				h.rooms[client.ConversationID][client] = true
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID, "conversation_id": client.ConversationID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
				}
			}
			if client.ConversationID != "" {
				if room, ok := h.rooms[client.ConversationID]; ok {
					delete(room, client)
					if len(room) == 0 {
						delete(h.rooms, client.ConversationID)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"user_id": client.UserID})
		}
	}
}

// RoomEmpty reports whether a conversation has no local viewers left. The
// chat layer uses this to drop idle store listeners.
func (h *Hub) RoomEmpty(conversationID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[conversationID]) == 0
}

// DeliverSnapshot pushes the full sorted message collection to every client
// viewing the conversation. ChatDelivery implementation.
func (h *Hub) DeliverSnapshot(conversationID string, messages []realtime.Message) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":            "chat_snapshot",
		"conversation_id": conversationID,
		"data":            messages,
	})

	h.mu.RLock()
	for client := range h.rooms[conversationID] {
		h.trySend(client, data)
	}
	h.mu.RUnlock()

	h.relay(clusterPayload{TargetConversation: conversationID, Message: data})
}

// Notify sends a notification to one user's connected devices.
// NotificationDelivery implementation.
func (h *Hub) Notify(userID string, notification entity.Notification) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})

	h.mu.RLock()
	clients := h.clients[userID]
	for _, client := range clients {
		h.trySend(client, data)
	}
	h.mu.RUnlock()

	h.relay(clusterPayload{TargetUserID: userID, Message: data})
}

// Broadcast sends a notification to ALL connected clients.
func (h *Hub) Broadcast(notification entity.Notification) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})

	h.mu.RLock()
	for _, clients := range h.clients {
		for _, client := range clients {
			h.trySend(client, data)
		}
	}
	h.mu.RUnlock()

	h.relay(clusterPayload{TargetUserID: "*", Message: data})
}

// trySend drops the client when its buffer is full instead of blocking the
// hub. Caller must hold at least the read lock.
func (h *Hub) trySend(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": client.UserID})
		go func() { h.unregister <- client }()
	}
}

func (h *Hub) relay(payload clusterPayload) {
	if h.rdb == nil {
		return
	}
	jsonPayload, _ := json.Marshal(payload)
	h.rdb.Publish(context.Background(), clusterChannel, jsonPayload)
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload clusterPayload
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		h.mu.RLock()
		switch {
		case payload.TargetConversation != "":
			for client := range h.rooms[payload.TargetConversation] {
				h.trySend(client, payload.Message)
			}
		case payload.TargetUserID == "*":
			for _, clients := range h.clients {
				for _, client := range clients {
					h.trySend(client, payload.Message)
				}
			}
		case payload.TargetUserID != "":
			for _, client := range h.clients[payload.TargetUserID] {
				h.trySend(client, payload.Message)
			}
		}
		h.mu.RUnlock()
	}
}
