package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs handles websocket requests from the peer. conversationID is empty
// for plain notification connections.
func ServeWs(hub *Hub, c *websocket.Conn, userID, conversationID string) {
	client := &Client{
		Hub:            hub,
		Conn:           c,
		UserID:         userID,
		ConversationID: conversationID,
		Send:           make(chan []byte, 256),
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
