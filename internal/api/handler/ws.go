package handler

import (
	"net/http"

	"deskgogo/backend/internal/chathub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Lock this down in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket validates the caller's token, upgrades the connection and
// hands it to the hub. The connection starts outside every room; the client
// issues join_chat intents to subscribe.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	userID, err := h.requestUserID(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := chathub.NewWebSocketClient(h.Hub, userID, conn)
	h.Hub.Register(client)
	client.Run()
}
