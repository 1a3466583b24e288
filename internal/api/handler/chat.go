package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"deskgogo/backend/internal/models"
	"deskgogo/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// StartChat opens a chat for the calling customer. A customer with an
// existing waiting or active session is routed to it transparently instead
// of getting a second one.
func (h *Handler) StartChat(c *gin.Context) {
	userID, err := h.requestUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		Subject string `json:"subject"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	existing, err := h.Storage.FindOpenSessionForCustomer(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up open session"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusOK, gin.H{"session": existing, "reused": true})
		return
	}

	session, err := h.Storage.CreateSession(userID, req.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create chat session"})
		return
	}

	// Queue and notice feed the agent side; the session itself is already
	// durable, so failures here only cost the alert.
	if err := h.Storage.EnqueueWaitingSession(session.ID); err != nil {
		log.Printf("WARNING: Failed to enqueue waiting session %d: %v", session.ID, err)
	}
	if err := h.Storage.PublishWaitingNotice(session); err != nil {
		log.Printf("WARNING: Failed to publish waiting notice for session %d: %v", session.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"session": session, "reused": false})
}

// ChatHistory returns the session's persisted messages with resolved
// senders, oldest first.
func (h *Handler) ChatHistory(c *gin.Context) {
	if _, err := h.requestUserID(c); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	session, err := h.Storage.GetSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get chat session"})
		return
	}

	messages, err := h.Storage.ListMessages(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get messages"})
		return
	}

	displays := make(map[string]models.UserDisplay)
	views := make([]models.MessageView, len(messages))
	for i, msg := range messages {
		sender, ok := displays[msg.SenderID]
		if !ok {
			resolved, err := h.Storage.ResolveDisplay(msg.SenderID)
			if err != nil {
				resolved = &models.UserDisplay{ID: msg.SenderID}
			}
			sender = *resolved
			displays[msg.SenderID] = sender
		}
		views[i] = models.MessageView{
			ID:        msg.ID,
			SessionID: msg.SessionID,
			Sender:    sender,
			Body:      msg.Body,
			Read:      msg.Read,
			CreatedAt: msg.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"session":  session,
		"messages": views,
	})
}

// WaitingSessions lists every session still waiting for an agent. Agent
// dashboards poll this alongside the realtime notifications.
func (h *Handler) WaitingSessions(c *gin.Context) {
	if _, ok := h.requireAgent(c); !ok {
		return
	}

	ids, err := h.Storage.GetWaitingSessionIDs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read waiting queue"})
		return
	}

	sessions := make([]*models.ChatSession, 0, len(ids))
	for _, id := range ids {
		session, err := h.Storage.GetSessionByID(id)
		if err != nil {
			// Stale queue entry; skip it.
			continue
		}
		if session.Status == models.SessionWaiting {
			sessions = append(sessions, session)
		}
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

// TransferChat reassigns an active session to another agent. Any
// agent-role caller may transfer; the current agent's consent is not
// required.
func (h *Handler) TransferChat(c *gin.Context) {
	if _, ok := h.requireAgent(c); !ok {
		return
	}

	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req struct {
		AgentID string `json:"agent_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "agent_id is required"})
		return
	}

	target, err := h.Storage.GetUserByID(req.AgentID)
	if err != nil || !target.IsAgent() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Target user is not an agent"})
		return
	}

	session, err := h.Storage.TransferSession(sessionID, req.AgentID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, storage.ErrSessionNotActive):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to transfer chat"})
		}
		return
	}

	h.Hub.Broadcast(sessionID, models.Event{
		Type:      models.EventChatTransferred,
		SessionID: sessionID,
		Agent:     &models.UserDisplay{ID: target.ID, Name: target.Name, AvatarURL: target.AvatarURL},
	}, nil)

	c.JSON(http.StatusOK, gin.H{"session": session})
}

// requireAgent authenticates the caller and checks they hold an agent or
// admin role.
func (h *Handler) requireAgent(c *gin.Context) (*models.User, bool) {
	userID, err := h.requestUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return nil, false
	}
	user, err := h.Storage.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
		return nil, false
	}
	if !user.IsAgent() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Agent role required"})
		return nil, false
	}
	return user, true
}

func sessionIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("session_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return 0, false
	}
	return uint(id), true
}
