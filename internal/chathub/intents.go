package chathub

import (
	"log"

	"deskgogo/backend/internal/models"
	"deskgogo/backend/internal/storage"
)

// HandleIntent dispatches one client-issued intent. The transport layer has
// already stamped the authenticated user onto the intent.
func (h *Hub) HandleIntent(c Client, intent models.Intent) {
	switch intent.Type {
	case models.IntentJoinChat:
		h.JoinChat(c, intent.SessionID)
	case models.IntentLeaveChat:
		h.LeaveChat(c, intent.SessionID)
	case models.IntentSendMessage:
		h.SendMessage(c, intent.SessionID, intent.Message)
	case models.IntentTyping:
		h.Typing(c, intent.SessionID, intent.UserName, intent.IsTyping)
	case models.IntentMarkRead:
		h.MarkRead(c, intent.SessionID)
	case models.IntentAcceptChat:
		h.AcceptChat(c, intent.SessionID)
	case models.IntentTransferChat:
		h.TransferChat(c, intent.SessionID, intent.AgentID)
	case models.IntentCloseChat:
		h.CloseChat(c, intent.SessionID)
	default:
		h.sendError(c, "unknown intent type: "+intent.Type)
	}
}

// JoinChat subscribes the connection to the session's room and tells the
// other members who arrived.
func (h *Hub) JoinChat(c Client, sessionID uint) {
	if _, err := h.Storage.GetSessionByID(sessionID); err != nil {
		h.sendError(c, err.Error())
		return
	}
	if !h.joinRoom(sessionID, c) {
		// Already a member; a repeated join announces nothing.
		return
	}
	h.Broadcast(sessionID, models.Event{
		Type:      models.EventUserJoined,
		SessionID: sessionID,
		UserID:    c.GetUserID(),
	}, c)
}

// LeaveChat unsubscribes the connection and tells the remaining members.
func (h *Hub) LeaveChat(c Client, sessionID uint) {
	if !h.leaveRoom(sessionID, c) {
		return
	}
	h.Broadcast(sessionID, models.Event{
		Type:      models.EventUserLeft,
		SessionID: sessionID,
		UserID:    c.GetUserID(),
	}, c)
}

// SendMessage persists the message, then broadcasts the persisted record,
// resolved sender included, to every room member. The sender gets the
// broadcast too, so their view always matches storage. The room mutex keeps
// broadcast order equal to persistence completion order for the session.
func (h *Hub) SendMessage(c Client, sessionID uint, body string) {
	session, err := h.Storage.GetSessionByID(sessionID)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}
	if !session.IsOpen() {
		h.sendError(c, storage.ErrSessionClosed.Error())
		return
	}

	r := h.getOrCreateRoom(sessionID)
	r.sendMu.Lock()
	defer r.sendMu.Unlock()

	msg, err := h.Storage.AppendMessage(sessionID, c.GetUserID(), body)
	if err != nil {
		h.sendError(c, "failed to send message")
		return
	}

	sender, err := h.Storage.ResolveDisplay(c.GetUserID())
	if err != nil {
		// The message is already durable; fall back to a bare identity
		// rather than withholding the broadcast.
		log.Printf("WARNING: Failed to resolve display for %s: %v", c.GetUserID(), err)
		sender = &models.UserDisplay{ID: c.GetUserID()}
	}

	h.Broadcast(sessionID, models.Event{
		Type:      models.EventNewMessage,
		SessionID: sessionID,
		Message: &models.MessageView{
			ID:        msg.ID,
			SessionID: msg.SessionID,
			Sender:    *sender,
			Body:      msg.Body,
			Read:      msg.Read,
			CreatedAt: msg.CreatedAt,
		},
	}, nil)
}

// Typing relays a transient typing indicator to the other room members.
// Nothing is persisted.
func (h *Hub) Typing(c Client, sessionID uint, userName string, isTyping bool) {
	h.Broadcast(sessionID, models.Event{
		Type:      models.EventUserTyping,
		SessionID: sessionID,
		UserID:    c.GetUserID(),
		UserName:  userName,
		IsTyping:  isTyping,
	}, c)
}

// MarkRead flips every unread message from the other party to read and
// announces it to the whole room.
func (h *Hub) MarkRead(c Client, sessionID uint) {
	if _, err := h.Storage.MarkMessagesRead(sessionID, c.GetUserID()); err != nil {
		h.sendError(c, "failed to mark messages read")
		return
	}
	h.Broadcast(sessionID, models.Event{
		Type:      models.EventMessagesRead,
		SessionID: sessionID,
		ReadBy:    c.GetUserID(),
	}, nil)
}

// AcceptChat assigns the calling agent to a waiting session. Only agent and
// admin principals may accept; a customer issuing accept_chat gets a
// caller-only error and nothing changes. The storage layer performs the
// assignment as one conditional update, so when two agents race exactly one
// wins; the loser gets a conflict error and no broadcast happens on their
// behalf.
func (h *Hub) AcceptChat(c Client, sessionID uint) {
	agentID := c.GetUserID()
	if !h.hasAgentRole(agentID) {
		h.sendError(c, "agent role required to accept a chat")
		return
	}
	session, err := h.Storage.AcceptSession(sessionID, agentID)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}

	if err := h.Storage.RemoveWaitingSession(session.ID); err != nil {
		log.Printf("WARNING: Failed to dequeue accepted session %d: %v", session.ID, err)
	}

	agent, err := h.Storage.ResolveDisplay(agentID)
	if err != nil {
		agent = &models.UserDisplay{ID: agentID}
	}
	h.Broadcast(sessionID, models.Event{
		Type:      models.EventChatAccepted,
		SessionID: sessionID,
		Agent:     agent,
	}, nil)
}

// TransferChat hands an active session to another agent and announces the
// new assignee to the room.
func (h *Hub) TransferChat(c Client, sessionID uint, newAgentID string) {
	if !h.hasAgentRole(c.GetUserID()) {
		h.sendError(c, "agent role required to transfer a chat")
		return
	}
	if newAgentID == "" {
		h.sendError(c, "transfer_chat requires agent_id")
		return
	}
	if _, err := h.Storage.TransferSession(sessionID, newAgentID); err != nil {
		h.sendError(c, err.Error())
		return
	}

	agent, err := h.Storage.ResolveDisplay(newAgentID)
	if err != nil {
		agent = &models.UserDisplay{ID: newAgentID}
	}
	h.Broadcast(sessionID, models.Event{
		Type:      models.EventChatTransferred,
		SessionID: sessionID,
		Agent:     agent,
	}, nil)
}

// CloseChat moves the session to its terminal state and tells the room who
// closed it. The session's customer, its assigned agent, and admins may
// close; anyone else gets a caller-only error and the session is untouched.
func (h *Hub) CloseChat(c Client, sessionID uint) {
	session, err := h.Storage.GetSessionByID(sessionID)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}
	if !h.mayClose(c.GetUserID(), session) {
		h.sendError(c, "not allowed to close this chat")
		return
	}

	closed, err := h.Storage.CloseSession(sessionID)
	if err != nil {
		h.sendError(c, "failed to close chat")
		return
	}

	if err := h.Storage.RemoveWaitingSession(closed.ID); err != nil {
		log.Printf("WARNING: Failed to dequeue closed session %d: %v", closed.ID, err)
	}

	h.Broadcast(sessionID, models.Event{
		Type:      models.EventChatClosed,
		SessionID: sessionID,
		ClosedBy:  c.GetUserID(),
	}, nil)
}

// hasAgentRole reports whether the principal may work the agent side of a
// chat. Unknown users hold no role.
func (h *Hub) hasAgentRole(userID string) bool {
	user, err := h.Storage.GetUserByID(userID)
	return err == nil && user.IsAgent()
}

// mayClose applies the close guard: the session's customer, its assigned
// agent, or an admin.
func (h *Hub) mayClose(userID string, session *models.ChatSession) bool {
	if session.CustomerID == userID {
		return true
	}
	if session.AgentID != nil && *session.AgentID == userID {
		return true
	}
	user, err := h.Storage.GetUserByID(userID)
	return err == nil && user.Role == models.RoleAdmin
}
