package models

import "time"

// Intent types a client may send over the realtime connection.
const (
	IntentJoinChat     = "join_chat"
	IntentLeaveChat    = "leave_chat"
	IntentSendMessage  = "send_message"
	IntentTyping       = "typing"
	IntentMarkRead     = "mark_read"
	IntentAcceptChat   = "accept_chat"
	IntentTransferChat = "transfer_chat"
	IntentCloseChat    = "close_chat"
)

// Event types the hub pushes back to connected clients.
const (
	EventUserJoined      = "user_joined"
	EventUserLeft        = "user_left"
	EventNewMessage      = "new_message"
	EventUserTyping      = "user_typing"
	EventMessagesRead    = "messages_read"
	EventChatAccepted    = "chat_accepted"
	EventChatTransferred = "chat_transferred"
	EventChatClosed      = "chat_closed"
	EventError           = "error"
)

// Intent is the envelope for every client-issued realtime command. The hub
// never trusts client-supplied identity fields; the websocket layer stamps
// UserID from the authenticated connection before dispatch.
type Intent struct {
	Type      string `json:"type"`
	SessionID uint   `json:"session_id"`
	UserID    string `json:"user_id,omitempty"`
	UserName  string `json:"user_name,omitempty"`
	Message   string `json:"message,omitempty"`
	IsTyping  bool   `json:"is_typing,omitempty"`
	AgentID   string `json:"agent_id,omitempty"` // target agent for transfer_chat
}

// UserDisplay is the resolved identity attached to broadcast payloads.
type UserDisplay struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// MessageView is a persisted message together with its resolved sender,
// exactly as every room member (sender included) receives it.
type MessageView struct {
	ID        uint        `json:"id"`
	SessionID uint        `json:"session_id"`
	Sender    UserDisplay `json:"sender"`
	Body      string      `json:"body"`
	Read      bool        `json:"read"`
	CreatedAt time.Time   `json:"created_at"`
}

// Event is the envelope for everything the hub pushes to clients. Only the
// fields relevant to the Type are populated.
type Event struct {
	Type      string       `json:"type"`
	SessionID uint         `json:"session_id,omitempty"`
	UserID    string       `json:"user_id,omitempty"`
	UserName  string       `json:"user_name,omitempty"`
	IsTyping  bool         `json:"is_typing,omitempty"`
	ReadBy    string       `json:"read_by,omitempty"`
	ClosedBy  string       `json:"closed_by,omitempty"`
	Agent     *UserDisplay `json:"agent,omitempty"`
	Message   *MessageView `json:"chat_message,omitempty"`
	Error     string       `json:"message,omitempty"` // error event text
}
