package models

import "time"

// ChatMessage is one persisted message within a session. Messages are
// immutable once created; only the Read flag ever changes, and only from
// false to true.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"not null;index:idx_session_msg" json:"session_id"`
	SenderID  string    `gorm:"type:text;not null;index:idx_session_msg" json:"sender_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
