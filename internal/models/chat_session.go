package models

import "time"

// Session lifecycle states. The machine only moves forward:
// waiting -> active -> closed. Closed sessions are never reopened; a new
// session is created instead.
const (
	SessionWaiting = "waiting"
	SessionActive  = "active"
	SessionClosed  = "closed"
)

// ChatSession represents one support conversation between a customer and
// (once accepted) an agent. Sessions are kept forever for history and audit.
type ChatSession struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CustomerID string     `gorm:"type:text;not null;index" json:"customer_id"`
	AgentID    *string    `gorm:"type:text;index" json:"agent_id,omitempty"` // nil until accepted
	Subject    string     `gorm:"type:text" json:"subject"`
	Status     string     `gorm:"type:text;default:'waiting';index" json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"` // set if and only if status is closed
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

// IsOpen reports whether the session still accepts messages.
func (s *ChatSession) IsOpen() bool {
	return s.Status != SessionClosed
}
