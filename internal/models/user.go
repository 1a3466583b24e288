package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Roles a user can hold within the helpdesk.
const (
	RoleCustomer = "customer"
	RoleAgent    = "agent"
	RoleAdmin    = "admin"
)

// User represents anyone known to the helpdesk: customers opening chats,
// support agents, and admins.
type User struct {
	ID          string         `gorm:"primaryKey" json:"id"` // UUID
	Name        string         `gorm:"type:text" json:"name"`
	Email       string         `gorm:"index" json:"email,omitempty"` // not unique: guests may share the empty email
	Role        string         `gorm:"type:text;default:'customer';index" json:"role"`
	Departments pq.StringArray `gorm:"type:text[]" json:"departments,omitempty"` // departments the agent may serve
	AvatarURL   string         `gorm:"type:text" json:"avatar_url,omitempty"`
}

// BeforeCreate is a GORM hook that runs before a record is created.
// It generates a new UUID for the user if the ID is not set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// IsAgent reports whether the user may work the agent side of a chat.
func (u *User) IsAgent() bool {
	return u.Role == RoleAgent || u.Role == RoleAdmin
}

// Display reduces the user to the identity shape broadcast with messages.
func (u *User) Display() UserDisplay {
	return UserDisplay{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}
