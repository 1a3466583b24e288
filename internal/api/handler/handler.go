package handler

import (
	"deskgogo/backend/internal/chathub"
	"deskgogo/backend/internal/presence"
	"deskgogo/backend/internal/storage"
)

// Handler carries the process-scoped services every route needs.
type Handler struct {
	Hub       *chathub.Hub
	Storage   storage.Storage
	Presence  *presence.Tracker
	jwtSecret []byte
}

func NewHandler(hub *chathub.Hub, s storage.Storage, tracker *presence.Tracker, jwtSecret string) *Handler {
	return &Handler{
		Hub:       hub,
		Storage:   s,
		Presence:  tracker,
		jwtSecret: []byte(jwtSecret),
	}
}
