package chathub

import (
	"log"
	"sync"

	"deskgogo/backend/internal/models"
	"deskgogo/backend/internal/storage"
)

// room holds the set of connections subscribed to one chat session plus the
// mutex serializing persist-then-broadcast for that session. The mutex is
// per room so a slow persistence call never stalls other sessions.
type room struct {
	sendMu  sync.Mutex
	clients map[Client]bool
}

// Hub owns all realtime connections and the session-id -> connections
// membership table. Every client intent goes through it.
type Hub struct {
	Storage storage.Storage

	mu      sync.RWMutex
	rooms   map[uint]*room
	clients map[Client]bool
}

// NewHub builds a hub over the given storage. One hub serves the whole
// process; handlers receive it by injection.
func NewHub(s storage.Storage) *Hub {
	return &Hub{
		Storage: s,
		rooms:   make(map[uint]*room),
		clients: make(map[Client]bool),
	}
}

// Register adds a freshly connected client. The client is not in any room
// until it issues a join_chat intent.
func (h *Hub) Register(c Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

// Unregister drops the connection from the hub and from every room it had
// joined; a dropped connection is an implicit leave_chat for each of them.
func (h *Hub) Unregister(c Client) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)

	var left []uint
	for sessionID, r := range h.rooms {
		if r.clients[c] {
			delete(r.clients, c)
			left = append(left, sessionID)
			if len(r.clients) == 0 {
				delete(h.rooms, sessionID)
			}
		}
	}
	h.mu.Unlock()

	c.Close()

	for _, sessionID := range left {
		h.Broadcast(sessionID, models.Event{
			Type:      models.EventUserLeft,
			SessionID: sessionID,
			UserID:    c.GetUserID(),
		}, nil)
	}
}

// getOrCreateRoom returns the room for the session, creating it on first join.
func (h *Hub) getOrCreateRoom(sessionID uint) *room {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[sessionID]
	if !ok {
		r = &room{clients: make(map[Client]bool)}
		h.rooms[sessionID] = r
	}
	return r
}

// joinRoom subscribes the client to the session's room. Re-joining is a no-op.
func (h *Hub) joinRoom(sessionID uint, c Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[sessionID]
	if !ok {
		r = &room{clients: make(map[Client]bool)}
		h.rooms[sessionID] = r
	}
	if r.clients[c] {
		return false
	}
	r.clients[c] = true
	return true
}

// leaveRoom unsubscribes the client; the room is dropped once empty so the
// membership table stays bounded by live sessions.
func (h *Hub) leaveRoom(sessionID uint, c Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[sessionID]
	if !ok || !r.clients[c] {
		return false
	}
	delete(r.clients, c)
	if len(r.clients) == 0 {
		delete(h.rooms, sessionID)
	}
	return true
}

// roomMembers snapshots the room's current membership.
func (h *Hub) roomMembers(sessionID uint) []Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[sessionID]
	if !ok {
		return nil
	}
	members := make([]Client, 0, len(r.clients))
	for c := range r.clients {
		members = append(members, c)
	}
	return members
}

// Broadcast fans the event out to every room member except the excluded
// client (pass nil to reach everyone). A member whose send buffer is full
// is disconnected rather than allowed to stall the room.
func (h *Hub) Broadcast(sessionID uint, ev models.Event, except Client) {
	for _, c := range h.roomMembers(sessionID) {
		if c == except {
			continue
		}
		select {
		case c.GetSendChannel() <- ev:
		default:
			log.Printf("WARNING: Client %s send buffer full, disconnecting", c.GetUserID())
			go h.Unregister(c)
		}
	}
}

// sendTo delivers an event to a single client without blocking the caller.
func (h *Hub) sendTo(c Client, ev models.Event) {
	select {
	case c.GetSendChannel() <- ev:
	default:
		log.Printf("WARNING: Dropping event %q for client %s: send buffer full", ev.Type, c.GetUserID())
	}
}

// sendError reports a failure to the initiating connection only. Failures
// never propagate to other room members.
func (h *Hub) sendError(c Client, message string) {
	h.sendTo(c, models.Event{Type: models.EventError, Error: message})
}
