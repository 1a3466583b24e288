package chathub

import "deskgogo/backend/internal/models"

// Client is the interface for one realtime connection to the hub. It
// abstracts the underlying transport so the hub can fan events out to any
// kind of connection uniformly.
type Client interface {
	// GetUserID returns the authenticated user behind the connection.
	GetUserID() string

	// GetSendChannel returns the channel the hub writes events into for
	// this specific connection. It is a send-only channel.
	GetSendChannel() chan<- models.Event

	// Run starts the client's read and write pumps, which handle incoming
	// intents and outgoing events.
	Run()

	// Close shuts down the client's outgoing event channel. It must be safe
	// to call more than once.
	Close()
}
