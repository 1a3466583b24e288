package chathub_test

import (
	"testing"
	"time"

	"deskgogo/backend/internal/models"
)

// MockClient is a test double for the chathub.Client interface. Events the
// hub sends land on RecvChannel for assertion.
type MockClient struct {
	userID      string
	RecvChannel chan models.Event
	closed      bool
}

func newMockClient(userID string) *MockClient {
	return &MockClient{
		userID:      userID,
		RecvChannel: make(chan models.Event, 16), // Buffered to prevent blocking in tests
	}
}

func (c *MockClient) GetUserID() string {
	return c.userID
}

func (c *MockClient) GetSendChannel() chan<- models.Event {
	return c.RecvChannel
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.closed = true
}

// recvEvent pops the next event off the client or fails the test.
func (c *MockClient) recvEvent(t *testing.T) models.Event {
	t.Helper()
	select {
	case ev := <-c.RecvChannel:
		return ev
	case <-time.After(time.Second):
		t.Fatalf("client %s received no event", c.userID)
		return models.Event{}
	}
}

// drainEvents collects everything currently buffered for the client.
func (c *MockClient) drainEvents() []models.Event {
	var events []models.Event
	for {
		select {
		case ev := <-c.RecvChannel:
			events = append(events, ev)
		default:
			return events
		}
	}
}
