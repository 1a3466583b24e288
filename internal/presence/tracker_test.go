package presence_test

import (
	"fmt"
	"testing"
	"time"

	"deskgogo/backend/internal/presence"

	"github.com/stretchr/testify/assert"
)

func TestTracker_RegisterReturnsOtherViewers(t *testing.T) {
	tracker := presence.NewTracker(30 * time.Second)

	others := tracker.Register("ticket:42", presence.Viewer{ID: "u1", Name: "John Doe"})
	assert.Empty(t, others, "the first viewer sees nobody else")

	others = tracker.Register("ticket:42", presence.Viewer{ID: "u2", Name: "Mary Jane Watson"})
	assert.Len(t, others, 1)
	assert.Equal(t, "u1", others[0].ID)
	assert.Equal(t, "John Doe", others[0].Name)
	assert.Equal(t, "JD", others[0].Initials)

	// Re-registering refreshes the heartbeat; it never duplicates.
	others = tracker.Register("ticket:42", presence.Viewer{ID: "u2", Name: "Mary Jane Watson"})
	assert.Len(t, others, 1)

	got := tracker.Get("ticket:42", "")
	assert.Len(t, got, 2)
}

func TestTracker_GetExcludesCaller(t *testing.T) {
	tracker := presence.NewTracker(30 * time.Second)
	tracker.Register("ticket:1", presence.Viewer{ID: "u1", Name: "Ann"})
	tracker.Register("ticket:1", presence.Viewer{ID: "u2", Name: "Bob"})

	got := tracker.Get("ticket:1", "u1")
	assert.Len(t, got, 1)
	assert.Equal(t, "u2", got[0].ID)
}

func TestTracker_StaleEntriesExpire(t *testing.T) {
	tracker := presence.NewTracker(60 * time.Millisecond)
	tracker.Register("ticket:1", presence.Viewer{ID: "u1", Name: "Ann"})

	time.Sleep(20 * time.Millisecond)
	assert.Len(t, tracker.Get("ticket:1", ""), 1, "fresh entry must be visible")

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, tracker.Get("ticket:1", ""), "entry past the timeout must be treated as absent")
}

func TestTracker_HeartbeatKeepsViewerAlive(t *testing.T) {
	tracker := presence.NewTracker(60 * time.Millisecond)
	tracker.Register("ticket:1", presence.Viewer{ID: "u1", Name: "Ann"})

	// Heartbeat twice across what would otherwise be the expiry window.
	time.Sleep(40 * time.Millisecond)
	tracker.Register("ticket:1", presence.Viewer{ID: "u1", Name: "Ann"})
	time.Sleep(40 * time.Millisecond)

	assert.Len(t, tracker.Get("ticket:1", ""), 1, "re-registration must reset the staleness clock")
}

func TestTracker_RemoveDropsViewer(t *testing.T) {
	tracker := presence.NewTracker(30 * time.Second)
	tracker.Register("ticket:1", presence.Viewer{ID: "u1", Name: "Ann"})
	tracker.Register("ticket:1", presence.Viewer{ID: "u2", Name: "Bob"})

	tracker.Remove("ticket:1", "u1")
	got := tracker.Get("ticket:1", "")
	assert.Len(t, got, 1)
	assert.Equal(t, "u2", got[0].ID)

	tracker.Remove("ticket:1", "u2")
	assert.Empty(t, tracker.Get("ticket:1", ""))

	// Removing from an unknown subject is a no-op.
	tracker.Remove("ticket:999", "u1")
}

func TestTracker_SubjectsAreIndependent(t *testing.T) {
	tracker := presence.NewTracker(30 * time.Second)
	tracker.Register("ticket:1", presence.Viewer{ID: "u1", Name: "Ann"})
	tracker.Register("session:7", presence.Viewer{ID: "u2", Name: "Bob"})

	assert.Len(t, tracker.Get("ticket:1", ""), 1)
	assert.Len(t, tracker.Get("session:7", ""), 1)
	assert.Empty(t, tracker.Get("ticket:2", ""))
}

func TestTracker_ConcurrentRegistrations(t *testing.T) {
	tracker := presence.NewTracker(30 * time.Second)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				id := fmt.Sprintf("u%d", i)
				tracker.Register("ticket:1", presence.Viewer{ID: id, Name: "Viewer"})
				tracker.Get("ticket:1", id)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	assert.Len(t, tracker.Get("ticket:1", ""), 8)
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"John Doe", "JD"},
		{"alice", "A"},
		{"Mary Jane Watson", "MJ"},
		{"Ólafur Jónsson", "ÓJ"},
		{"ölander", "Ö"},
		{"  spaced   out  ", "SO"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, presence.Initials(tt.name), "initials of %q", tt.name)
	}
}
