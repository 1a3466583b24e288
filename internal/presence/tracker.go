// Package presence answers "who is currently viewing subject X" for the
// polling-based UI surfaces (ticket detail pages, session lists). It keeps
// nothing durable: entries live in process memory, are refreshed by
// heartbeats, and expire on a staleness sweep so ungraceful disconnects
// (a closed browser tab that never sent a leave) clean themselves up.
package presence

import (
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Viewer identifies someone registering presence on a subject.
type Viewer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ViewerInfo is the shape returned to callers: identity plus the initials
// rendered in "N people viewing" avatars.
type ViewerInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Initials string `json:"initials"`
}

type entry struct {
	viewer   Viewer
	lastSeen time.Time
}

// Tracker is a process-scoped presence service. Construct one at startup
// and inject it into handlers; registrations and sweeps from concurrent
// requests interleave safely behind its mutex.
type Tracker struct {
	mu       sync.Mutex
	timeout  time.Duration
	subjects map[string]map[string]entry // subject id -> viewer id -> entry
}

// NewTracker builds a tracker whose entries expire after the given timeout
// without a heartbeat.
func NewTracker(timeout time.Duration) *Tracker {
	return &Tracker{
		timeout:  timeout,
		subjects: make(map[string]map[string]entry),
	}
}

// Register inserts or refreshes the viewer's entry for the subject and
// returns the other live viewers. Re-registering overwrites the heartbeat
// timestamp; it never duplicates the entry.
func (t *Tracker) Register(subjectID string, viewer Viewer) []ViewerInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.sweep(now)

	viewers, ok := t.subjects[subjectID]
	if !ok {
		viewers = make(map[string]entry)
		t.subjects[subjectID] = viewers
	}
	viewers[viewer.ID] = entry{viewer: viewer, lastSeen: now}

	return t.collect(subjectID, viewer.ID)
}

// Get returns the subject's live viewers, excluding excludeViewerID when
// non-empty. The staleness sweep runs first.
func (t *Tracker) Get(subjectID, excludeViewerID string) []ViewerInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sweep(time.Now())
	return t.collect(subjectID, excludeViewerID)
}

// Remove drops the viewer's entry on a graceful leave. The subject's whole
// container goes with it once empty, keeping memory bounded.
func (t *Tracker) Remove(subjectID, viewerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	viewers, ok := t.subjects[subjectID]
	if !ok {
		return
	}
	delete(viewers, viewerID)
	if len(viewers) == 0 {
		delete(t.subjects, subjectID)
	}
}

// sweep drops every entry whose heartbeat exceeded the timeout, then drops
// empty subjects. O(total entries), which is fine at per-ticket viewer
// counts. Caller holds the mutex.
func (t *Tracker) sweep(now time.Time) {
	for subjectID, viewers := range t.subjects {
		for viewerID, e := range viewers {
			if now.Sub(e.lastSeen) >= t.timeout {
				delete(viewers, viewerID)
			}
		}
		if len(viewers) == 0 {
			delete(t.subjects, subjectID)
		}
	}
}

// collect snapshots the subject's viewers, minus the excluded one, sorted
// by id for stable output. Caller holds the mutex and has already swept.
func (t *Tracker) collect(subjectID, excludeViewerID string) []ViewerInfo {
	viewers := t.subjects[subjectID]
	result := make([]ViewerInfo, 0, len(viewers))
	for viewerID, e := range viewers {
		if viewerID == excludeViewerID {
			continue
		}
		result = append(result, ViewerInfo{
			ID:       e.viewer.ID,
			Name:     e.viewer.Name,
			Initials: Initials(e.viewer.Name),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Initials derives the avatar initials from a display name: first letter of
// each whitespace-separated token, uppercased, at most two characters.
func Initials(name string) string {
	var initials []rune
	for _, token := range strings.Fields(name) {
		initials = append(initials, unicode.ToUpper([]rune(token)[0]))
		if len(initials) == 2 {
			break
		}
	}
	return string(initials)
}
