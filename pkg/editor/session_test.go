package editor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSessionRegistry returns a registry with a controllable clock.
func newTestSessionRegistry(idle time.Duration) (*SessionRegistry, *time.Time) {
	r := NewSessionRegistry(idle, 0, nil)
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	return r, &now
}

func TestCreateSession(t *testing.T) {
	r, _ := newTestSessionRegistry(30 * time.Second)

	s := r.CreateSession("alice", "client-1", "doc-1")
	assert.NotEmpty(t, s.SessionID)
	assert.Equal(t, "alice", s.UserID)
	assert.Equal(t, "client-1", s.ClientID)
	assert.Equal(t, "doc-1", s.DocumentID)
	assert.True(t, s.Active)
	assert.Equal(t, 0, s.CursorPosition)

	got, ok := r.Get("client-1")
	require.True(t, ok)
	assert.Equal(t, s.SessionID, got.SessionID)
}

func TestCreateSessionOverwritesPrior(t *testing.T) {
	r, _ := newTestSessionRegistry(30 * time.Second)

	first := r.CreateSession("alice", "client-1", "doc-1")
	second := r.CreateSession("alice", "client-1", "doc-2")
	assert.NotEqual(t, first.SessionID, second.SessionID)

	// Only the new session remains; the old document has no live session.
	assert.Empty(t, r.ActiveSessions("doc-1"))
	require.Len(t, r.ActiveSessions("doc-2"), 1)
}

func TestUpdateCursor(t *testing.T) {
	r, now := newTestSessionRegistry(30 * time.Second)

	r.CreateSession("alice", "client-1", "doc-1")

	*now = now.Add(10 * time.Second)
	assert.True(t, r.UpdateCursor("client-1", 42))

	got, ok := r.Get("client-1")
	require.True(t, ok)
	assert.Equal(t, 42, got.CursorPosition)
	assert.Equal(t, *now, got.LastActivity)

	assert.False(t, r.UpdateCursor("unknown", 1))
}

func TestEndSession(t *testing.T) {
	r, _ := newTestSessionRegistry(30 * time.Second)

	r.CreateSession("alice", "client-1", "doc-1")
	assert.True(t, r.EndSession("client-1"))

	// The record is retained but no longer live.
	got, ok := r.Get("client-1")
	require.True(t, ok)
	assert.False(t, got.Active)
	assert.Empty(t, r.ActiveSessions("doc-1"))

	assert.False(t, r.EndSession("unknown"))
}

func TestActiveSessionsIdleBoundary(t *testing.T) {
	r, now := newTestSessionRegistry(30 * time.Second)

	r.CreateSession("alice", "client-1", "doc-1")

	// Just under the idle timeout the session is still live.
	*now = now.Add(30*time.Second - time.Nanosecond)
	assert.Len(t, r.ActiveSessions("doc-1"), 1)
	assert.Equal(t, 1, r.LiveCount())

	// Exactly at the idle timeout it counts as expired.
	*now = now.Add(time.Nanosecond)
	assert.Empty(t, r.ActiveSessions("doc-1"))
	assert.Equal(t, 0, r.LiveCount())
}

func TestTouchKeepsSessionLive(t *testing.T) {
	r, now := newTestSessionRegistry(30 * time.Second)

	r.CreateSession("alice", "client-1", "doc-1")

	*now = now.Add(20 * time.Second)
	assert.True(t, r.Touch("client-1"))

	*now = now.Add(20 * time.Second)
	assert.Len(t, r.ActiveSessions("doc-1"), 1)

	assert.False(t, r.Touch("unknown"))
}

func TestActiveSessionsFiltersByDocument(t *testing.T) {
	r, _ := newTestSessionRegistry(30 * time.Second)

	r.CreateSession("alice", "client-1", "doc-1")
	r.CreateSession("bob", "client-2", "doc-1")
	r.CreateSession("carol", "client-3", "doc-2")

	assert.Len(t, r.ActiveSessions("doc-1"), 2)
	assert.Len(t, r.ActiveSessions("doc-2"), 1)
	assert.Empty(t, r.ActiveSessions("doc-3"))
	assert.Equal(t, 3, r.LiveCount())
}

func TestCleanupOldSessions(t *testing.T) {
	r, now := newTestSessionRegistry(30 * time.Second)

	r.CreateSession("alice", "client-1", "doc-1")
	*now = now.Add(20 * time.Second)
	r.CreateSession("bob", "client-2", "doc-1")

	// client-1 is 20s idle, client-2 is fresh.
	removed := r.CleanupOldSessions(20 * time.Second)
	assert.Equal(t, 1, removed)

	_, ok := r.Get("client-1")
	assert.False(t, ok)
	_, ok = r.Get("client-2")
	assert.True(t, ok)
}

func TestCleanupRemovesEndedSessions(t *testing.T) {
	r, now := newTestSessionRegistry(30 * time.Second)

	r.CreateSession("alice", "client-1", "doc-1")
	r.EndSession("client-1")

	*now = now.Add(time.Minute)
	assert.Equal(t, 1, r.CleanupOldSessions(30*time.Second))
	_, ok := r.Get("client-1")
	assert.False(t, ok)
}
