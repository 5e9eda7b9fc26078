package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPresence() (*PresenceRegistry, *time.Time) {
	r := NewPresenceRegistry(nil)
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	return r, &now
}

func TestPresenceJoin(t *testing.T) {
	r, _ := newTestPresence()

	rec, first := r.Join("alice", "Alice")
	assert.True(t, first)
	assert.Equal(t, 1, rec.ConnectedDevices)
	assert.Equal(t, StatusOnline, rec.Status)
	assert.Equal(t, "Alice", rec.Username)
	assert.Equal(t, 1, r.Count())
}

func TestPresenceMultiDevice(t *testing.T) {
	r, _ := newTestPresence()

	_, first := r.Join("alice", "Alice")
	assert.True(t, first)

	rec, first := r.Join("alice", "Alice")
	assert.False(t, first)
	assert.Equal(t, 2, rec.ConnectedDevices)
	// Two devices, still one user.
	assert.Equal(t, 1, r.Count())

	// First leave keeps the record.
	res := r.Leave("alice")
	assert.False(t, res.Departed)
	assert.Equal(t, 1, res.Devices)
	_, ok := r.Get("alice")
	assert.True(t, ok)

	// Last leave removes it.
	res = r.Leave("alice")
	assert.True(t, res.Departed)
	_, ok = r.Get("alice")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Count())
}

func TestPresenceLeaveUnknown(t *testing.T) {
	r, _ := newTestPresence()

	res := r.Leave("ghost")
	assert.False(t, res.Departed)
	assert.Equal(t, 0, res.Devices)
}

func TestPresenceJoinForcesOnline(t *testing.T) {
	r, _ := newTestPresence()

	r.Join("alice", "Alice")
	require.True(t, r.SetStatus("alice", StatusIdle))

	// A new device joining snaps the user back to online.
	rec, _ := r.Join("alice", "Alice")
	assert.Equal(t, StatusOnline, rec.Status)
}

func TestPresenceSetStatus(t *testing.T) {
	r, now := newTestPresence()

	r.Join("alice", "Alice")
	*now = now.Add(time.Minute)

	require.True(t, r.SetStatus("alice", StatusIdle))
	rec, ok := r.Get("alice")
	require.True(t, ok)
	assert.Equal(t, StatusIdle, rec.Status)
	assert.Equal(t, *now, rec.LastSeen)

	assert.False(t, r.SetStatus("ghost", StatusIdle))
}

func TestPresenceListSorted(t *testing.T) {
	r, _ := newTestPresence()

	r.Join("carol", "Carol")
	r.Join("alice", "Alice")
	r.Join("bob", "Bob")

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "alice", list[0].UserID)
	assert.Equal(t, "bob", list[1].UserID)
	assert.Equal(t, "carol", list[2].UserID)
}
