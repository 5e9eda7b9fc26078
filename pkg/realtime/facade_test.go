package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBroadcaster captures published events.
type fakeBroadcaster struct {
	events []*Event
	since  []*Event
	users  []PresenceRecord
}

func (f *fakeBroadcaster) Publish(evt *Event) int {
	f.events = append(f.events, evt)
	return 1
}

func (f *fakeBroadcaster) EventsSince(t time.Time) []*Event { return f.since }

func (f *fakeBroadcaster) ActiveUsers() []PresenceRecord { return f.users }

func TestNotifierTileEvents(t *testing.T) {
	t.Run("created injects tile id and domain scope", func(t *testing.T) {
		b := &fakeBroadcaster{}
		n := NewNotifier(b)

		n.NotifyTileCreated("tile-1", map[string]any{"domain": "physics", "title": "Quarks"}, "alice")

		require.Len(t, b.events, 1)
		evt := b.events[0]
		assert.Equal(t, EventTileCreated, evt.Type)
		assert.Equal(t, "alice", evt.UserID)
		assert.Equal(t, "physics", evt.Channel)
		assert.Equal(t, "tile-1", evt.Data["tileId"])
		assert.Equal(t, "Quarks", evt.Data["title"])
	})

	t.Run("nil data still carries tile id", func(t *testing.T) {
		b := &fakeBroadcaster{}
		n := NewNotifier(b)

		n.NotifyTileUpdated("tile-2", nil, "bob")

		require.Len(t, b.events, 1)
		evt := b.events[0]
		assert.Equal(t, EventTileUpdated, evt.Type)
		assert.Equal(t, "tile-2", evt.Data["tileId"])
		// No domain in data means global scope.
		assert.Empty(t, evt.Channel)
	})

	t.Run("deleted", func(t *testing.T) {
		b := &fakeBroadcaster{}
		n := NewNotifier(b)

		n.NotifyTileDeleted("tile-3", "math", "carol")

		require.Len(t, b.events, 1)
		evt := b.events[0]
		assert.Equal(t, EventTileDeleted, evt.Type)
		assert.Equal(t, "math", evt.Channel)
		assert.Equal(t, "tile-3", evt.Data["tileId"])
	})

	t.Run("inference saved", func(t *testing.T) {
		b := &fakeBroadcaster{}
		n := NewNotifier(b)

		n.NotifyInferenceSaved("tile-4", map[string]any{"domain": "physics"}, "alice")

		require.Len(t, b.events, 1)
		assert.Equal(t, EventInferenceSaved, b.events[0].Type)
	})
}

func TestNotifierUserAction(t *testing.T) {
	b := &fakeBroadcaster{}
	n := NewNotifier(b)

	n.PublishUserAction(UserAction{
		UserID:  "alice",
		Action:  "export",
		Domain:  "physics",
		Details: map[string]any{"format": "pdf"},
	})

	require.Len(t, b.events, 1)
	evt := b.events[0]
	assert.Equal(t, EventUserAction, evt.Type)
	assert.Equal(t, "physics", evt.Channel)
	assert.Equal(t, "export", evt.Data["action"])
	assert.Equal(t, map[string]any{"format": "pdf"}, evt.Data["details"])
}

func TestNotifierActivityPings(t *testing.T) {
	b := &fakeBroadcaster{}
	n := NewNotifier(b)

	n.BroadcastSearchActivity("alice", "entanglement", "physics")
	n.BroadcastInferenceActivity("bob", "why is the sky blue", "")

	require.Len(t, b.events, 2)

	search := b.events[0]
	assert.Equal(t, EventActivityUpdate, search.Type)
	assert.Equal(t, "search", search.Data["kind"])
	assert.Equal(t, "entanglement", search.Data["query"])
	assert.Equal(t, "physics", search.Channel)

	inference := b.events[1]
	assert.Equal(t, EventActivityUpdate, inference.Type)
	assert.Equal(t, "inference", inference.Data["kind"])
	assert.Equal(t, "why is the sky blue", inference.Data["question"])
	assert.Empty(t, inference.Channel)
}

func TestNotifierNilSafety(t *testing.T) {
	t.Run("nil broadcaster", func(t *testing.T) {
		n := NewNotifier(nil)
		assert.NotPanics(t, func() {
			n.NotifyTileCreated("tile-1", nil, "alice")
			n.PublishUserAction(UserAction{UserID: "alice", Action: "x"})
			n.BroadcastSearchActivity("alice", "q", "")
		})
		assert.Nil(t, n.EventsSince(time.Now()))
		assert.Nil(t, n.ActiveUsers())
	})

	t.Run("nil notifier", func(t *testing.T) {
		var n *Notifier
		assert.NotPanics(t, func() {
			n.NotifyTileDeleted("tile-1", "physics", "alice")
		})
		assert.Nil(t, n.EventsSince(time.Now()))
		assert.Nil(t, n.ActiveUsers())
	})
}

func TestNotifierPassthrough(t *testing.T) {
	b := &fakeBroadcaster{
		since: []*Event{{ID: "e1"}},
		users: []PresenceRecord{{UserID: "alice"}},
	}
	n := NewNotifier(b)

	assert.Len(t, n.EventsSince(time.Now()), 1)
	assert.Len(t, n.ActiveUsers(), 1)
}
