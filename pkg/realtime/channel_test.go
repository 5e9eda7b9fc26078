package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSubscriber records enqueued frames; full simulates a saturated
// send queue.
type fakeSubscriber struct {
	frames []frame
	full   bool
}

func (f *fakeSubscriber) Enqueue(name string, payload any) bool {
	if f.full {
		return false
	}
	f.frames = append(f.frames, frame{Name: name, Payload: payload})
	return true
}

func TestDomainChannel(t *testing.T) {
	assert.Equal(t, "domain:physics", DomainChannel("physics"))
}

func TestRouterRegisterJoinsGlobal(t *testing.T) {
	r := NewRouter(nil)
	sub := &fakeSubscriber{}

	r.Register(sub)
	assert.Equal(t, 1, r.Members(GlobalChannel))

	n := r.Broadcast(GlobalChannel, "hello", nil)
	assert.Equal(t, 1, n)
	require.Len(t, sub.frames, 1)
	assert.Equal(t, "hello", sub.frames[0].Name)
}

func TestRouterJoinLeave(t *testing.T) {
	r := NewRouter(nil)
	sub := &fakeSubscriber{}
	ch := DomainChannel("physics")

	r.Join(sub, ch)
	r.Join(sub, ch) // idempotent
	assert.Equal(t, 1, r.Members(ch))

	r.Leave(sub, ch)
	assert.Equal(t, 0, r.Members(ch))

	// Leaving again, or leaving an unknown channel, is a no-op.
	r.Leave(sub, ch)
	r.Leave(sub, "domain:ghost")
}

func TestRouterBroadcastScoping(t *testing.T) {
	r := NewRouter(nil)
	inPhysics := &fakeSubscriber{}
	inMath := &fakeSubscriber{}

	r.Register(inPhysics)
	r.Register(inMath)
	r.Join(inPhysics, DomainChannel("physics"))
	r.Join(inMath, DomainChannel("math"))

	n := r.Broadcast(DomainChannel("physics"), "evt", "payload")
	assert.Equal(t, 1, n)
	assert.Len(t, inPhysics.frames, 1)
	assert.Empty(t, inMath.frames)

	// Global reaches both.
	n = r.Broadcast(GlobalChannel, "evt", "payload")
	assert.Equal(t, 2, n)
}

func TestRouterBroadcastUnknownChannel(t *testing.T) {
	r := NewRouter(nil)
	assert.Equal(t, 0, r.Broadcast("domain:nowhere", "evt", nil))
}

func TestRouterBroadcastCountsOnlyAccepted(t *testing.T) {
	r := NewRouter(nil)
	ok := &fakeSubscriber{}
	saturated := &fakeSubscriber{full: true}

	r.Register(ok)
	r.Register(saturated)

	// The saturated subscriber drops the frame and is not counted.
	n := r.Broadcast(GlobalChannel, "evt", nil)
	assert.Equal(t, 1, n)
}

func TestRouterOrderingPerChannel(t *testing.T) {
	r := NewRouter(nil)
	sub := &fakeSubscriber{}
	r.Register(sub)

	r.Broadcast(GlobalChannel, "first", nil)
	r.Broadcast(GlobalChannel, "second", nil)
	r.Broadcast(GlobalChannel, "third", nil)

	require.Len(t, sub.frames, 3)
	assert.Equal(t, "first", sub.frames[0].Name)
	assert.Equal(t, "second", sub.frames[1].Name)
	assert.Equal(t, "third", sub.frames[2].Name)
}

func TestRouterUnregister(t *testing.T) {
	r := NewRouter(nil)
	sub := &fakeSubscriber{}
	other := &fakeSubscriber{}

	r.Register(sub)
	r.Register(other)
	r.Join(sub, DomainChannel("physics"))
	r.Join(sub, DomainChannel("math"))

	r.Unregister(sub)

	assert.Equal(t, 1, r.Members(GlobalChannel))
	assert.Equal(t, 0, r.Members(DomainChannel("physics")))
	assert.Equal(t, 0, r.Members(DomainChannel("math")))

	n := r.Broadcast(GlobalChannel, "evt", nil)
	assert.Equal(t, 1, n)
	assert.Empty(t, sub.frames)
}
