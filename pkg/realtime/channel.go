package realtime

import (
	"sync"

	"github.com/tesseralab/tessera/pkg/metrics"
)

// GlobalChannel is the implicit channel every connection belongs to.
const GlobalChannel = "global"

// DomainChannel returns the channel name for a domain.
func DomainChannel(domain string) string {
	return "domain:" + domain
}

// Subscriber receives fan-out frames. Enqueue must not block; it
// reports whether the frame was accepted.
type Subscriber interface {
	Enqueue(name string, payload any) bool
}

// Router maps channel names to subscriber sets.
//
// Broadcast holds the router mutex while enqueueing to every member, so
// two broadcasts on the same channel never interleave: each member sees
// them in the order the router processed them. Enqueue is a non-blocking
// channel send, so the critical section stays short.
type Router struct {
	mu       sync.Mutex
	channels map[string]map[Subscriber]struct{}

	metrics metrics.RealtimeMetrics
}

// NewRouter creates an empty channel router. Metrics may be nil.
func NewRouter(m metrics.RealtimeMetrics) *Router {
	return &Router{
		channels: make(map[string]map[Subscriber]struct{}),
		metrics:  m,
	}
}

// Register adds the subscriber to the global channel.
func (r *Router) Register(sub Subscriber) {
	r.Join(sub, GlobalChannel)
}

// Join adds the subscriber to a channel. Idempotent.
func (r *Router) Join(sub Subscriber, channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.channels[channel]
	if !ok {
		members = make(map[Subscriber]struct{})
		r.channels[channel] = members
	}
	members[sub] = struct{}{}
}

// Leave removes the subscriber from a channel. Idempotent; empty
// channels are dropped.
func (r *Router) Leave(sub Subscriber, channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(sub, channel)
}

// Unregister removes the subscriber from every channel, including the
// global one.
func (r *Router) Unregister(sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for channel := range r.channels {
		r.leaveLocked(sub, channel)
	}
}

// Broadcast delivers a frame to every current member of the channel and
// returns how many members received it. Unknown channels deliver to
// nobody.
func (r *Router) Broadcast(channel, name string, payload any) int {
	r.mu.Lock()
	n := 0
	for sub := range r.channels[channel] {
		if sub.Enqueue(name, payload) {
			n++
		}
	}
	r.mu.Unlock()

	if r.metrics != nil {
		kind := "domain"
		if channel == GlobalChannel {
			kind = "global"
		}
		r.metrics.RecordBroadcast(kind, n)
	}
	return n
}

// Members returns the current membership count of a channel.
func (r *Router) Members(channel string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.channels[channel])
}

func (r *Router) leaveLocked(sub Subscriber, channel string) {
	members, ok := r.channels[channel]
	if !ok {
		return
	}
	delete(members, sub)
	if len(members) == 0 {
		delete(r.channels, channel)
	}
}
