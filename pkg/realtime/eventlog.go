package realtime

import (
	"sync"
	"time"

	"github.com/tesseralab/tessera/pkg/metrics"
)

// DefaultMaxEventLog is the default event retention bound.
const DefaultMaxEventLog = 1000

// EventLog is an append-only, bounded buffer of recent events. When the
// bound is exceeded the oldest event is evicted. It is a catch-up aid
// for reconnecting clients, not a system of record: a process restart
// loses the log.
type EventLog struct {
	mu      sync.RWMutex
	events  []*Event
	max     int
	metrics metrics.RealtimeMetrics
}

// NewEventLog creates an event log bounded at max events. A non-positive
// max selects the default (1000). Metrics may be nil.
func NewEventLog(max int, m metrics.RealtimeMetrics) *EventLog {
	if max <= 0 {
		max = DefaultMaxEventLog
	}
	return &EventLog{
		max:     max,
		metrics: m,
	}
}

// Append records an event, evicting the oldest when the bound is hit.
func (l *EventLog) Append(evt *Event) {
	l.mu.Lock()
	l.events = append(l.events, evt)
	if len(l.events) > l.max {
		// Shift instead of re-slicing so the evicted entry is released.
		copy(l.events, l.events[1:])
		l.events[len(l.events)-1] = nil
		l.events = l.events[:len(l.events)-1]
	}
	n := len(l.events)
	l.mu.Unlock()

	if l.metrics != nil {
		l.metrics.SetEventLogSize(n)
	}
}

// Since returns the events with timestamp strictly greater than t, in
// insertion order.
func (l *EventLog) Since(t time.Time) []*Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*Event
	for _, evt := range l.events {
		if evt.Timestamp.After(t) {
			out = append(out, evt)
		}
	}
	return out
}

// Len returns the number of retained events.
func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}
