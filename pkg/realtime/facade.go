package realtime

import (
	"time"

	"github.com/tesseralab/tessera/internal/logger"
)

// Broadcaster is the producer-facing slice of the realtime server.
type Broadcaster interface {
	Publish(evt *Event) int
	EventsSince(t time.Time) []*Event
	ActiveUsers() []PresenceRecord
}

// Notifier is the stateless producer API the surrounding application
// uses to publish domain events. It is non-blocking and nil-safe: with
// no broadcaster attached every call is a logged no-op, so producers
// never see transport-layer errors.
type Notifier struct {
	broadcaster Broadcaster
}

// NewNotifier creates a notifier. The broadcaster may be nil.
func NewNotifier(b Broadcaster) *Notifier {
	return &Notifier{broadcaster: b}
}

// NotifyTileCreated publishes a tile:created event, scoped to the
// domain in data when present.
func (n *Notifier) NotifyTileCreated(tileID string, data map[string]any, userID string) {
	n.publishTile(EventTileCreated, tileID, data, userID)
}

// NotifyTileUpdated publishes a tile:updated event.
func (n *Notifier) NotifyTileUpdated(tileID string, data map[string]any, userID string) {
	n.publishTile(EventTileUpdated, tileID, data, userID)
}

// NotifyTileDeleted publishes a tile:deleted event on the given domain.
func (n *Notifier) NotifyTileDeleted(tileID, domain, userID string) {
	n.publish(&Event{
		Type:    EventTileDeleted,
		UserID:  userID,
		Channel: domain,
		Data:    map[string]any{"tileId": tileID},
	})
}

// NotifyInferenceSaved publishes an inference:saved event.
func (n *Notifier) NotifyInferenceSaved(tileID string, data map[string]any, userID string) {
	n.publishTile(EventInferenceSaved, tileID, data, userID)
}

// UserAction describes a user-initiated action for fan-out.
type UserAction struct {
	UserID  string         `json:"userId"`
	Action  string         `json:"action"`
	Domain  string         `json:"domain,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// PublishUserAction publishes a user:action event, domain-scoped when a
// domain is given.
func (n *Notifier) PublishUserAction(action UserAction) {
	data := map[string]any{"action": action.Action}
	if action.Details != nil {
		data["details"] = action.Details
	}
	n.publish(&Event{
		Type:    EventUserAction,
		UserID:  action.UserID,
		Channel: action.Domain,
		Data:    data,
	})
}

// BroadcastSearchActivity sends a fire-and-forget awareness ping that a
// user is searching.
func (n *Notifier) BroadcastSearchActivity(userID, query, domain string) {
	n.publish(&Event{
		Type:    EventActivityUpdate,
		UserID:  userID,
		Channel: domain,
		Data: map[string]any{
			"kind":  "search",
			"query": query,
		},
	})
}

// BroadcastInferenceActivity sends a fire-and-forget awareness ping
// that a user is running an inference.
func (n *Notifier) BroadcastInferenceActivity(userID, question, domain string) {
	n.publish(&Event{
		Type:    EventActivityUpdate,
		UserID:  userID,
		Channel: domain,
		Data: map[string]any{
			"kind":     "inference",
			"question": question,
		},
	})
}

// EventsSince returns events newer than t for reconnect catch-up, or
// nil with no broadcaster attached.
func (n *Notifier) EventsSince(t time.Time) []*Event {
	if n == nil || n.broadcaster == nil {
		return nil
	}
	return n.broadcaster.EventsSince(t)
}

// ActiveUsers returns the current presence snapshot, or nil with no
// broadcaster attached.
func (n *Notifier) ActiveUsers() []PresenceRecord {
	if n == nil || n.broadcaster == nil {
		return nil
	}
	return n.broadcaster.ActiveUsers()
}

func (n *Notifier) publishTile(t EventType, tileID string, data map[string]any, userID string) {
	if data == nil {
		data = map[string]any{}
	}
	data["tileId"] = tileID

	domain, _ := data["domain"].(string)
	n.publish(&Event{
		Type:    t,
		UserID:  userID,
		Channel: domain,
		Data:    data,
	})
}

func (n *Notifier) publish(evt *Event) {
	if n == nil || n.broadcaster == nil {
		logger.Debug("no broadcaster attached, event dropped",
			logger.KeyEventType, string(evt.Type),
		)
		return
	}
	n.broadcaster.Publish(evt)
}
