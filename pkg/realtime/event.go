// Package realtime implements the connection-oriented event bus: a
// WebSocket server with channel-scoped fan-out, presence tracking with
// multi-device semantics, and a bounded in-memory event log supporting
// time-anchored replay for reconnecting clients.
package realtime

import (
	"time"
)

// EventType enumerates the broadcast event kinds.
type EventType string

const (
	EventTileCreated       EventType = "tile:created"
	EventTileUpdated       EventType = "tile:updated"
	EventTileDeleted       EventType = "tile:deleted"
	EventInferenceSaved    EventType = "inference:saved"
	EventUserJoined        EventType = "user:joined"
	EventUserLeft          EventType = "user:left"
	EventUserAction        EventType = "user:action"
	EventUserSearching     EventType = "user:searching"
	EventUserInferring     EventType = "user:inferring"
	EventUserStatusChanged EventType = "user:status:changed"
	EventActivityUpdate    EventType = "activity:update"
)

// Event is a single broadcast unit. Data stays opaque at this boundary;
// producers are responsible for the shape of known event kinds. Channel,
// when set, names the domain the event is scoped to; empty means global.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
	UserID    string         `json:"userId"`
	Timestamp time.Time      `json:"timestamp"`
	Channel   string         `json:"channel,omitempty"`
}
