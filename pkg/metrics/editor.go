package metrics

import (
	"time"
)

// EditorMetrics provides observability for the collaborative editing
// engine. Pass nil to disable collection with zero overhead.
type EditorMetrics interface {
	// RecordOperation records a completed apply attempt.
	//
	// Parameters:
	//   - opType: "insert", "delete", or "update"
	//   - outcome: "ok", "not_found", "locked", "path_error", "mutate_error"
	//   - duration: time spent inside the apply critical section
	RecordOperation(opType string, outcome string, duration time.Duration)

	// RecordLock records a path lock acquire attempt.
	//
	// Parameters:
	//   - outcome: "acquired", "renewed", or "conflict"
	RecordLock(outcome string)

	// SetDocuments updates the current document count.
	SetDocuments(count int)

	// SetActiveSessions updates the current live session count.
	SetActiveSessions(count int)
}
