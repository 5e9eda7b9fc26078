package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements for log aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Documents & Operations
	// ========================================================================
	KeyDocumentID  = "document_id"  // Document identifier
	KeyRevision    = "revision"     // Document revision number
	KeyOperationID = "operation_id" // Committed operation identifier
	KeyOpType      = "op_type"      // Operation type: insert, delete, update
	KeyPath        = "path"         // Dotted content path the operation targets
	KeyHash        = "hash"         // Content digest

	// ========================================================================
	// Sessions & Users
	// ========================================================================
	KeySessionID = "session_id" // Edit session identifier
	KeyClientID  = "client_id"  // Client (device) identifier
	KeyUserID    = "user_id"    // User identifier
	KeyUsername  = "username"   // Display name
	KeyCursor    = "cursor"     // Cursor position within the document
	KeyDevices   = "devices"    // Connected device count for a user

	// ========================================================================
	// Realtime Transport
	// ========================================================================
	KeyConnectionID = "connection_id" // WebSocket connection identifier
	KeyRemoteAddr   = "remote_addr"   // Client remote address
	KeyChannel      = "channel"       // Channel name (domain channels)
	KeyChannelKind  = "channel_kind"  // "global" or "domain"
	KeyEventID      = "event_id"      // Broadcast event identifier
	KeyEventType    = "event_type"    // Broadcast event type
	KeyEnvelope     = "envelope"      // Inbound/outbound envelope name
	KeyReceivers    = "receivers"     // Number of connections reached by a fan-out

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Numeric error code
	KeyCount      = "count"       // Generic count
)

// ============================================================================
// Field constructors for type safety
// These functions provide type-safe construction of slog.Attr values.
// ============================================================================

// ----------------------------------------------------------------------------
// Distributed Tracing
// ----------------------------------------------------------------------------

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// ----------------------------------------------------------------------------
// Documents & Operations
// ----------------------------------------------------------------------------

// DocumentID returns a slog.Attr for a document identifier
func DocumentID(id string) slog.Attr {
	return slog.String(KeyDocumentID, id)
}

// Revision returns a slog.Attr for a document revision
func Revision(rev int64) slog.Attr {
	return slog.Int64(KeyRevision, rev)
}

// OperationID returns a slog.Attr for a committed operation identifier
func OperationID(id string) slog.Attr {
	return slog.String(KeyOperationID, id)
}

// OpType returns a slog.Attr for an operation type
func OpType(t string) slog.Attr {
	return slog.String(KeyOpType, t)
}

// Path returns a slog.Attr for a dotted content path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Hash returns a slog.Attr for a content digest
func Hash(h string) slog.Attr {
	return slog.String(KeyHash, h)
}

// ----------------------------------------------------------------------------
// Sessions & Users
// ----------------------------------------------------------------------------

// SessionID returns a slog.Attr for an edit session identifier
func SessionID(id string) slog.Attr {
	return slog.String(KeySessionID, id)
}

// ClientID returns a slog.Attr for a client identifier
func ClientID(id string) slog.Attr {
	return slog.String(KeyClientID, id)
}

// UserID returns a slog.Attr for a user identifier
func UserID(id string) slog.Attr {
	return slog.String(KeyUserID, id)
}

// Username returns a slog.Attr for a display name
func Username(name string) slog.Attr {
	return slog.String(KeyUsername, name)
}

// Cursor returns a slog.Attr for a cursor position
func Cursor(pos int) slog.Attr {
	return slog.Int(KeyCursor, pos)
}

// Devices returns a slog.Attr for a connected device count
func Devices(n int) slog.Attr {
	return slog.Int(KeyDevices, n)
}

// ----------------------------------------------------------------------------
// Realtime Transport
// ----------------------------------------------------------------------------

// ConnectionID returns a slog.Attr for a WebSocket connection identifier
func ConnectionID(id string) slog.Attr {
	return slog.String(KeyConnectionID, id)
}

// RemoteAddr returns a slog.Attr for a client remote address
func RemoteAddr(addr string) slog.Attr {
	return slog.String(KeyRemoteAddr, addr)
}

// Channel returns a slog.Attr for a channel name
func Channel(name string) slog.Attr {
	return slog.String(KeyChannel, name)
}

// ChannelKind returns a slog.Attr for a channel kind ("global" or "domain")
func ChannelKind(kind string) slog.Attr {
	return slog.String(KeyChannelKind, kind)
}

// EventID returns a slog.Attr for a broadcast event identifier
func EventID(id string) slog.Attr {
	return slog.String(KeyEventID, id)
}

// EventType returns a slog.Attr for a broadcast event type
func EventType(t string) slog.Attr {
	return slog.String(KeyEventType, t)
}

// Envelope returns a slog.Attr for an envelope name
func Envelope(name string) slog.Attr {
	return slog.String(KeyEnvelope, name)
}

// Receivers returns a slog.Attr for a fan-out receiver count
func Receivers(n int) slog.Attr {
	return slog.Int(KeyReceivers, n)
}

// ----------------------------------------------------------------------------
// Operation Metadata
// ----------------------------------------------------------------------------

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for numeric error code
func ErrorCode(code int) slog.Attr {
	return slog.Int(KeyErrorCode, code)
}

// Count returns a slog.Attr for a generic count
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}
