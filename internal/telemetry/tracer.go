package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for editing and realtime operations.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Client attributes
	// ========================================================================
	AttrClientAddr = "client.address"
	AttrClientID   = "client.id"

	// ========================================================================
	// Document attributes
	// ========================================================================
	AttrDocumentID  = "document.id"
	AttrRevision    = "document.revision"
	AttrHash        = "document.hash"
	AttrOperationID = "operation.id"
	AttrOpType      = "operation.type"
	AttrPath        = "operation.path"
	AttrPosition    = "operation.position"

	// ========================================================================
	// Session & presence attributes
	// ========================================================================
	AttrSessionID = "session.id"
	AttrUserID    = "user.id"
	AttrUsername  = "user.name"
	AttrStatus    = "user.status"
	AttrDevices   = "user.devices"

	// ========================================================================
	// Realtime attributes
	// ========================================================================
	AttrConnectionID = "connection.id"
	AttrChannel      = "channel.name"
	AttrChannelKind  = "channel.kind"
	AttrEventID      = "event.id"
	AttrEventType    = "event.type"
	AttrEnvelope     = "message.name"
	AttrReceivers    = "broadcast.receivers"
)

// Span names for operations.
// Format: <component>.<operation>
const (
	// ========================================================================
	// Editing engine spans
	// ========================================================================
	SpanDocCreate   = "editor.create_document"
	SpanDocApply    = "editor.apply_operation"
	SpanDocSnapshot = "editor.create_snapshot"
	SpanDocMerge    = "editor.merge_versions"
	SpanTransform   = "editor.transform"
	SpanLockAcquire = "editor.lock_acquire"
	SpanLockRelease = "editor.lock_release"

	// ========================================================================
	// Realtime spans
	// ========================================================================
	SpanWSConnect    = "realtime.connect"
	SpanWSDisconnect = "realtime.disconnect"
	SpanDispatch     = "realtime.dispatch"
	SpanBroadcast    = "realtime.broadcast"
	SpanPublish      = "realtime.publish"
)

// ClientAddr returns an attribute for the full client address
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// ClientID returns an attribute for a client (device) identifier
func ClientID(id string) attribute.KeyValue {
	return attribute.String(AttrClientID, id)
}

// DocumentID returns an attribute for a document identifier
func DocumentID(id string) attribute.KeyValue {
	return attribute.String(AttrDocumentID, id)
}

// Revision returns an attribute for a document revision
func Revision(rev int64) attribute.KeyValue {
	return attribute.Int64(AttrRevision, rev)
}

// Hash returns an attribute for a content digest
func Hash(h string) attribute.KeyValue {
	return attribute.String(AttrHash, h)
}

// OperationID returns an attribute for an operation identifier
func OperationID(id string) attribute.KeyValue {
	return attribute.String(AttrOperationID, id)
}

// OpType returns an attribute for an operation type
func OpType(t string) attribute.KeyValue {
	return attribute.String(AttrOpType, t)
}

// Path returns an attribute for an operation path
func Path(p string) attribute.KeyValue {
	return attribute.String(AttrPath, p)
}

// Position returns an attribute for an operation position
func Position(pos int) attribute.KeyValue {
	return attribute.Int(AttrPosition, pos)
}

// SessionID returns an attribute for an edit session identifier
func SessionID(id string) attribute.KeyValue {
	return attribute.String(AttrSessionID, id)
}

// UserID returns an attribute for a user identifier
func UserID(id string) attribute.KeyValue {
	return attribute.String(AttrUserID, id)
}

// Username returns an attribute for a display name
func Username(name string) attribute.KeyValue {
	return attribute.String(AttrUsername, name)
}

// UserStatus returns an attribute for a presence status
func UserStatus(status string) attribute.KeyValue {
	return attribute.String(AttrStatus, status)
}

// Devices returns an attribute for a connected device count
func Devices(n int) attribute.KeyValue {
	return attribute.Int(AttrDevices, n)
}

// ConnectionID returns an attribute for a connection identifier
func ConnectionID(id string) attribute.KeyValue {
	return attribute.String(AttrConnectionID, id)
}

// Channel returns an attribute for a channel name
func Channel(name string) attribute.KeyValue {
	return attribute.String(AttrChannel, name)
}

// ChannelKind returns an attribute for a channel kind ("global" or "domain")
func ChannelKind(kind string) attribute.KeyValue {
	return attribute.String(AttrChannelKind, kind)
}

// EventID returns an attribute for an event identifier
func EventID(id string) attribute.KeyValue {
	return attribute.String(AttrEventID, id)
}

// EventType returns an attribute for an event type
func EventType(t string) attribute.KeyValue {
	return attribute.String(AttrEventType, t)
}

// Envelope returns an attribute for an envelope name
func Envelope(name string) attribute.KeyValue {
	return attribute.String(AttrEnvelope, name)
}

// Receivers returns an attribute for a fan-out receiver count
func Receivers(n int) attribute.KeyValue {
	return attribute.Int(AttrReceivers, n)
}

// StartApplySpan starts a span for an operation apply.
// This is a convenience function that sets common attributes.
func StartApplySpan(ctx context.Context, documentID, opType string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		DocumentID(documentID),
		OpType(opType),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, SpanDocApply, trace.WithAttributes(allAttrs...))
}

// StartDispatchSpan starts a span for an inbound message dispatch.
func StartDispatchSpan(ctx context.Context, connectionID, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		ConnectionID(connectionID),
		Envelope(name),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, SpanDispatch, trace.WithAttributes(allAttrs...))
}

// StartBroadcastSpan starts a span for a channel fan-out.
func StartBroadcastSpan(ctx context.Context, channel string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		Channel(channel),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, SpanBroadcast, trace.WithAttributes(allAttrs...))
}
