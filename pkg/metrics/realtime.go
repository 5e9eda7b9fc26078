package metrics

// RealtimeMetrics provides observability for the realtime event server.
// Pass nil to disable collection with zero overhead.
type RealtimeMetrics interface {
	// ConnectionOpened increments the live connection gauge.
	ConnectionOpened()

	// ConnectionClosed decrements the live connection gauge.
	ConnectionClosed()

	// RecordInbound counts a processed inbound message by envelope name.
	RecordInbound(name string)

	// RecordOutbound counts a frame handed to a connection's send queue.
	RecordOutbound(name string)

	// RecordDropped counts a frame dropped because a connection's send
	// queue was full.
	RecordDropped()

	// RecordBroadcast records a fan-out.
	//
	// Parameters:
	//   - channelKind: "global" or "domain"
	//   - receivers: number of connections the event was queued for
	RecordBroadcast(channelKind string, receivers int)

	// SetEventLogSize updates the event log length gauge.
	SetEventLogSize(n int)

	// SetPresence updates the tracked-user gauge.
	SetPresence(n int)
}
