package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tesseralab/tessera/pkg/metrics"
)

// realtimeMetrics is the Prometheus implementation of metrics.RealtimeMetrics.
type realtimeMetrics struct {
	connections        prometheus.Gauge
	connectionsTotal   prometheus.Counter
	inboundMessages    *prometheus.CounterVec
	outboundMessages   *prometheus.CounterVec
	droppedMessages    prometheus.Counter
	broadcasts         *prometheus.CounterVec
	broadcastReceivers *prometheus.HistogramVec
	eventLogSize       prometheus.Gauge
	presence           prometheus.Gauge
}

// NewRealtimeMetrics creates a new Prometheus-backed RealtimeMetrics instance.
//
// Returns nil if metrics are not enabled (Init not called).
func NewRealtimeMetrics() metrics.RealtimeMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &realtimeMetrics{
		connections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "tessera_realtime_connections",
				Help: "Current number of live WebSocket connections",
			},
		),
		connectionsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "tessera_realtime_connections_total",
				Help: "Total number of WebSocket connections accepted",
			},
		),
		inboundMessages: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tessera_realtime_inbound_messages_total",
				Help: "Total number of processed inbound messages by envelope name",
			},
			[]string{"name"},
		),
		outboundMessages: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tessera_realtime_outbound_messages_total",
				Help: "Total number of frames queued for delivery by envelope name",
			},
			[]string{"name"},
		),
		droppedMessages: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "tessera_realtime_dropped_messages_total",
				Help: "Total number of frames dropped due to full send queues",
			},
		),
		broadcasts: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tessera_realtime_broadcasts_total",
				Help: "Total number of fan-outs by channel kind",
			},
			[]string{"channel_kind"}, // "global", "domain"
		),
		broadcastReceivers: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "tessera_realtime_broadcast_receivers",
				Help: "Distribution of receiver counts per fan-out",
				Buckets: []float64{
					1,
					5,
					10,
					50,
					100,
					500,
					1000,
				},
			},
			[]string{"channel_kind"},
		),
		eventLogSize: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "tessera_realtime_event_log_size",
				Help: "Current number of events retained in the replay log",
			},
		),
		presence: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "tessera_realtime_presence_users",
				Help: "Current number of users with at least one connected device",
			},
		),
	}
}

func (m *realtimeMetrics) ConnectionOpened() {
	if m == nil {
		return
	}

	m.connections.Inc()
	m.connectionsTotal.Inc()
}

func (m *realtimeMetrics) ConnectionClosed() {
	if m == nil {
		return
	}

	m.connections.Dec()
}

func (m *realtimeMetrics) RecordInbound(name string) {
	if m == nil {
		return
	}

	m.inboundMessages.WithLabelValues(name).Inc()
}

func (m *realtimeMetrics) RecordOutbound(name string) {
	if m == nil {
		return
	}

	m.outboundMessages.WithLabelValues(name).Inc()
}

func (m *realtimeMetrics) RecordDropped() {
	if m == nil {
		return
	}

	m.droppedMessages.Inc()
}

func (m *realtimeMetrics) RecordBroadcast(channelKind string, receivers int) {
	if m == nil {
		return
	}

	m.broadcasts.WithLabelValues(channelKind).Inc()
	m.broadcastReceivers.WithLabelValues(channelKind).Observe(float64(receivers))
}

func (m *realtimeMetrics) SetEventLogSize(n int) {
	if m == nil {
		return
	}

	m.eventLogSize.Set(float64(n))
}

func (m *realtimeMetrics) SetPresence(n int) {
	if m == nil {
		return
	}

	m.presence.Set(float64(n))
}
