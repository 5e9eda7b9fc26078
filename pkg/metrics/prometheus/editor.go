package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tesseralab/tessera/pkg/metrics"
)

// editorMetrics is the Prometheus implementation of metrics.EditorMetrics.
type editorMetrics struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	lockAttempts      *prometheus.CounterVec
	documents         prometheus.Gauge
	activeSessions    prometheus.Gauge
}

// NewEditorMetrics creates a new Prometheus-backed EditorMetrics instance.
//
// Returns nil if metrics are not enabled (Init not called).
func NewEditorMetrics() metrics.EditorMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &editorMetrics{
		operations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tessera_editor_operations_total",
				Help: "Total number of apply attempts by operation type and outcome",
			},
			[]string{"op_type", "outcome"}, // outcome: "ok", "not_found", "locked", "path_error", "mutate_error"
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "tessera_editor_operation_duration_milliseconds",
				Help: "Time spent inside the apply critical section in milliseconds",
				Buckets: []float64{
					0.01, // 10us - small documents
					0.05, // 50us
					0.1,  // 100us
					0.5,  // 500us
					1,    // 1ms
					5,    // 5ms
					10,   // 10ms - large documents
					50,   // 50ms
				},
			},
			[]string{"op_type"},
		),
		lockAttempts: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tessera_editor_lock_attempts_total",
				Help: "Total number of path lock acquire attempts by outcome",
			},
			[]string{"outcome"}, // outcome: "acquired", "renewed", "conflict"
		),
		documents: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "tessera_editor_documents",
				Help: "Current number of documents held by the store",
			},
		),
		activeSessions: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "tessera_editor_active_sessions",
				Help: "Current number of live edit sessions",
			},
		),
	}
}

func (m *editorMetrics) RecordOperation(opType string, outcome string, duration time.Duration) {
	if m == nil {
		return
	}

	m.operations.WithLabelValues(opType, outcome).Inc()
	m.operationDuration.WithLabelValues(opType).Observe(duration.Seconds() * 1000)
}

func (m *editorMetrics) RecordLock(outcome string) {
	if m == nil {
		return
	}

	m.lockAttempts.WithLabelValues(outcome).Inc()
}

func (m *editorMetrics) SetDocuments(count int) {
	if m == nil {
		return
	}

	m.documents.Set(float64(count))
}

func (m *editorMetrics) SetActiveSessions(count int) {
	if m == nil {
		return
	}

	m.activeSessions.Set(float64(count))
}
