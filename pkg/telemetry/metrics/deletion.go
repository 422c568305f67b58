package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DeletionMetrics tracks the deferred deletion lifecycle.
//
// Metrics:
//   - <ns>_deletion_requests_total: deletion requests by result
//   - <ns>_deletion_cancellations_total: cancellations by result
//   - <ns>_deletion_pending: deletions currently waiting for their deadline
//   - <ns>_deletion_sweeps_total: completed sweeps
//   - <ns>_deletion_sweep_duration_seconds: sweep duration histogram
//   - <ns>_deletion_purges_total: purges by result
//   - <ns>_deletion_purge_duration_seconds: purge duration histogram by result
//   - <ns>_deletion_snapshot_operations_total: snapshot loads and saves by result
//
// It satisfies both deletion.Observer and sweep.Observer.
type DeletionMetrics struct {
	requestsTotal      *prometheus.CounterVec
	cancellationsTotal *prometheus.CounterVec
	pending            prometheus.Gauge
	sweepsTotal        prometheus.Counter
	sweepDuration      prometheus.Histogram
	purgesTotal        *prometheus.CounterVec
	purgeDuration      *prometheus.HistogramVec
	snapshotOps        *prometheus.CounterVec
}

// NewDeletionMetrics creates and registers deletion metrics with registry.
func NewDeletionMetrics(namespace string, registry prometheus.Registerer) *DeletionMetrics {
	const subsystem = "deletion"

	m := &DeletionMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Total number of account deletion requests",
			},
			[]string{"result"},
		),

		cancellationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cancellations_total",
				Help:      "Total number of deletion cancellations",
			},
			[]string{"result"},
		),

		pending: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pending",
				Help:      "Number of deletions waiting for their deadline",
			},
		),

		sweepsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sweeps_total",
				Help:      "Total number of completed sweeps",
			},
		),

		sweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sweep_duration_seconds",
				Help:      "Duration of sweeps in seconds",
				Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 30, 120, 600},
			},
		),

		purgesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "purges_total",
				Help:      "Total number of account purges",
			},
			[]string{"result"},
		),

		purgeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "purge_duration_seconds",
				Help:      "Duration of account purges in seconds",
				Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"result"},
		),

		snapshotOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "snapshot_operations_total",
				Help:      "Total number of registry snapshot loads and saves",
			},
			[]string{"operation", "result"},
		),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.cancellationsTotal,
		m.pending,
		m.sweepsTotal,
		m.sweepDuration,
		m.purgesTotal,
		m.purgeDuration,
		m.snapshotOps,
	)

	return m
}

// ObserveRequest records a deletion request outcome.
func (m *DeletionMetrics) ObserveRequest(result string) {
	m.requestsTotal.WithLabelValues(result).Inc()
}

// ObserveCancel records a cancellation.
func (m *DeletionMetrics) ObserveCancel(removed bool) {
	result := "noop"
	if removed {
		result = "removed"
	}
	m.cancellationsTotal.WithLabelValues(result).Inc()
}

// SetPending sets the number of pending deletions.
func (m *DeletionMetrics) SetPending(n int) {
	m.pending.Set(float64(n))
}

// ObserveSweep records a completed sweep.
func (m *DeletionMetrics) ObserveSweep(duration time.Duration, purged, failed int) {
	m.sweepsTotal.Inc()
	m.sweepDuration.Observe(duration.Seconds())
}

// ObservePurge records a single purge.
func (m *DeletionMetrics) ObservePurge(result string, duration time.Duration) {
	m.purgesTotal.WithLabelValues(result).Inc()
	m.purgeDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// ObserveSnapshot records a snapshot load or save.
func (m *DeletionMetrics) ObserveSnapshot(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.snapshotOps.WithLabelValues(operation, result).Inc()
}
