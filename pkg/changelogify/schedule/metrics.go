package schedule

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Run results used as the "result" label.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics are the scheduler's Prometheus collectors. Create them once per
// registry; schedulers restarted after a settings change share them.
type Metrics struct {
	runs        *prometheus.CounterVec
	lastSuccess prometheus.Gauge
	duration    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "changelogify",
			Subsystem: "scheduler",
			Name:      "runs_total",
			Help:      "Scheduled release generations by result",
		}, []string{"result"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "changelogify",
			Subsystem: "scheduler",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix timestamp of the last successful scheduled run",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "changelogify",
			Subsystem: "scheduler",
			Name:      "run_duration_seconds",
			Help:      "Time spent in scheduled runs",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	// Pre-create both label values so they export as zero.
	m.runs.WithLabelValues(ResultSuccess)
	m.runs.WithLabelValues(ResultError)

	if reg != nil {
		reg.MustRegister(m.runs, m.lastSuccess, m.duration)
	}
	return m
}
