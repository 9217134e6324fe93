package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SubmissionsTotal     *prometheus.CounterVec
	VerificationDuration prometheus.Histogram
	AlertsAcknowledged   prometheus.Counter
	ConsoleRefreshes     *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SubmissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veridoc_submissions_total",
			Help: "Document submissions by outcome (complete, error, rejected)",
		}, []string{"outcome"}),
		VerificationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veridoc_verification_duration_seconds",
			Help:    "Wall time of one upload-to-verdict round trip",
			Buckets: prometheus.DefBuckets,
		}),
		AlertsAcknowledged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veridoc_alerts_acknowledged_total",
			Help: "Fraud alerts acknowledged from the operator console",
		}),
		ConsoleRefreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veridoc_console_refreshes_total",
			Help: "Console refresh attempts by result (ok, partial, failed)",
		}, []string{"result"}),
	}
}

// ObserveSubmission records one submission outcome with its duration.
// Nil-safe so services can run without metrics in tests.
func (m *Metrics) ObserveSubmission(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(outcome).Inc()
	m.VerificationDuration.Observe(elapsed.Seconds())
}

// IncrementAlertsAcknowledged counts one acknowledged alert.
func (m *Metrics) IncrementAlertsAcknowledged() {
	if m == nil {
		return
	}
	m.AlertsAcknowledged.Inc()
}

// ObserveConsoleRefresh counts one console refresh by result.
func (m *Metrics) ObserveConsoleRefresh(result string) {
	if m == nil {
		return
	}
	m.ConsoleRefreshes.WithLabelValues(result).Inc()
}
