package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the application review workflow.
type Metrics struct {
	Submitted      prometheus.Counter
	Approved       prometheus.Counter
	Rejected       prometheus.Counter
	SearchDuration prometheus.Histogram
	SubmitDuration prometheus.Histogram
}

// New creates a Metrics instance with all workflow metrics registered.
func New() *Metrics {
	return &Metrics{
		Submitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "village_gate_applications_submitted_total",
			Help: "Total number of registration applications submitted",
		}),
		Approved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "village_gate_applications_approved_total",
			Help: "Total number of applications approved by an administrator",
		}),
		Rejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "village_gate_applications_rejected_total",
			Help: "Total number of applications rejected by an administrator",
		}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "village_gate_search_duration_seconds",
			Help:    "Duration of admin search queries against the store",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "village_gate_submit_duration_seconds",
			Help:    "Duration of application submission including persistence",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementSubmitted records a stored application. Nil-safe.
func (m *Metrics) IncrementSubmitted() {
	if m == nil {
		return
	}
	m.Submitted.Inc()
}

// IncrementApproved records an approval decision. Nil-safe.
func (m *Metrics) IncrementApproved() {
	if m == nil {
		return
	}
	m.Approved.Inc()
}

// IncrementRejected records a rejection decision. Nil-safe.
func (m *Metrics) IncrementRejected() {
	if m == nil {
		return
	}
	m.Rejected.Inc()
}

// ObserveSearch records the duration of a search operation started at start.
// Nil-safe.
func (m *Metrics) ObserveSearch(start time.Time) {
	if m == nil {
		return
	}
	m.SearchDuration.Observe(time.Since(start).Seconds())
}

// ObserveSubmit records the duration of a submission started at start.
// Nil-safe.
func (m *Metrics) ObserveSubmit(start time.Time) {
	if m == nil {
		return
	}
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}
