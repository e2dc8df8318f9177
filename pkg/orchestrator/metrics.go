package orchestrator

import "github.com/prometheus/client_golang/prometheus"

// Metric label values for job outcomes.
const (
	outcomeSucceeded = "succeeded"
	outcomeFailed    = "failed"
)

// Metrics holds the orchestrator's instrumentation. Registration happens
// against a caller-supplied registry, never a global one.
type Metrics struct {
	submissionsTotal prometheus.Counter
	dedupTotal       prometheus.Counter
	jobsTotal        *prometheus.CounterVec
	retriesTotal     prometheus.Counter
	pollCyclesTotal  prometheus.Counter
	activeJobs       prometheus.Gauge
}

// NewMetrics builds and registers the orchestrator metrics. A nil registerer
// leaves the metrics unregistered but still usable.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "batchkit_submissions_total",
			Help: "Total number of jobs accepted by the job service.",
		}),
		dedupTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "batchkit_submissions_deduplicated_total",
			Help: "Total number of submissions suppressed by a live duplicate.",
		}),
		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batchkit_jobs_total",
			Help: "Total number of jobs reaching a terminal status.",
		}, []string{"outcome"}),
		retriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "batchkit_remote_retries_total",
			Help: "Total number of retried remote service calls.",
		}),
		pollCyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "batchkit_poll_cycles_total",
			Help: "Total number of status poll cycles.",
		}),
		activeJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "batchkit_active_jobs",
			Help: "Number of tracked jobs not yet in a terminal status.",
		}),
	}

	// Pre-initialize label combinations so they appear with value 0.
	m.jobsTotal.WithLabelValues(outcomeSucceeded)
	m.jobsTotal.WithLabelValues(outcomeFailed)

	if reg != nil {
		reg.MustRegister(
			m.submissionsTotal,
			m.dedupTotal,
			m.jobsTotal,
			m.retriesTotal,
			m.pollCyclesTotal,
			m.activeJobs,
		)
	}
	return m
}
