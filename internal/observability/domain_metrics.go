package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	pipelineRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "askdb_pipeline_requests_total",
			Help: "Total number of question pipeline runs started.",
		},
	)
	pipelineFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "askdb_pipeline_failures_total",
			Help: "Pipeline runs aborted, by stage.",
		},
		[]string{"stage"},
	)
	completionLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "askdb_completion_latency_seconds",
			Help:    "Language model completion latency, by prompt kind.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"prompt"},
	)
	queryDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "askdb_query_duration_seconds",
			Help:    "Generated query execution time against the database.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
	queryTimeoutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "askdb_query_timeouts_total",
			Help: "Executions that exceeded the wall-clock budget.",
		},
	)
	verificationStatusTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "askdb_verification_status_total",
			Help: "Verification outcomes, by classified status.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		pipelineRequestsTotal,
		pipelineFailuresTotal,
		completionLatencySeconds,
		queryDurationSeconds,
		queryTimeoutsTotal,
		verificationStatusTotal,
	)
}

func ObservePipelineStart() {
	pipelineRequestsTotal.Inc()
}

func ObservePipelineFailure(stage string) {
	pipelineFailuresTotal.WithLabelValues(stage).Inc()
}

func ObserveCompletion(prompt string, elapsed time.Duration) {
	completionLatencySeconds.WithLabelValues(prompt).Observe(elapsed.Seconds())
}

func ObserveQueryDuration(elapsed time.Duration, timedOut bool) {
	queryDurationSeconds.Observe(elapsed.Seconds())
	if timedOut {
		queryTimeoutsTotal.Inc()
	}
}

func ObserveVerificationStatus(status string) {
	verificationStatusTotal.WithLabelValues(status).Inc()
}
