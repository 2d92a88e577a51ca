// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// GenerationLookups counts collaborator calls by outcome: ok or a collaborator reason.
	GenerationLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solar_generation_lookups_total",
			Help: "Generation lookups by outcome",
		},
		[]string{"outcome"},
	)

	GenerationLookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "solar_generation_lookup_duration_seconds",
			Help:    "Latency of generation lookups",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	AnalysesComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "solar_analyses_computed_total",
			Help: "Investment analyses computed",
		},
	)

	BreakevenUndefined = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "solar_breakeven_undefined_total",
			Help: "Analyses whose total annual benefit was zero",
		},
	)

	StaleResponsesDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "solar_stale_responses_discarded_total",
			Help: "Lookup results dropped because a newer request was active",
		},
	)
)
