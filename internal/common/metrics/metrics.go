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
)

// Page generation
var (
	Decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagegen_decisions_total",
			Help: "Pipeline decisions by match tier and whether the page was enhanced",
		},
		[]string{"tier", "enhanced"},
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pagegen_pipeline_duration_seconds",
			Help:    "End to end duration of one prompt",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagegen_provider_calls_total",
			Help: "Provider invocations by outcome",
		},
		[]string{"provider", "result"},
	)

	ProviderSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagegen_provider_skipped_total",
			Help: "Provider slots skipped without an invocation",
		},
		[]string{"provider", "reason"},
	)

	FallbackGenerations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pagegen_fallback_generations_total",
			Help: "Pages produced by the local generator",
		},
	)
)
