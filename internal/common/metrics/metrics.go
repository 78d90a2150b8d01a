// internal/common/metrics/metrics.go
package metrics

import (
	"time"

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

	OnboardingProgress = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onboarding_progress_percentage",
			Help:    "Completion percentage of evaluated onboarding applications",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"employment_type"},
	)

	FormTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_form_transitions_total",
			Help: "Form status transitions applied, by action and resulting status",
		},
		[]string{"action", "status"},
	)

	SnapshotCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_snapshot_cache_lookups_total",
			Help: "Snapshot cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

func RecordCompleted(taskType string) {
	WorkerJobsCompleted.WithLabelValues(taskType).Inc()
}

func RecordFailed(taskType, errorCode string) {
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}

func ObserveDuration(taskType string, d time.Duration) {
	WorkerJobDuration.WithLabelValues(taskType).Observe(d.Seconds())
}

// ObserveProgress records an evaluated completion percentage. Applications
// without an employment type are reported as "unset".
func ObserveProgress(employmentType string, percentage int) {
	if employmentType == "" {
		employmentType = "unset"
	}
	OnboardingProgress.WithLabelValues(employmentType).Observe(float64(percentage))
}
