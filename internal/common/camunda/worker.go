// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"onboarding-workers/internal/common/config"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/common/metrics"
	"onboarding-workers/internal/common/observability"
)

// Instrument wraps a job handler with the active-jobs gauge, duration
// metrics and a tracing span per job. Handlers record completion or
// failure themselves since only they know the outcome.
func Instrument(taskType string, handler worker.JobHandler, obs *observability.Observability) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		_, span := obs.StartSpan(context.Background(), taskType, job.Key)

		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer func() {
			elapsed := time.Since(start)
			metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
			metrics.ObserveDuration(taskType, elapsed)
			obs.RecordJobDuration(context.Background(), taskType, elapsed)
			obs.RecordJobProcessed(context.Background(), taskType, "handled")
			observability.EndSpan(span, nil)
		}()

		handler(client, job)
	}
}

// StartWorker opens a job worker for taskType unless it is disabled.
// It returns nil for disabled workers.
func StartWorker(
	client zbc.Client,
	taskType string,
	wcfg config.WorkerConfig,
	handler worker.JobHandler,
	obs *observability.Observability,
	log logger.Logger,
) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler, obs)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Name(taskType).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return jobWorker
}
