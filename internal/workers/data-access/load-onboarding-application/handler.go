// internal/workers/data-access/load-onboarding-application/handler.go
package loadonboardingapplication

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"onboarding-workers/internal/common/database"
	apperrors "onboarding-workers/internal/common/errors"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/common/metrics"
	"onboarding-workers/internal/onboarding"
	"onboarding-workers/internal/workers/data-access/load-onboarding-application/queries"
)

const (
	TaskType = "load-onboarding-application"
)

type Handler struct {
	config       *Config
	db           *sql.DB
	cache        *database.RedisClient
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewHandler builds the handler. cache may be nil, in which case every job
// reads from Postgres.
func NewHandler(config *Config, db *sql.DB, cache *database.RedisClient, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
		cache:        cache,
		logger:       scoped,
		errorHandler: apperrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, apperrors.NewInputValidationFailedError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" {
		return nil, apperrors.NewInputValidationFailedError("applicationId is required")
	}

	if !input.BypassCache {
		if snapshot, ok := h.readCache(ctx, input.ApplicationID); ok {
			return newOutput(snapshot, true), nil
		}
	}

	// read the version before the rows so a change committed in between
	// keeps this snapshot out of the cache
	version, cacheable := h.snapshotVersion(ctx, input.ApplicationID)

	snapshot, err := queries.LoadSnapshot(ctx, h.db, input.ApplicationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewApplicationNotFoundError(input.ApplicationID)
	}
	if err != nil {
		return nil, database.QueryError(ctx, "load_onboarding_application", err)
	}

	if cacheable {
		h.writeCache(ctx, input.ApplicationID, snapshot, version)
	}

	h.logger.Info("application loaded", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"formCount":     len(snapshot.Forms),
	})

	return newOutput(snapshot, false), nil
}

// readCache never fails the job: a broken cache degrades to a database read.
func (h *Handler) readCache(ctx context.Context, applicationID string) (*onboarding.Snapshot, bool) {
	if h.cache == nil {
		return nil, false
	}

	var snapshot onboarding.Snapshot
	err := h.cache.GetJSON(ctx, database.SnapshotCacheKey(applicationID), &snapshot)
	switch {
	case err == nil:
		metrics.SnapshotCacheLookups.WithLabelValues("hit").Inc()
		return &snapshot, true
	case errors.Is(err, database.ErrCacheMiss):
		metrics.SnapshotCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.SnapshotCacheLookups.WithLabelValues("error").Inc()
		h.logger.Warn("snapshot cache read failed", map[string]interface{}{
			"applicationId": applicationID,
			"error":         apperrors.NewCacheUnavailableError(err).Details,
		})
	}
	return nil, false
}

func (h *Handler) snapshotVersion(ctx context.Context, applicationID string) (int64, bool) {
	if h.cache == nil || h.config.CacheTTL <= 0 {
		return 0, false
	}
	version, err := h.cache.Version(ctx, database.SnapshotVersionKey(applicationID))
	if err != nil {
		h.logger.Warn("snapshot version read failed, not caching", map[string]interface{}{
			"applicationId": applicationID,
			"error":         err.Error(),
		})
		return 0, false
	}
	return version, true
}

func (h *Handler) writeCache(ctx context.Context, applicationID string, snapshot *onboarding.Snapshot, version int64) {
	stored, err := h.cache.SetJSONIfVersion(ctx,
		database.SnapshotCacheKey(applicationID), snapshot, h.config.CacheTTL,
		database.SnapshotVersionKey(applicationID), version)
	if err != nil {
		h.logger.Warn("snapshot cache write failed", map[string]interface{}{
			"applicationId": applicationID,
			"error":         err.Error(),
		})
		return
	}
	if !stored {
		h.logger.Debug("application changed while loading, snapshot not cached", map[string]interface{}{
			"applicationId": applicationID,
		})
	}
}

func newOutput(snapshot *onboarding.Snapshot, cacheHit bool) *Output {
	app := snapshot.ToApplication()
	return &Output{
		Snapshot:          *snapshot,
		EmploymentType:    app.EmploymentType,
		PositionType:      onboarding.NormalizePosition(app.PositionAppliedFor()),
		ApplicationStatus: app.Status,
		CacheHit:          cacheHit,
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.RecordCompleted(TaskType)
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	metrics.RecordFailed(TaskType, string(apperrors.Normalize(err).Code))
	h.errorHandler.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
