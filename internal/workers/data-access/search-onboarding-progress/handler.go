// internal/workers/data-access/search-onboarding-progress/handler.go
package searchonboardingprogress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"onboarding-workers/internal/common/database"
	apperrors "onboarding-workers/internal/common/errors"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/common/metrics"
	"onboarding-workers/internal/models"
	"onboarding-workers/internal/workers/data-access/search-onboarding-progress/queries"
)

const (
	TaskType = "search-onboarding-progress"
)

type Handler struct {
	config       *Config
	es           *database.ElasticsearchClient
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, es *database.ElasticsearchClient, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		es:           es,
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
	q := queries.ProgressQuery{
		Index:      h.config.IndexName,
		Filters:    input.Filters,
		SortBy:     input.SortBy,
		Pagination: input.Pagination,
	}

	result, err := queries.Execute(ctx, h.es.Client, q)
	var notFound *queries.NotFoundError
	if errors.As(err, &notFound) {
		// nothing indexed yet
		h.logger.Warn("progress index missing, returning no results", map[string]interface{}{
			"index": h.config.IndexName,
		})
		return &Output{Applications: []models.ProgressDocument{}}, nil
	}
	if err != nil {
		return nil, h.mapError(ctx, err)
	}

	h.logger.Info("onboarding progress search completed", map[string]interface{}{
		"index":     h.config.IndexName,
		"totalHits": result.TotalHits,
		"returned":  len(result.Documents),
		"took":      result.Took,
	})

	return &Output{
		Applications: result.Documents,
		TotalHits:    result.TotalHits,
		Took:         result.Took,
	}, nil
}

func (h *Handler) mapError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, queries.ErrInvalidRange), errors.Is(err, queries.ErrUnknownSortField):
		return apperrors.NewInputValidationFailedError(err.Error())
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.NewSearchTimeoutError(h.config.IndexName)
	default:
		return apperrors.NewSearchQueryFailedError(h.config.IndexName, err)
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
