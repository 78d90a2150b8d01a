// internal/workers/data-access/index-onboarding-progress/handler.go
package indexonboardingprogress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"onboarding-workers/internal/common/database"
	apperrors "onboarding-workers/internal/common/errors"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/common/metrics"
	"onboarding-workers/internal/models"
	"onboarding-workers/internal/onboarding"
)

const (
	TaskType = "index-onboarding-progress"
)

type Handler struct {
	config       *Config
	es           *database.ElasticsearchClient
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
	indexReady   atomic.Bool
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
	app := input.Snapshot.ToApplication()
	if app.ID == "" {
		app.ID = input.ApplicationID
	}
	if app.ID == "" {
		return nil, apperrors.NewInputValidationFailedError("applicationId is required")
	}

	if err := h.ensureIndex(ctx); err != nil {
		return nil, err
	}

	report := onboarding.Evaluate(app)
	doc := models.ProgressDocument{
		ApplicationID:      app.ID,
		EmployeeName:       input.EmployeeName,
		EmploymentType:     onboarding.NormalizeEmploymentType(app.EmploymentType),
		PositionType:       onboarding.NormalizePosition(app.PositionAppliedFor()),
		ApplicationStatus:  strings.ToLower(strings.TrimSpace(app.Status)),
		CompletedCount:     report.CompletedCount,
		TotalCount:         report.TotalCount,
		Percentage:         report.Percentage,
		WeightedPercentage: report.WeightedPercentage,
		PendingReview:      report.PendingReview(),
		NeedsRevision:      report.NeedsRevision(),
		CreatedAt:          app.CreatedAt,
		IndexedAt:          time.Now().UTC(),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, apperrors.NewIndexOperationFailedError(h.config.IndexName, err)
	}

	req := esapi.IndexRequest{
		Index:      h.config.IndexName,
		DocumentID: app.ID,
		Body:       bytes.NewReader(body),
	}
	if h.config.Refresh {
		req.Refresh = "wait_for"
	}

	res, err := req.Do(ctx, h.es.Client)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.NewIndexOperationFailedError(h.config.IndexName,
				fmt.Errorf("index request timed out: %w", err)).WithMetadata("timeout", true)
		}
		return nil, apperrors.NewIndexOperationFailedError(h.config.IndexName, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewIndexOperationFailedError(h.config.IndexName,
			fmt.Errorf("index request failed: %s", res.Status()))
	}

	var result struct {
		ID     string `json:"_id"`
		Result string `json:"result"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, apperrors.NewIndexOperationFailedError(h.config.IndexName, err)
	}

	h.logger.Info("onboarding progress indexed", map[string]interface{}{
		"applicationId": app.ID,
		"index":         h.config.IndexName,
		"result":        result.Result,
		"percentage":    report.Percentage,
	})

	return &Output{
		IndexName:  h.config.IndexName,
		DocumentID: app.ID,
		Result:     result.Result,
		Percentage: report.Percentage,
	}, nil
}

// ensureIndex creates the index on first use. A failure is retried by the
// next job.
func (h *Handler) ensureIndex(ctx context.Context) error {
	if h.indexReady.Load() {
		return nil
	}
	if err := h.es.EnsureIndex(ctx, h.config.IndexName, database.ProgressIndexMapping); err != nil {
		return apperrors.NewIndexOperationFailedError(h.config.IndexName, err)
	}
	h.indexReady.Store(true)
	return nil
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
