// internal/workers/onboarding/compute-onboarding-progress/handler.go
package computeonboardingprogress

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "onboarding-workers/internal/common/errors"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/common/metrics"
	"onboarding-workers/internal/common/validation"
	"onboarding-workers/internal/onboarding"
)

const (
	TaskType = "compute-onboarding-progress"
)

var schema = validation.MustCompileJSON(inputSchema)

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		logger:       scoped,
		errorHandler: apperrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	input, err := h.decode([]byte(job.Variables))
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// decode validates the raw job variables against the input schema before
// unmarshalling them.
func (h *Handler) decode(variables []byte) (*Input, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(variables, &raw); err != nil {
		return nil, apperrors.NewInputValidationFailedError(fmt.Sprintf("parse input: %v", err))
	}

	if result := schema.Validate(raw); !result.Valid {
		return nil, apperrors.NewInputValidationFailedError(result.Summary()).
			WithMetadata("validationErrors", result.GetErrorMessages())
	}

	var input Input
	if err := json.Unmarshal(variables, &input); err != nil {
		return nil, apperrors.NewInputValidationFailedError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	app := input.Snapshot.ToApplication()
	if app.ID == "" {
		app.ID = input.ApplicationID
	}

	report := onboarding.Evaluate(app)
	metrics.ObserveProgress(app.EmploymentType, report.Percentage)

	h.logger.Info("onboarding progress computed", map[string]interface{}{
		"applicationId":  app.ID,
		"employmentType": app.EmploymentType,
		"completedCount": report.CompletedCount,
		"totalCount":     report.TotalCount,
		"percentage":     report.Percentage,
	})

	return &Output{
		ApplicationID:      app.ID,
		Progress:           report,
		PendingReviewCount: report.PendingReview(),
		NeedsRevisionCount: report.NeedsRevision(),
		OnboardingComplete: report.IsComplete(),
	}, nil
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

// Decode is exported for tests.
func (h *Handler) Decode(variables []byte) (*Input, error) {
	return h.decode(variables)
}
