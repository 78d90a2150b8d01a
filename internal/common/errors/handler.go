// internal/common/errors/handler.go
package errors

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler reports a failed job to the broker, either failing it with
// retries left or throwing a BPMN error the process can catch.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError handles any error in a worker job
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := Normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logError(job, stdErr, bpmnErr)

	if bpmnErr.Retries > 0 && job.Retries > 1 {
		h.failJobWithRetries(ctx, client, job, bpmnErr)
		return
	}
	h.throwBPMNError(ctx, client, job, bpmnErr)
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	// job.Retries counts the attempts the broker has left, including this one
	retries := int(job.Retries) - 1
	if retries > bpmnErr.Retries {
		retries = bpmnErr.Retries
	}

	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(retries)).
		ErrorMessage(fmt.Sprintf("[%s] %s", bpmnErr.Code, bpmnErr.Message))

	withVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables())
	if err != nil {
		h.logger.Error("failed to set error variables, sending without them", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		_, err = cmd.Send(ctx)
		h.report(job, "fail", err)
		return
	}
	_, err = withVars.Send(ctx)
	h.report(job, "fail", err)
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	withVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables())
	if err != nil {
		h.logger.Error("failed to set error variables, sending without them", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		_, err = cmd.Send(ctx)
		h.report(job, "throw", err)
		return
	}
	_, err = withVars.Send(ctx)
	h.report(job, "throw", err)
}

func (h *ErrorHandler) report(job entities.Job, command string, err error) {
	if err != nil {
		h.logger.Error("failed to send job command", map[string]interface{}{
			"jobKey":  job.Key,
			"command": command,
			"error":   err.Error(),
		})
	}
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"bpmnErrorCode":    bpmnErr.Code,
		"message":          bpmnErr.Message,
		"details":          stdErr.Details,
		"retryable":        stdErr.Retryable,
		"retries":          bpmnErr.Retries,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})
}
