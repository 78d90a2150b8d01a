// internal/workers/communication/notify-onboarding-status/handler.go
package notifyonboardingstatus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	apperrors "onboarding-workers/internal/common/errors"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/common/metrics"
	"onboarding-workers/internal/common/validation"
	"onboarding-workers/internal/models"
	"onboarding-workers/internal/onboarding"
)

const (
	TaskType = "notify-onboarding-status"
)

var schema = validation.MustCompileJSON(inputSchema)

var priorityRank = map[string]int{
	PriorityLow:    0,
	PriorityNormal: 1,
	PriorityHigh:   2,
}

// defaultPriority applies when the process does not set one.
var defaultPriority = map[string]string{
	EventFormSubmitted:       PriorityLow,
	EventFormApproved:        PriorityNormal,
	EventFormRejected:        PriorityHigh,
	EventOnboardingCompleted: PriorityNormal,
}

type Handler struct {
	config       *Config
	email        EmailSender
	sms          SMSSender
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewHandler builds the handler. sms may be nil when SMS is disabled.
func NewHandler(config *Config, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		email:        email,
		sms:          sms,
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	data := messageData{
		ApplicationID: input.ApplicationID,
		EmployeeName:  input.EmployeeName,
		Comment:       input.Comment,
	}
	if input.Event != EventOnboardingCompleted {
		def, ok := onboarding.Lookup(input.FormKey)
		if !ok {
			return nil, apperrors.NewInputValidationFailedError(fmt.Sprintf("unknown form %q", input.FormKey))
		}
		data.FormTitle = def.Title
	}

	byRecipient, ok := templates[input.Event]
	if !ok {
		return nil, apperrors.NewInputValidationFailedError(fmt.Sprintf("unknown event %q", input.Event))
	}
	if _, toEmployee := byRecipient[RecipientEmployee]; toEmployee && !validation.ValidateEmail(input.EmployeeEmail) {
		return nil, apperrors.NewInputValidationFailedError(
			fmt.Sprintf("invalid employee email %q", input.EmployeeEmail))
	}

	output := &Output{ApplicationID: input.ApplicationID, Notifications: []models.Notification{}}

	// A retry resends every email, so the job only fails when nothing went
	// out. Once one recipient has been reached, later failures are recorded.
	var sendErr error
	for _, recipient := range []string{RecipientEmployee, RecipientHR} {
		tmpl, ok := byRecipient[recipient]
		if !ok {
			continue
		}
		n, err := h.sendEmail(ctx, input, recipient, tmpl, data)
		if err != nil && sendErr == nil {
			sendErr = err
		}
		switch n.Status {
		case StatusSent:
			output.EmailsSent++
		case StatusFailed:
			output.EmailsFailed++
		}
		output.Notifications = append(output.Notifications, n)
	}
	if sendErr != nil {
		if output.EmailsSent == 0 {
			return nil, sendErr
		}
		h.logger.Warn("email delivery partially failed", map[string]interface{}{
			"applicationId": input.ApplicationID,
			"emailsSent":    output.EmailsSent,
			"emailsFailed":  output.EmailsFailed,
			"error":         sendErr.Error(),
		})
	}

	if n, ok := h.sendSMS(ctx, input, data); ok {
		if n.Status == StatusSent {
			output.SMSSent++
		}
		output.Notifications = append(output.Notifications, n)
	}

	h.logger.Info("onboarding notifications processed", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"event":         input.Event,
		"emailsSent":    output.EmailsSent,
		"smsSent":       output.SMSSent,
	})

	return output, nil
}

func (h *Handler) sendEmail(ctx context.Context, input *Input, recipient string, tmpl models.NotificationTemplate, data messageData) (models.Notification, error) {
	n := h.newNotification(input, recipient, ChannelEmail)

	to := input.EmployeeEmail
	if recipient == RecipientHR {
		to = h.config.HREmail
	}
	n.Payload = map[string]interface{}{"to": to}

	switch {
	case !h.config.EmailEnabled:
		n.Status = StatusDisabled
		return n, nil
	case to == "":
		h.logger.Warn("no address for recipient, skipping email", map[string]interface{}{
			"applicationId": input.ApplicationID,
			"recipient":     recipient,
		})
		n.Status = StatusSkipped
		return n, nil
	}

	email, err := renderEmail(tmpl, to, data)
	if err != nil {
		n.Status = StatusFailed
		return n, apperrors.NewNotificationSendFailedError(ChannelEmail, fmt.Errorf("render template: %w", err))
	}
	n.Payload["subject"] = email.Subject

	messageID, err := h.email.Send(ctx, email)
	if err != nil {
		n.Status = StatusFailed
		return n, apperrors.NewNotificationSendFailedError(ChannelEmail, err).
			WithMetadata("recipientType", recipient)
	}

	n.Status = StatusSent
	n.MessageID = messageID
	n.SentAt = time.Now().UTC().Format(time.RFC3339)
	return n, nil
}

// sendSMS texts the employee when the event is urgent enough. SMS is a
// secondary channel so its failures do not fail the job.
func (h *Handler) sendSMS(ctx context.Context, input *Input, data messageData) (models.Notification, bool) {
	text, ok := smsTemplates[input.Event]
	if !ok || input.EmployeePhone == "" {
		return models.Notification{}, false
	}

	priority := input.Priority
	if priority == "" {
		priority = defaultPriority[input.Event]
	}
	if priorityRank[priority] < priorityRank[h.config.SMSThreshold] {
		return models.Notification{}, false
	}

	n := h.newNotification(input, RecipientEmployee, ChannelSMS)
	n.Payload = map[string]interface{}{"priority": priority}

	if !h.config.SMSEnabled || h.sms == nil {
		n.Status = StatusDisabled
		return n, true
	}
	if !validation.ValidatePhone(input.EmployeePhone) {
		h.logger.Warn("employee phone is not E.164, skipping sms", map[string]interface{}{
			"applicationId": input.ApplicationID,
		})
		n.Status = StatusSkipped
		return n, true
	}

	message, err := renderText(input.Event+".sms", text, data)
	if err == nil {
		n.MessageID, err = h.sms.SendSMS(ctx, input.EmployeePhone, message)
	}
	if err != nil {
		h.logger.Warn("sms delivery failed", map[string]interface{}{
			"applicationId": input.ApplicationID,
			"error":         err.Error(),
		})
		n.Status = StatusFailed
		return n, true
	}

	n.Status = StatusSent
	n.SentAt = time.Now().UTC().Format(time.RFC3339)
	return n, true
}

func (h *Handler) newNotification(input *Input, recipient, channel string) models.Notification {
	return models.Notification{
		ID:            uuid.New().String(),
		ApplicationID: input.ApplicationID,
		RecipientType: recipient,
		Type:          input.Event,
		Channel:       channel,
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

func (h *Handler) Decode(variables []byte) (*Input, error) {
	return h.decode(variables)
}
