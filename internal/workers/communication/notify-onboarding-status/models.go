// internal/workers/communication/notify-onboarding-status/models.go
package notifyonboardingstatus

import (
	"context"

	"onboarding-workers/internal/common/aws"
	"onboarding-workers/internal/models"
)

// Events a notification can be raised for.
const (
	EventFormSubmitted       = "form_submitted"
	EventFormApproved        = "form_approved"
	EventFormRejected        = "form_rejected"
	EventOnboardingCompleted = "onboarding_completed"
)

const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

const (
	RecipientEmployee = "employee"
	RecipientHR       = "hr"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
	StatusSkipped  = "skipped"
)

type Input struct {
	ApplicationID string `json:"applicationId"`
	Event         string `json:"event"`
	FormKey       string `json:"formKey,omitempty"`
	EmployeeName  string `json:"employeeName"`
	EmployeeEmail string `json:"employeeEmail,omitempty"`
	EmployeePhone string `json:"employeePhone,omitempty"`
	Comment       string `json:"comment,omitempty"`
	Priority      string `json:"priority,omitempty"`
}

type Output struct {
	ApplicationID string                `json:"applicationId"`
	Notifications []models.Notification `json:"notifications"`
	EmailsSent    int                   `json:"emailsSent"`
	EmailsFailed  int                   `json:"emailsFailed"`
	SMSSent       int                   `json:"smsSent"`
}

// EmailSender delivers email, returning the provider message id.
type EmailSender interface {
	Send(ctx context.Context, email aws.Email) (string, error)
}

// SMSSender delivers text messages, returning the provider message id.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

const inputSchema = `{
	"type": "object",
	"required": ["applicationId", "event", "employeeName"],
	"properties": {
		"applicationId": {"type": "string", "minLength": 1},
		"event": {"type": "string", "enum": ["form_submitted", "form_approved", "form_rejected", "onboarding_completed"]},
		"formKey": {"type": "string"},
		"employeeName": {"type": "string", "minLength": 1, "maxLength": 200},
		"employeeEmail": {"type": "string"},
		"employeePhone": {"type": "string"},
		"comment": {"type": "string", "maxLength": 2000},
		"priority": {"type": "string", "enum": ["", "low", "normal", "high"]}
	}
}`
