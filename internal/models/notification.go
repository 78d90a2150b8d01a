// internal/models/notification.go
package models

// Notification records one message sent about an onboarding application.
type Notification struct {
	ID            string                 `json:"id"`
	ApplicationID string                 `json:"applicationId"`
	RecipientType string                 `json:"recipientType"` // "employee" or "hr"
	Type          string                 `json:"type"`          // event, e.g. "form_rejected"
	Channel       string                 `json:"channel"`       // "email", "sms"
	Status        string                 `json:"status"`        // "sent", "failed", "disabled", "skipped"
	MessageID     string                 `json:"messageId,omitempty"`
	Payload       map[string]interface{} `json:"payload,omitempty"`
	SentAt        string                 `json:"sentAt,omitempty"`
}

type NotificationTemplate struct {
	Type     string `json:"type"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	HTMLBody string `json:"htmlBody,omitempty"`
}
