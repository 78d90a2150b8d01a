// internal/workers/onboarding/update-form-status/models.go
package updateformstatus

type Input struct {
	ApplicationID string `json:"applicationId"`
	FormKey       string `json:"formKey"`
	Action        string `json:"action"`
	// Data replaces the form payload on save_draft and submit. It is
	// ignored for HR actions.
	Data    map[string]interface{} `json:"data,omitempty"`
	ActorID string                 `json:"actorId,omitempty"`
	Comment string                 `json:"comment,omitempty"`
}

type Output struct {
	ApplicationID  string   `json:"applicationId"`
	FormKey        string   `json:"formKey"`
	FormID         string   `json:"formId"`
	Action         string   `json:"action"`
	PreviousStatus string   `json:"previousStatus"`
	Status         string   `json:"status"`
	IsEditable     bool     `json:"isEditable"`
	CompletedForms []string `json:"completedForms"`
	AuditID        string   `json:"auditId"`
	UpdatedAt      string   `json:"updatedAt"` // ISO 8601
}

const inputSchema = `{
	"type": "object",
	"required": ["applicationId", "formKey", "action"],
	"properties": {
		"applicationId": {"type": "string", "minLength": 1},
		"formKey": {"type": "string", "minLength": 1},
		"action": {"type": "string", "enum": ["save_draft", "submit", "start_review", "approve", "reject"]},
		"data": {"type": ["object", "null"]},
		"actorId": {"type": "string"},
		"comment": {"type": "string", "maxLength": 2000}
	}
}`
