// internal/workers/onboarding/classify-form-status/models.go
package classifyformstatus

import "onboarding-workers/internal/onboarding"

type Input struct {
	FormKey           string                 `json:"formKey"`
	Form              *onboarding.FormRecord `json:"form"`
	ApplicationStatus string                 `json:"applicationStatus,omitempty"`
}

type Output struct {
	FormKey          string  `json:"formKey"`
	FormID           string  `json:"formId"`
	ProgressStatus   string  `json:"progressStatus"`
	SubmissionStatus string  `json:"submissionStatus"`
	HRReviewStatus   *string `json:"hrReviewStatus"`
	CompletionWeight float64 `json:"completionWeight"`
	IsEditable       bool    `json:"isEditable"`
}
