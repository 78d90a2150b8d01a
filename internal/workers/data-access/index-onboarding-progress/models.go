// internal/workers/data-access/index-onboarding-progress/models.go
package indexonboardingprogress

import "onboarding-workers/internal/onboarding"

type Input struct {
	ApplicationID string              `json:"applicationId"`
	EmployeeName  string              `json:"employeeName,omitempty"`
	Snapshot      onboarding.Snapshot `json:"snapshot"`
}

type Output struct {
	IndexName  string `json:"indexName"`
	DocumentID string `json:"documentId"`
	Result     string `json:"indexResult"` // "created" or "updated"
	Percentage int    `json:"percentage"`
}
