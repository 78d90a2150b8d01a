// internal/models/application.go
package models

import (
	"time"
)

// AuditEntry is a row of audit_log.
type AuditEntry struct {
	ID           string                 `json:"id"`
	EventType    string                 `json:"eventType"`
	ResourceType string                 `json:"resourceType"`
	ResourceID   string                 `json:"resourceId"`
	Details      map[string]interface{} `json:"details"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// ProgressDocument is the document indexed per application for HR dashboards.
type ProgressDocument struct {
	ApplicationID      string    `json:"applicationId"`
	EmployeeName       string    `json:"employeeName,omitempty"`
	EmploymentType     string    `json:"employmentType"`
	PositionType       string    `json:"positionType"`
	ApplicationStatus  string    `json:"applicationStatus"`
	CompletedCount     int       `json:"completedCount"`
	TotalCount         int       `json:"totalCount"`
	Percentage         int       `json:"percentage"`
	WeightedPercentage int       `json:"weightedPercentage"`
	PendingReview      int       `json:"pendingReview"`
	NeedsRevision      int       `json:"needsRevision"`
	CreatedAt          string    `json:"createdAt,omitempty"`
	IndexedAt          time.Time `json:"indexedAt"`
}
