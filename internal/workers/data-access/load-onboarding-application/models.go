// internal/workers/data-access/load-onboarding-application/models.go
package loadonboardingapplication

import "onboarding-workers/internal/onboarding"

type Input struct {
	ApplicationID string `json:"applicationId"`
	// BypassCache forces a database read, refreshing the cached snapshot.
	BypassCache bool `json:"bypassCache,omitempty"`
}

type Output struct {
	Snapshot          onboarding.Snapshot `json:"snapshot"`
	EmploymentType    string              `json:"employmentType"`
	PositionType      string              `json:"positionType"`
	ApplicationStatus string              `json:"applicationStatus"`
	CacheHit          bool                `json:"cacheHit"`
}
