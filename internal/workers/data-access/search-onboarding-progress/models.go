// internal/workers/data-access/search-onboarding-progress/models.go
package searchonboardingprogress

import (
	"onboarding-workers/internal/models"
	"onboarding-workers/internal/workers/data-access/search-onboarding-progress/queries"
)

type Input struct {
	Filters    queries.Filters    `json:"filters"`
	SortBy     string             `json:"sortBy,omitempty"`
	Pagination queries.Pagination `json:"pagination"`
}

type Output struct {
	Applications []models.ProgressDocument `json:"applications"`
	TotalHits    int64                     `json:"totalHits"`
	Took         int64                     `json:"took"` // milliseconds
}
