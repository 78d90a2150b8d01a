// internal/workers/onboarding/resolve-required-forms/models.go
package resolverequiredforms

type Input struct {
	ApplicationID  string `json:"applicationId,omitempty"`
	EmploymentType string `json:"employmentType"`
	PositionType   string `json:"positionType"`
}

type Output struct {
	RequiredForms   []string `json:"requiredForms"`
	RequiredFormIDs []string `json:"requiredFormIds"`
	TotalCount      int      `json:"totalCount"`
}
