// internal/workers/onboarding/compute-onboarding-progress/models.go
package computeonboardingprogress

import "onboarding-workers/internal/onboarding"

type Input struct {
	ApplicationID string              `json:"applicationId,omitempty"`
	Snapshot      onboarding.Snapshot `json:"snapshot"`
}

type Output struct {
	ApplicationID      string            `json:"applicationId"`
	Progress           onboarding.Report `json:"progress"`
	PendingReviewCount int               `json:"pendingReviewCount"`
	NeedsRevisionCount int               `json:"needsRevisionCount"`
	OnboardingComplete bool              `json:"onboardingComplete"`
}

// inputSchema checks the shape of the snapshot variable. Sections may be
// missing but must have the right type when present.
const inputSchema = `{
	"type": "object",
	"required": ["snapshot"],
	"properties": {
		"applicationId": {"type": "string"},
		"snapshot": {
			"type": "object",
			"properties": {
				"application": {
					"type": "object",
					"properties": {
						"id": {"type": "string"},
						"employmentType": {"type": "string"},
						"status": {"type": "string"},
						"completedForms": {"type": ["array", "null"], "items": {"type": "string"}},
						"createdAt": {"type": "string"}
					}
				},
				"forms": {
					"type": ["object", "null"],
					"additionalProperties": {"type": "object"}
				}
			}
		}
	}
}`
