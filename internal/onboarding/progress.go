// internal/onboarding/progress.go
package onboarding

import "math"

// Progress is the published completion metric.
type Progress struct {
	CompletedCount int `json:"completedCount"`
	TotalCount     int `json:"totalCount"`
	Percentage     int `json:"percentage"`
}

// FormView is the per-form entry of a Report.
type FormView struct {
	FormID           string  `json:"formId"`
	Title            string  `json:"title"`
	ProgressStatus   string  `json:"progressStatus"`
	SubmissionStatus string  `json:"submissionStatus"`
	HRReviewStatus   *string `json:"hrReviewStatus"`
	IsEditable       bool    `json:"isEditable"`
	IsComplete       bool    `json:"isComplete"`
}

// Report is Progress plus the per-form breakdown dashboards render.
type Report struct {
	Progress
	RequiredForms      []string            `json:"requiredForms"`
	PerForm            map[string]FormView `json:"perForm"`
	WeightedPercentage int                 `json:"weightedPercentage"`
}

// ComputeProgress counts the required forms that are complete. A form is
// complete when its own status says so or when it appears in the
// application's completion override set.
func ComputeProgress(app Application) Progress {
	required := ResolveRequiredForms(app.EmploymentType, app.PositionAppliedFor())
	completed := 0
	for _, key := range required {
		form := app.Form(key)
		if countsAsComplete(progressStatus(form)) || app.IsMarkedComplete(key) {
			completed++
		}
	}
	return Progress{
		CompletedCount: completed,
		TotalCount:     len(required),
		Percentage:     percentage(float64(completed), len(required)),
	}
}

// Evaluate builds the full report for one application snapshot.
func Evaluate(app Application) Report {
	required := ResolveRequiredForms(app.EmploymentType, app.PositionAppliedFor())
	perForm := make(map[string]FormView, len(required))

	completed := 0
	weighted := 0.0
	for _, key := range required {
		form := app.Form(key)
		c := ClassifyForm(form, app.Status)
		complete := countsAsComplete(c.ProgressStatus) || app.IsMarkedComplete(key)
		if complete {
			completed++
		}
		weight := c.CompletionWeight
		if complete && weight < 1 {
			weight = 1
		}
		weighted += weight

		title := key
		if def, ok := Lookup(key); ok {
			title = def.Title
		}
		perForm[key] = FormView{
			FormID:           FormID(key),
			Title:            title,
			ProgressStatus:   c.ProgressStatus,
			SubmissionStatus: c.SubmissionStatus,
			HRReviewStatus:   c.HRReviewStatus,
			IsEditable:       c.IsEditable,
			IsComplete:       complete,
		}
	}

	return Report{
		Progress: Progress{
			CompletedCount: completed,
			TotalCount:     len(required),
			Percentage:     percentage(float64(completed), len(required)),
		},
		RequiredForms:      required,
		PerForm:            perForm,
		WeightedPercentage: percentage(weighted, len(required)),
	}
}

func countsAsComplete(progress string) bool {
	switch progress {
	case ProgressCompleted, ProgressUnderReview, ProgressApproved:
		return true
	default:
		return false
	}
}

func percentage(done float64, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * done / float64(total)))
}

// PendingReview counts required forms waiting for HR.
func (r Report) PendingReview() int {
	return r.countReview(ReviewPending, ReviewUnderReview)
}

// NeedsRevision counts required forms HR sent back to the employee.
func (r Report) NeedsRevision() int {
	return r.countReview(ReviewNeedsRevision)
}

// IsComplete reports whether every required form counts as complete.
func (p Progress) IsComplete() bool {
	return p.TotalCount > 0 && p.CompletedCount == p.TotalCount
}

func (r Report) countReview(labels ...string) int {
	n := 0
	for _, view := range r.PerForm {
		if view.HRReviewStatus == nil {
			continue
		}
		for _, label := range labels {
			if *view.HRReviewStatus == label {
				n++
				break
			}
		}
	}
	return n
}
