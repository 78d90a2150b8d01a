// internal/onboarding/status.go
package onboarding

import "strings"

// FormStatus is the lifecycle status stored on a single onboarding form.
type FormStatus string

const (
	StatusNone        FormStatus = "none"
	StatusDraft       FormStatus = "draft"
	StatusSubmitted   FormStatus = "submitted"
	StatusCompleted   FormStatus = "completed"
	StatusUnderReview FormStatus = "under_review"
	StatusApproved    FormStatus = "approved"
	StatusRejected    FormStatus = "rejected"
)

// Progress-bar labels
const (
	ProgressPending       = "Pending"
	ProgressInProgress    = "In Progress"
	ProgressCompleted     = "Completed"
	ProgressUnderReview   = "Under Review"
	ProgressApproved      = "Approved"
	ProgressNeedsRevision = "Needs Revision"
)

// Employee-facing submission labels
const (
	SubmissionNotStarted    = "Not Started"
	SubmissionDraft         = "Draft"
	SubmissionSubmitted     = "Submitted"
	SubmissionUnderReview   = "Under Review"
	SubmissionApproved      = "Approved"
	SubmissionNeedsRevision = "Needs Revision"
)

// HR review labels
const (
	ReviewPending       = "Pending Review"
	ReviewUnderReview   = "Under Review"
	ReviewApproved      = "Approved"
	ReviewNeedsRevision = "Needs Revision"
)

// populatedFieldThreshold is the number of populated fields above which a
// status-less form is treated as having user input.
const populatedFieldThreshold = 3

// Classification holds every label derived from one form.
type Classification struct {
	ProgressStatus   string  `json:"progressStatus"`
	SubmissionStatus string  `json:"submissionStatus"`
	HRReviewStatus   *string `json:"hrReviewStatus"`
	CompletionWeight float64 `json:"completionWeight"`
	IsEditable       bool    `json:"isEditable"`
}

// ParseStatus normalizes a raw status string. Empty input is StatusNone.
// The second return value is false for strings outside the known set.
func ParseStatus(raw string) (FormStatus, bool) {
	s := FormStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case "":
		return StatusNone, true
	case StatusNone, StatusDraft, StatusSubmitted, StatusCompleted,
		StatusUnderReview, StatusApproved, StatusRejected:
		return s, true
	default:
		return s, false
	}
}

// ClassifyForm derives the display labels for a form. A nil form means the
// employee has not started it. appStatus is the parent application's overall
// status and only fills in for a form that carries no status of its own.
func ClassifyForm(form *FormRecord, appStatus string) Classification {
	return Classification{
		ProgressStatus:   progressStatus(form),
		SubmissionStatus: submissionStatus(form),
		HRReviewStatus:   hrReviewStatus(form, appStatus),
		CompletionWeight: completionWeight(form),
		IsEditable:       IsEditable(form, appStatus),
	}
}

// IsEditable reports whether the employee may still change the form. Forms
// are locked only while HR holds them (under review) or after approval.
func IsEditable(form *FormRecord, appStatus string) bool {
	if form == nil {
		return true
	}
	switch effectiveStatus(form, appStatus) {
	case StatusUnderReview, StatusApproved:
		return false
	default:
		return true
	}
}

func effectiveStatus(form *FormRecord, appStatus string) FormStatus {
	status, _ := ParseStatus(form.Status)
	if status != StatusNone {
		return status
	}
	fallback, _ := ParseStatus(appStatus)
	return fallback
}

func progressStatus(form *FormRecord) string {
	if form == nil {
		return ProgressPending
	}
	status, ok := ParseStatus(form.Status)
	if !ok {
		return ProgressPending
	}
	switch status {
	case StatusSubmitted, StatusCompleted:
		return ProgressCompleted
	case StatusUnderReview:
		return ProgressUnderReview
	case StatusApproved:
		return ProgressApproved
	case StatusRejected:
		return ProgressNeedsRevision
	case StatusDraft:
		return ProgressInProgress
	}
	if status == StatusNone && form.PopulatedFields() > populatedFieldThreshold {
		return ProgressInProgress
	}
	return ProgressPending
}

func submissionStatus(form *FormRecord) string {
	if form == nil {
		return SubmissionNotStarted
	}
	status, ok := ParseStatus(form.Status)
	if !ok {
		return SubmissionNotStarted
	}
	switch status {
	case StatusSubmitted, StatusCompleted:
		return SubmissionSubmitted
	case StatusUnderReview:
		return SubmissionUnderReview
	case StatusApproved:
		return SubmissionApproved
	case StatusRejected:
		return SubmissionNeedsRevision
	case StatusDraft:
		return SubmissionDraft
	}
	if status == StatusNone && form.PopulatedFields() > populatedFieldThreshold {
		return SubmissionDraft
	}
	return SubmissionNotStarted
}

func completionWeight(form *FormRecord) float64 {
	if form == nil {
		return 0
	}
	status, _ := ParseStatus(form.Status)
	switch status {
	case StatusSubmitted, StatusCompleted, StatusUnderReview, StatusApproved:
		return 1.0
	case StatusRejected:
		return 0.8
	case StatusDraft:
		return 0.5
	default:
		return 0
	}
}

func hrReviewStatus(form *FormRecord, appStatus string) *string {
	if form == nil {
		return nil
	}
	var label string
	switch effectiveStatus(form, appStatus) {
	case StatusSubmitted, StatusCompleted:
		label = ReviewPending
	case StatusUnderReview:
		label = ReviewUnderReview
	case StatusApproved:
		label = ReviewApproved
	case StatusRejected:
		label = ReviewNeedsRevision
	default:
		return nil
	}
	return &label
}
