// internal/onboarding/lifecycle.go
package onboarding

import (
	"errors"
	"fmt"
)

// Action is an employee or HR operation on a single form.
type Action string

const (
	ActionSaveDraft   Action = "save_draft"
	ActionSubmit      Action = "submit"
	ActionStartReview Action = "start_review"
	ActionApprove     Action = "approve"
	ActionReject      Action = "reject"
)

var (
	ErrFormLocked        = errors.New("form is locked for review")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownAction     = errors.New("unknown action")
)

// IsReviewerAction reports whether only HR may perform the action.
func (a Action) IsReviewerAction() bool {
	switch a {
	case ActionStartReview, ActionApprove, ActionReject:
		return true
	default:
		return false
	}
}

// Transition returns the status a form moves to when action is applied.
// Employee actions are refused while the form is not editable; HR actions
// only apply to forms that have been handed in.
func Transition(form *FormRecord, action Action, appStatus string) (FormStatus, error) {
	current := StatusNone
	if form != nil {
		current = effectiveStatus(form, appStatus)
	}

	switch action {
	case ActionSaveDraft, ActionSubmit:
		if !IsEditable(form, appStatus) {
			return current, fmt.Errorf("%w: %s is %s", ErrFormLocked, action, current)
		}
		if action == ActionSaveDraft {
			return StatusDraft, nil
		}
		return StatusSubmitted, nil

	case ActionStartReview:
		switch current {
		case StatusSubmitted, StatusCompleted:
			return StatusUnderReview, nil
		}

	case ActionApprove:
		switch current {
		case StatusSubmitted, StatusCompleted, StatusUnderReview:
			return StatusApproved, nil
		}

	case ActionReject:
		switch current {
		case StatusSubmitted, StatusCompleted, StatusUnderReview:
			return StatusRejected, nil
		}

	default:
		return current, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	return current, fmt.Errorf("%w: cannot %s a form that is %s", ErrInvalidTransition, action, current)
}
