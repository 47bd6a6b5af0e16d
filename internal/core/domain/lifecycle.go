package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/expense_tracker/internal/apperrors"
)

// allowedTransitions lists the statuses reachable from each status.
// archived is terminal.
var allowedTransitions = map[ExpenseStatus][]ExpenseStatus{
	StatusRequest:   {StatusReview, StatusConfirmed, StatusDeclined, StatusRevision, StatusArchived},
	StatusReview:    {StatusRequest, StatusConfirmed, StatusDeclined, StatusRevision, StatusArchived},
	StatusRevision:  {StatusRequest, StatusReview, StatusDeclined, StatusArchived},
	StatusDeclined:  {StatusRevision, StatusArchived},
	StatusConfirmed: {StatusArchived},
	StatusArchived:  {},
}

// ParseStatus validates a wire status value.
func ParseStatus(s string) (ExpenseStatus, error) {
	st := ExpenseStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := allowedTransitions[st]; !ok {
		return "", fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidArgument, s)
	}
	return st, nil
}

// RequiresComment reports whether moving into status needs a comment for the submitter.
func (s ExpenseStatus) RequiresComment() bool {
	return s == StatusDeclined || s == StatusRevision
}

// CanTransition reports whether from -> to is a legal move. Staying put is always legal.
func CanTransition(from, to ExpenseStatus) bool {
	if from == to {
		return true
	}
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition moves the request to status and stores comment as the status
// comment. It reports whether the status changed; a status change is what
// triggers a notification. Re-applying the current status with the same
// comment leaves the request untouched.
func (e *ExpenseRequest) ApplyTransition(status ExpenseStatus, comment string) (bool, error) {
	comment = strings.TrimSpace(comment)
	if status.RequiresComment() && comment == "" {
		return false, fmt.Errorf("%w: comment is required for status %q", apperrors.ErrInvalidArgument, status)
	}
	if !CanTransition(e.Status, status) {
		return false, fmt.Errorf("%w: cannot move request %s from %q to %q", apperrors.ErrInvalidState, e.RequestID, e.Status, status)
	}

	var newComment *string
	if comment != "" {
		newComment = &comment
	}

	if e.Status == status {
		if comment != "" {
			e.StatusComment = newComment
		}
		return false, nil
	}

	e.Status = status
	e.StatusComment = newComment
	return true, nil
}
