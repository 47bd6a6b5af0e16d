package services

import (
	"context"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
)

// NotificationSvc schedules best-effort chat notices. Calls return at once and
// never report delivery failures.
type NotificationSvc interface {
	// NotifyCreated schedules the administrator notice for a new request.
	NotifyCreated(ctx context.Context, expense domain.ExpenseRequest)

	// NotifyStatusChanged schedules the submitter notice after a status change.
	NotifyStatusChanged(ctx context.Context, expense domain.ExpenseRequest)
}
