package services

import (
	"context"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
)

// ExpenseReaderSvc defines read operations for expense requests
type ExpenseReaderSvc interface {
	// GetExpense retrieves a request by ID.
	GetExpense(ctx context.Context, expenseID string) (*domain.ExpenseRequest, error)

	// ListExpenses retrieves requests matching filter.
	ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.ExpenseRequest, error)
}

// ExpenseWriterSvc defines write operations for expense requests
type ExpenseWriterSvc interface {
	// CreateExpense normalizes raw, assigns a request id, persists the request
	// and schedules the administrator notice.
	CreateExpense(ctx context.Context, raw domain.RawDraft) (*domain.ExpenseRequest, error)

	// UpdateInternalComment replaces the administrator-only comment.
	UpdateInternalComment(ctx context.Context, expenseID string, comment string) error

	// DeleteExpense removes a request; its request id is never reissued.
	DeleteExpense(ctx context.Context, expenseID string) error
}

// ExpenseLifecycleSvc drives the request state machine.
type ExpenseLifecycleSvc interface {
	// TransitionStatus moves the request to status. declined and revision need a comment.
	TransitionStatus(ctx context.Context, expenseID string, status domain.ExpenseStatus, comment string) (*domain.ExpenseRequest, error)
}

// ExpenseSvcFacade combines all expense-related service interfaces
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
	ExpenseLifecycleSvc
}
