package repositories

import (
	"context"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
)

// StatusMutator is applied to a locked request inside the transition
// transaction. It reports whether the row must be written back.
type StatusMutator func(current *domain.ExpenseRequest) (persist bool, err error)

// ExpenseReader defines read operations for expense requests
type ExpenseReader interface {
	// FindExpenseByID retrieves a request by its ID. Returns apperrors.ErrNotFound when absent.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.ExpenseRequest, error)

	// ListExpenses returns requests matching filter, newest first.
	ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.ExpenseRequest, error)
}

// ExpenseWriter defines write operations for expense requests
type ExpenseWriter interface {
	// CreateExpense draws the next project sequence number and inserts the request
	// in one transaction. The returned request carries its request id; nothing is
	// consumed when the transaction rolls back.
	CreateExpense(ctx context.Context, draft domain.CanonicalDraft) (*domain.ExpenseRequest, error)

	// UpdateExpenseStatus locks the request row, applies mutate and writes the
	// status and status comment back when mutate asks for it. Concurrent calls
	// for the same request are serialized by the row lock.
	UpdateExpenseStatus(ctx context.Context, expenseID string, mutate StatusMutator) (*domain.ExpenseRequest, error)

	// UpdateInternalComment replaces the administrator-only comment.
	UpdateInternalComment(ctx context.Context, expenseID string, comment *string) error

	// DeleteExpense removes the request. Its request id stays retired.
	DeleteExpense(ctx context.Context, expenseID string) error
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
}
