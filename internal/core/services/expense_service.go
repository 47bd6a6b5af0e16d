package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_tracker/internal/core/ports/services"
)

const maxListLimit = 200

type expenseService struct {
	BaseService
	normalizer  portssvc.NormalizerSvc
	expenseRepo portsrepo.ExpenseRepositoryFacade
	notifier    portssvc.NotificationSvc
}

// NewExpenseService creates a new ExpenseSvcFacade.
func NewExpenseService(normalizer portssvc.NormalizerSvc, expenseRepo portsrepo.ExpenseRepositoryFacade, notifier portssvc.NotificationSvc) portssvc.ExpenseSvcFacade {
	return &expenseService{
		normalizer:  normalizer,
		expenseRepo: expenseRepo,
		notifier:    notifier,
	}
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

func (s *expenseService) CreateExpense(ctx context.Context, raw domain.RawDraft) (*domain.ExpenseRequest, error) {
	draft, err := s.normalizer.Normalize(ctx, raw)
	if err != nil {
		return nil, err
	}

	expense, err := s.expenseRepo.CreateExpense(ctx, *draft)
	if err != nil {
		s.LogError(ctx, err, "Failed to create expense request",
			slog.String("project_code", draft.ProjectCode),
			slog.String("submitter_id", draft.SubmitterID))
		return nil, fmt.Errorf("failed to create expense request: %w", err)
	}

	s.notifier.NotifyCreated(ctx, *expense)

	s.LogInfo(ctx, "Expense request created",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("request_id", expense.RequestID),
		slog.String("source", string(draft.Source)))
	return expense, nil
}

func (s *expenseService) GetExpense(ctx context.Context, expenseID string) (*domain.ExpenseRequest, error) {
	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, wrapLookup(err, "expense request", expenseID)
	}
	return expense, nil
}

func (s *expenseService) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.ExpenseRequest, error) {
	if filter.Limit <= 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	expenses, err := s.expenseRepo.ListExpenses(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list expense requests")
		return nil, fmt.Errorf("failed to list expense requests: %w", err)
	}
	return expenses, nil
}

// TransitionStatus applies the lifecycle rules under the row lock held by the
// repository and fires one status notice per effective status change.
func (s *expenseService) TransitionStatus(ctx context.Context, expenseID string, status domain.ExpenseStatus, comment string) (*domain.ExpenseRequest, error) {
	status, err := domain.ParseStatus(string(status))
	if err != nil {
		return nil, err
	}

	var (
		changed  bool
		previous domain.ExpenseStatus
	)
	updated, err := s.expenseRepo.UpdateExpenseStatus(ctx, expenseID, func(current *domain.ExpenseRequest) (bool, error) {
		previous = current.Status
		oldComment := derefString(current.StatusComment)
		statusChanged, err := current.ApplyTransition(status, comment)
		if err != nil {
			return false, err
		}
		changed = statusChanged
		return statusChanged || derefString(current.StatusComment) != oldComment, nil
	})
	if err != nil {
		return nil, wrapLookup(err, "expense request", expenseID)
	}

	if changed {
		s.notifier.NotifyStatusChanged(ctx, *updated)
		s.LogInfo(ctx, "Expense request status changed",
			slog.String("request_id", updated.RequestID),
			slog.String("from", string(previous)),
			slog.String("to", string(updated.Status)))
	}
	return updated, nil
}

func (s *expenseService) UpdateInternalComment(ctx context.Context, expenseID string, comment string) error {
	var c *string
	if trimmed := strings.TrimSpace(comment); trimmed != "" {
		c = &trimmed
	}
	if err := s.expenseRepo.UpdateInternalComment(ctx, expenseID, c); err != nil {
		return wrapLookup(err, "expense request", expenseID)
	}
	return nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, expenseID string) error {
	if err := s.expenseRepo.DeleteExpense(ctx, expenseID); err != nil {
		return wrapLookup(err, "expense request", expenseID)
	}
	s.LogInfo(ctx, "Expense request deleted", slog.String("expense_id", expenseID))
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
