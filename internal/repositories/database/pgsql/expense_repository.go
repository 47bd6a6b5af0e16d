package pgsql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/expense_tracker/internal/apperrors"
	"github.com/SscSPs/expense_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_tracker/internal/core/ports/repositories"
	"github.com/SscSPs/expense_tracker/internal/models"
	"github.com/SscSPs/expense_tracker/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxExpenseRepository struct {
	BaseRepository
	sequencer portsrepo.Sequencer
}

func newPgxExpenseRepository(pool *pgxpool.Pool, sequencer portsrepo.Sequencer) *PgxExpenseRepository {
	return &PgxExpenseRepository{
		BaseRepository: BaseRepository{Pool: pool},
		sequencer:      sequencer,
	}
}

var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

const expenseColumns = `
	expense_id, request_id, expense_date, purpose, items, total_amount, currency, status,
	submitter_id, submitter_name, submitter_title, project_id, project_name, project_code,
	internal_comment, status_comment, source, created_at, last_updated_at`

// CreateExpense draws the request number and inserts the request in one
// transaction. A failed insert rolls the counter back with it.
func (r *PgxExpenseRepository) CreateExpense(ctx context.Context, draft domain.CanonicalDraft) (*domain.ExpenseRequest, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	n, err := r.sequencer.NextInTx(ctx, tx, draft.ProjectCode)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	projectID, submitterID := draft.ProjectID, draft.SubmitterID
	expense := domain.ExpenseRequest{
		ExpenseID:      uuid.NewString(),
		RequestID:      domain.FormatRequestID(draft.ProjectCode, n),
		Date:           draft.Date,
		Purpose:        draft.Purpose,
		Items:          draft.Items,
		TotalAmount:    draft.TotalAmount,
		Currency:       draft.Currency,
		Status:         domain.StatusRequest,
		SubmitterID:    &submitterID,
		SubmitterName:  draft.SubmitterName,
		SubmitterTitle: draft.SubmitterTitle,
		ProjectID:      &projectID,
		ProjectName:    draft.ProjectName,
		ProjectCode:    draft.ProjectCode,
		AuditFields:    domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	m := mapping.ToModelExpenseRequest(expense, draft.Source)

	items, err := json.Marshal(m.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO expense_requests (`+expenseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`,
		m.ExpenseID,
		m.RequestID,
		m.ExpenseDate,
		m.Purpose,
		items,
		m.TotalAmount,
		m.Currency,
		m.Status,
		m.SubmitterID,
		m.SubmitterName,
		m.SubmitterTitle,
		m.ProjectID,
		m.ProjectName,
		m.ProjectCode,
		m.InternalComment,
		m.StatusComment,
		m.Source,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to insert expense request "+m.RequestID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.ExpenseRequest, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expense_requests WHERE expense_id = $1;`, expenseID)
	m, err := scanExpense(row)
	if err != nil {
		return nil, translate(err, "expense request "+expenseID)
	}
	d := mapping.ToDomainExpenseRequest(m)
	return &d, nil
}

func (r *PgxExpenseRepository) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.ExpenseRequest, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.ProjectID != "" {
		add("project_id = $%d", filter.ProjectID)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.SubmitterID != "" {
		add("submitter_id = $%d", filter.SubmitterID)
	}

	query := `SELECT ` + expenseColumns + ` FROM expense_requests`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC, request_id DESC LIMIT $%d OFFSET $%d;`, len(args)-1, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense requests: %w", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ExpenseRequest, error) {
		return scanExpense(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan expense requests: %w", err)
	}
	return mapping.ToDomainExpenseRequestSlice(ms), nil
}

// UpdateExpenseStatus locks the row with SELECT ... FOR UPDATE so that
// concurrent transitions of one request apply one after another.
func (r *PgxExpenseRepository) UpdateExpenseStatus(ctx context.Context, expenseID string, mutate portsrepo.StatusMutator) (*domain.ExpenseRequest, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	row := tx.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expense_requests WHERE expense_id = $1 FOR UPDATE;`, expenseID)
	m, err := scanExpense(row)
	if err != nil {
		return nil, translate(err, "expense request "+expenseID)
	}

	current := mapping.ToDomainExpenseRequest(m)
	persist, err := mutate(&current)
	if err != nil {
		return nil, err
	}
	if !persist {
		return &current, nil
	}

	current.LastUpdatedAt = time.Now().UTC()
	_, err = tx.Exec(ctx, `
		UPDATE expense_requests
		SET status = $2, status_comment = $3, last_updated_at = $4
		WHERE expense_id = $1;
	`, expenseID, string(current.Status), current.StatusComment, current.LastUpdatedAt)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to update status of "+current.RequestID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &current, nil
}

func (r *PgxExpenseRepository) UpdateInternalComment(ctx context.Context, expenseID string, comment *string) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE expense_requests
		SET internal_comment = $2, last_updated_at = NOW()
		WHERE expense_id = $1;
	`, expenseID, comment)
	if err != nil {
		return fmt.Errorf("failed to update internal comment of %s: %w", expenseID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteExpense removes the row only; project_counters is left alone.
func (r *PgxExpenseRepository) DeleteExpense(ctx context.Context, expenseID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM expense_requests WHERE expense_id = $1;`, expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense request %s: %w", expenseID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanExpense(row pgx.Row) (models.ExpenseRequest, error) {
	var (
		m     models.ExpenseRequest
		items []byte
	)
	err := row.Scan(
		&m.ExpenseID,
		&m.RequestID,
		&m.ExpenseDate,
		&m.Purpose,
		&items,
		&m.TotalAmount,
		&m.Currency,
		&m.Status,
		&m.SubmitterID,
		&m.SubmitterName,
		&m.SubmitterTitle,
		&m.ProjectID,
		&m.ProjectName,
		&m.ProjectCode,
		&m.InternalComment,
		&m.StatusComment,
		&m.Source,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(items, &m.Items); err != nil {
		return m, fmt.Errorf("failed to decode items of %s: %w", m.RequestID, err)
	}
	return m, nil
}
