package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/expense_tracker/internal/apperrors"
	portsrepo "github.com/SscSPs/expense_tracker/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxSequenceRepository issues request numbers from the project_counters table.
type PgxSequenceRepository struct {
	BaseRepository
}

func newPgxSequenceRepository(pool *pgxpool.Pool) *PgxSequenceRepository {
	return &PgxSequenceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.Sequencer = (*PgxSequenceRepository)(nil)

// NextInTx increments the project counter inside tx. The upsert seeds a missing
// counter row and locks it, so concurrent callers for one code queue up until
// the owning transaction commits or rolls back.
func (r *PgxSequenceRepository) NextInTx(ctx context.Context, tx pgx.Tx, projectCode string) (int64, error) {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE code = $1);`, projectCode).Scan(&exists); err != nil {
		return 0, fmt.Errorf("failed to check project code %s: %w", projectCode, err)
	}
	if !exists {
		return 0, fmt.Errorf("%w: project code %s", apperrors.ErrNotFound, projectCode)
	}

	query := `
		INSERT INTO project_counters (project_code, counter)
		VALUES ($1, 1)
		ON CONFLICT (project_code) DO UPDATE SET counter = project_counters.counter + 1
		RETURNING counter;
	`
	var n int64
	if err := tx.QueryRow(ctx, query, projectCode).Scan(&n); err != nil {
		return 0, apperrors.NewAppError(500, "failed to advance counter for "+projectCode, err)
	}
	return n, nil
}

// CurrentValue returns the last issued number for projectCode, 0 when none.
func (r *PgxSequenceRepository) CurrentValue(ctx context.Context, projectCode string) (int64, error) {
	var n int64
	err := r.Pool.QueryRow(ctx, `SELECT COALESCE((SELECT counter FROM project_counters WHERE project_code = $1), 0);`, projectCode).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to read counter for %s: %w", projectCode, err)
	}
	return n, nil
}
