package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Sequencer issues project-scoped request numbers.
type Sequencer interface {
	// NextInTx returns the next number for projectCode inside tx. The counter row
	// stays locked until tx ends, so concurrent callers for the same code wait
	// and receive strictly increasing numbers. Returns apperrors.ErrNotFound for
	// an unknown project code.
	NextInTx(ctx context.Context, tx pgx.Tx, projectCode string) (int64, error)

	// CurrentValue returns the last issued number, 0 when none was issued.
	CurrentValue(ctx context.Context, projectCode string) (int64, error)
}
