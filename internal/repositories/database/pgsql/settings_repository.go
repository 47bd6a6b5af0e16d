package pgsql

import (
	"context"
	"errors"
	"fmt"

	portsrepo "github.com/SscSPs/expense_tracker/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const adminChannelKey = "admin_channel_id"

// PgxSettingsRepository stores process-wide settings in a key/value table.
type PgxSettingsRepository struct {
	BaseRepository
}

func newPgxSettingsRepository(pool *pgxpool.Pool) *PgxSettingsRepository {
	return &PgxSettingsRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.AdminChannelRegistry = (*PgxSettingsRepository)(nil)

func (r *PgxSettingsRepository) GetAdminChannel(ctx context.Context) (string, bool, error) {
	var value string
	err := r.Pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1;`, adminChannelKey).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read admin channel: %w", err)
	}
	return value, value != "", nil
}

func (r *PgxSettingsRepository) SetAdminChannel(ctx context.Context, channelID string) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at;
	`, adminChannelKey, channelID)
	if err != nil {
		return fmt.Errorf("failed to store admin channel: %w", err)
	}
	return nil
}
