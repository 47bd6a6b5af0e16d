package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_tracker/internal/core/ports/repositories"
	"github.com/SscSPs/expense_tracker/internal/models"
	"github.com/SscSPs/expense_tracker/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxMemberRepository struct {
	BaseRepository
}

func newPgxMemberRepository(pool *pgxpool.Pool) *PgxMemberRepository {
	return &PgxMemberRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.MemberRepositoryFacade = (*PgxMemberRepository)(nil)

const memberColumns = `member_id, first_name, last_name, login, password_hash, position, channel_id, status, created_at`

// SaveMember inserts a member together with its project links.
func (r *PgxMemberRepository) SaveMember(ctx context.Context, member domain.Member) error {
	m := mapping.ToModelMember(member)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	_, err = tx.Exec(ctx, `
		INSERT INTO team_members (`+memberColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`, m.MemberID, m.FirstName, m.LastName, m.Login, m.PasswordHash, m.Position, m.ChannelID, m.Status, m.CreatedAt)
	if err != nil {
		return translate(err, "member "+m.Login)
	}

	batch := &pgx.Batch{}
	for _, projectID := range member.ProjectIDs {
		batch.Queue(`INSERT INTO member_projects (member_id, project_id) VALUES ($1, $2) ON CONFLICT DO NOTHING;`, m.MemberID, projectID)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to link member %s to projects: %w", m.MemberID, err)
		}
	}

	return r.Commit(ctx, tx)
}

func (r *PgxMemberRepository) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	return r.findOne(ctx, "member_id = $1", memberID)
}

func (r *PgxMemberRepository) FindMemberByLogin(ctx context.Context, login string) (*domain.Member, error) {
	return r.findOne(ctx, "login = $1", login)
}

func (r *PgxMemberRepository) FindMemberByChannelID(ctx context.Context, channelID string) (*domain.Member, error) {
	return r.findOne(ctx, "channel_id = $1", channelID)
}

func (r *PgxMemberRepository) findOne(ctx context.Context, where string, arg string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE ` + where + `;`
	var m models.Member
	err := r.Pool.QueryRow(ctx, query, arg).Scan(
		&m.MemberID,
		&m.FirstName,
		&m.LastName,
		&m.Login,
		&m.PasswordHash,
		&m.Position,
		&m.ChannelID,
		&m.Status,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, translate(err, "member")
	}

	rows, err := r.Pool.Query(ctx, `SELECT project_id FROM member_projects WHERE member_id = $1;`, m.MemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects of member %s: %w", m.MemberID, err)
	}
	projectIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan projects of member %s: %w", m.MemberID, err)
	}

	d := mapping.ToDomainMember(m, projectIDs)
	return &d, nil
}

// LinkChannel sets channel_id only while it is empty. A channel owned by
// another member hits the unique index and is reported as a conflict.
func (r *PgxMemberRepository) LinkChannel(ctx context.Context, memberID, channelID string) (bool, error) {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE team_members SET channel_id = $2
		WHERE member_id = $1 AND channel_id IS NULL;
	`, memberID, channelID)
	if err != nil {
		return false, translate(err, "channel "+channelID)
	}
	return tag.RowsAffected() == 1, nil
}
