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

type PgxProjectRepository struct {
	BaseRepository
}

func newPgxProjectRepository(pool *pgxpool.Pool) *PgxProjectRepository {
	return &PgxProjectRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ProjectRepositoryFacade = (*PgxProjectRepository)(nil)

// SaveProject inserts the project and its counter row in one transaction.
// An existing counter row for the code is kept so numbers are never reissued.
func (r *PgxProjectRepository) SaveProject(ctx context.Context, project domain.Project) error {
	m := mapping.ToModelProject(project)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	_, err = tx.Exec(ctx, `
		INSERT INTO projects (project_id, name, code, created_at)
		VALUES ($1, $2, $3, $4);
	`, m.ProjectID, m.Name, m.Code, m.CreatedAt)
	if err != nil {
		return translate(err, "project code "+m.Code)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO project_counters (project_code, counter)
		VALUES ($1, 0)
		ON CONFLICT (project_code) DO NOTHING;
	`, m.Code)
	if err != nil {
		return fmt.Errorf("failed to seed counter for %s: %w", m.Code, err)
	}

	return r.Commit(ctx, tx)
}

// FindProjectByID retrieves a project by its ID.
func (r *PgxProjectRepository) FindProjectByID(ctx context.Context, projectID string) (*domain.Project, error) {
	var m models.Project
	err := r.Pool.QueryRow(ctx, `
		SELECT project_id, name, code, created_at
		FROM projects
		WHERE project_id = $1;
	`, projectID).Scan(&m.ProjectID, &m.Name, &m.Code, &m.CreatedAt)
	if err != nil {
		return nil, translate(err, "project "+projectID)
	}
	d := mapping.ToDomainProject(m)
	return &d, nil
}

// ListProjectsByMember returns the projects linked to memberID, ordered by name.
func (r *PgxProjectRepository) ListProjectsByMember(ctx context.Context, memberID string) ([]domain.Project, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT p.project_id, p.name, p.code, p.created_at
		FROM projects p
		JOIN member_projects mp ON mp.project_id = p.project_id
		WHERE mp.member_id = $1
		ORDER BY p.name;
	`, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects of member %s: %w", memberID, err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Project, error) {
		var m models.Project
		err := row.Scan(&m.ProjectID, &m.Name, &m.Code, &m.CreatedAt)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan projects: %w", err)
	}
	return mapping.ToDomainProjectSlice(ms), nil
}
