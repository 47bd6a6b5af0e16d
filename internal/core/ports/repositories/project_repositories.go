package repositories

import (
	"context"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
)

// ProjectReader defines read operations for project data
type ProjectReader interface {
	// FindProjectByID retrieves a project by its ID. Returns apperrors.ErrNotFound when absent.
	FindProjectByID(ctx context.Context, projectID string) (*domain.Project, error)

	// ListProjectsByMember returns the projects the member is linked to, ordered by name.
	ListProjectsByMember(ctx context.Context, memberID string) ([]domain.Project, error)
}

// ProjectWriter defines write operations for project data
type ProjectWriter interface {
	// SaveProject inserts a project together with its sequence counter row (value 0).
	SaveProject(ctx context.Context, project domain.Project) error
}

// ProjectRepositoryFacade combines all project-related repository interfaces
type ProjectRepositoryFacade interface {
	ProjectReader
	ProjectWriter
}
