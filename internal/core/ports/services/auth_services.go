package services

import (
	"context"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
)

// AuthSvc exchanges credentials for a bearer token.
type AuthSvc interface {
	// Login checks the administrator credentials first, then the member logins.
	// Returns apperrors.ErrUnauthorized on a bad pair and apperrors.ErrForbidden
	// for a blocked member.
	Login(ctx context.Context, login, password string) (*domain.AccessGrant, error)
}
