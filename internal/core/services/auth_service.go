package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/expense_tracker/internal/apperrors"
	"github.com/SscSPs/expense_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_tracker/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker/internal/platform/config"
	"github.com/SscSPs/expense_tracker/internal/utils"
)

type authService struct {
	BaseService
	memberRepo        portsrepo.MemberReader
	adminLogin        string
	adminPasswordHash string
	jwtSecret         string
	jwtIssuer         string
	jwtExpiry         time.Duration
}

// NewAuthService creates an AuthSvc. The administrator login is disabled when
// cfg carries no password hash.
func NewAuthService(cfg *config.Config, memberRepo portsrepo.MemberReader) portssvc.AuthSvc {
	return &authService{
		memberRepo:        memberRepo,
		adminLogin:        cfg.AdminLogin,
		adminPasswordHash: cfg.AdminPasswordHash,
		jwtSecret:         cfg.JWTSecret,
		jwtIssuer:         cfg.JWTIssuer,
		jwtExpiry:         cfg.JWTExpiry,
	}
}

var _ portssvc.AuthSvc = (*authService)(nil)

func (s *authService) Login(ctx context.Context, login, password string) (*domain.AccessGrant, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, apperrors.ErrUnauthorized
	}

	if s.adminPasswordHash != "" && strings.EqualFold(login, s.adminLogin) {
		if !utils.CheckPasswordHash(password, s.adminPasswordHash) {
			s.LogInfo(ctx, "Administrator login rejected")
			return nil, apperrors.ErrUnauthorized
		}
		return s.grant(domain.AdminPrincipal{Login: s.adminLogin}, s.adminLogin, utils.RoleAdmin)
	}

	member, err := s.memberRepo.FindMemberByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			utils.RejectUnknownLogin(password)
			return nil, apperrors.ErrUnauthorized
		}
		s.LogError(ctx, err, "Failed to look up member for login", slog.String("login", login))
		return nil, fmt.Errorf("login %s: %w", login, err)
	}
	if !utils.CheckPasswordHash(password, member.PasswordHash) {
		return nil, apperrors.ErrUnauthorized
	}
	if !member.IsActive() {
		return nil, fmt.Errorf("%w: member %s is blocked", apperrors.ErrForbidden, member.MemberID)
	}
	return s.grant(domain.MemberPrincipal{MemberID: member.MemberID}, member.MemberID, utils.RoleMember)
}

func (s *authService) grant(p domain.Principal, subject, role string) (*domain.AccessGrant, error) {
	expiresAt := time.Now().Add(s.jwtExpiry)
	token, err := utils.GenerateAccessToken(subject, role, s.jwtSecret, s.jwtExpiry, s.jwtIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	return &domain.AccessGrant{AccessToken: token, ExpiresAt: expiresAt, Principal: p}, nil
}
