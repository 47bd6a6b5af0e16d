package repositories

import (
	"context"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
)

// MemberReader defines read operations for team members
type MemberReader interface {
	// FindMemberByID retrieves a member by ID. Returns apperrors.ErrNotFound when absent.
	FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error)

	// FindMemberByLogin retrieves a member by login. Returns apperrors.ErrNotFound when absent.
	FindMemberByLogin(ctx context.Context, login string) (*domain.Member, error)

	// FindMemberByChannelID retrieves the member linked to a chat channel.
	// Returns apperrors.ErrNotFound when no member is linked.
	FindMemberByChannelID(ctx context.Context, channelID string) (*domain.Member, error)
}

// MemberWriter defines write operations for team members
type MemberWriter interface {
	// SaveMember inserts a member and its project links.
	SaveMember(ctx context.Context, member domain.Member) error

	// LinkChannel sets the member's chat channel if it has none yet.
	// It reports whether the link was made; an existing link is left untouched.
	// Returns apperrors.ErrConflict when the channel belongs to another member.
	LinkChannel(ctx context.Context, memberID, channelID string) (bool, error)
}

// MemberRepositoryFacade combines all member-related repository interfaces
type MemberRepositoryFacade interface {
	MemberReader
	MemberWriter
}
