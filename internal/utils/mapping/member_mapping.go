package mapping

import (
	"github.com/SscSPs/expense_tracker/internal/core/domain"
	"github.com/SscSPs/expense_tracker/internal/models"
)

// ToModelMember converts a domain Member to a model Member. Project links are
// stored separately.
func ToModelMember(d domain.Member) models.Member {
	return models.Member{
		MemberID:     d.MemberID,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Login:        d.Login,
		PasswordHash: d.PasswordHash,
		Position:     d.Position,
		ChannelID:    d.ChannelID,
		Status:       string(d.Status),
		CreatedAt:    d.CreatedAt,
	}
}

// ToDomainMember converts a model Member and its project ids to a domain Member
func ToDomainMember(m models.Member, projectIDs []string) domain.Member {
	status := domain.MemberStatus(m.Status)
	if status == "" {
		status = domain.MemberActive
	}
	return domain.Member{
		MemberID:     m.MemberID,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Login:        m.Login,
		PasswordHash: m.PasswordHash,
		Position:     m.Position,
		ChannelID:    m.ChannelID,
		Status:       status,
		ProjectIDs:   projectIDs,
		CreatedAt:    m.CreatedAt,
	}
}
