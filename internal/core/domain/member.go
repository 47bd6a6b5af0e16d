package domain

import (
	"strings"
	"time"
)

// MemberStatus is the lifecycle status of a team member.
type MemberStatus string

const (
	MemberActive  MemberStatus = "active"
	MemberBlocked MemberStatus = "blocked"
)

// Member is a person allowed to submit expense requests.
type Member struct {
	MemberID     string       `json:"memberID"` // Primary Key (UUID)
	FirstName    string       `json:"firstName"`
	LastName     string       `json:"lastName"`
	Login        string       `json:"login"` // Unique
	PasswordHash string       `json:"-"`
	Position     *string      `json:"position,omitempty"`  // Job title, optional
	ChannelID    *string      `json:"channelID,omitempty"` // Linked chat channel, unique when set
	Status       MemberStatus `json:"status"`
	ProjectIDs   []string     `json:"projectIDs"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// FullName renders the name the way it is printed on expense documents: "Last First".
func (m Member) FullName() string {
	return strings.TrimSpace(m.LastName + " " + m.FirstName)
}

// IsActive reports whether the member may submit requests.
func (m Member) IsActive() bool {
	return m.Status != MemberBlocked
}

// HasChannel reports whether a chat channel is linked to the member.
func (m Member) HasChannel() bool {
	return m.ChannelID != nil && *m.ChannelID != ""
}
