package models

import "time"

// Member is the row of the team_members table.
type Member struct {
	MemberID     string    `json:"memberID"` // Primary Key (UUID)
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Login        string    `json:"login"` // Unique
	PasswordHash string    `json:"-"`
	Position     *string   `json:"position"`  // Nullable
	ChannelID    *string   `json:"channelID"` // Nullable, unique when set
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}
