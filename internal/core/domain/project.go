package domain

import "time"

// Project is a budget holder. Its Code prefixes every request id issued for it.
type Project struct {
	ProjectID string    `json:"projectID"` // Primary Key (UUID)
	Name      string    `json:"name"`
	Code      string    `json:"code"` // Unique, immutable once request ids exist
	CreatedAt time.Time `json:"createdAt"`
}
