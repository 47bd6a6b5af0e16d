package models

import "time"

// Project is the row of the projects table.
type Project struct {
	ProjectID string    `json:"projectID"` // Primary Key (UUID)
	Name      string    `json:"name"`
	Code      string    `json:"code"` // Unique, prefix of request ids
	CreatedAt time.Time `json:"createdAt"`
}
