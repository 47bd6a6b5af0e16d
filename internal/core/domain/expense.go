package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseStatus is the wire-stable lifecycle status of an expense request.
type ExpenseStatus string

const (
	StatusRequest   ExpenseStatus = "request"
	StatusReview    ExpenseStatus = "review"
	StatusConfirmed ExpenseStatus = "confirmed"
	StatusDeclined  ExpenseStatus = "declined"
	StatusRevision  ExpenseStatus = "revision"
	StatusArchived  ExpenseStatus = "archived"
)

// LineItem is one purchased good or service within a request.
type LineItem struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// ExpenseRequest is a persisted, numbered expense request.
// Submitter and project display fields are copied at creation time so the
// request keeps its history after the member or project changes.
type ExpenseRequest struct {
	ExpenseID       string          `json:"expenseID"` // Primary Key (UUID)
	RequestID       string          `json:"requestID"` // CODE-n, unique and never reused
	Date            time.Time       `json:"date"`
	Purpose         string          `json:"purpose"`
	Items           []LineItem      `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Currency        string          `json:"currency"`
	Status          ExpenseStatus   `json:"status"`
	SubmitterID     *string         `json:"submitterID,omitempty"` // Nullable once the member is deleted
	SubmitterName   string          `json:"submitterName"`
	SubmitterTitle  *string         `json:"submitterTitle,omitempty"`
	ProjectID       *string         `json:"projectID,omitempty"`
	ProjectName     string          `json:"projectName"`
	ProjectCode     string          `json:"projectCode"`
	InternalComment *string         `json:"internalComment,omitempty"` // Administrators only
	StatusComment   *string         `json:"statusComment,omitempty"`   // Visible to the submitter
	AuditFields
}

// ExpenseFilter narrows expense listings. Zero values mean "any".
type ExpenseFilter struct {
	ProjectID   string
	Status      ExpenseStatus
	SubmitterID string
	Limit       int
	Offset      int
}
