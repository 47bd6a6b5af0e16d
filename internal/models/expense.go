package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is the JSON shape of one element of expense_requests.items.
type LineItem struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// ExpenseRequest is the row of the expense_requests table.
type ExpenseRequest struct {
	ExpenseID       string          `json:"expenseID"` // Primary Key (UUID)
	RequestID       string          `json:"requestID"` // Unique
	ExpenseDate     time.Time       `json:"expenseDate"`
	Purpose         string          `json:"purpose"`
	Items           []LineItem      `json:"items"` // JSONB
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	SubmitterID     *string         `json:"submitterID"` // FK -> team_members, SET NULL on delete
	SubmitterName   string          `json:"submitterName"`
	SubmitterTitle  *string         `json:"submitterTitle"`
	ProjectID       *string         `json:"projectID"` // FK -> projects, requests are deleted with their project
	ProjectName     string          `json:"projectName"`
	ProjectCode     string          `json:"projectCode"`
	InternalComment *string         `json:"internalComment"`
	StatusComment   *string         `json:"statusComment"`
	Source          string          `json:"source"`
	AuditFields
}
