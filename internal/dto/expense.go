package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/expense_tracker/internal/apperrors"
	"github.com/SscSPs/expense_tracker/internal/core/domain"
	"github.com/SscSPs/expense_tracker/internal/utils"
	"github.com/shopspring/decimal"
)

// LineItemRequest is one item of a typed submission.
type LineItemRequest struct {
	Name     string          `json:"name" binding:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" binding:"omitempty,currency"`
}

// CreateExpenseRequest is the typed API payload. Amount rules are checked by the normalizer.
type CreateExpenseRequest struct {
	ProjectID   string            `json:"projectID" binding:"required"`
	Purpose     string            `json:"purpose" binding:"required"`
	Items       []LineItemRequest `json:"items" binding:"dive"`
	TotalAmount *decimal.Decimal  `json:"totalAmount"`
	Currency    *string           `json:"currency" binding:"omitempty,currency"`
	Date        *string           `json:"date"` // YYYY-MM-DD or RFC 3339
}

// ToTypedDraft builds the draft submitted on behalf of p.
func (r CreateExpenseRequest) ToTypedDraft(p domain.Principal) (domain.TypedDraft, error) {
	d := domain.TypedDraft{
		Submitter: p,
		ProjectID: r.ProjectID,
		Purpose:   r.Purpose,
		Total:     r.TotalAmount,
		Currency:  r.Currency,
		Items:     make([]domain.LineItem, len(r.Items)),
	}
	for i, it := range r.Items {
		d.Items[i] = domain.LineItem{
			Name:     it.Name,
			Quantity: it.Quantity,
			Amount:   it.Amount,
			Currency: strings.ToUpper(it.Currency),
		}
	}
	if r.Date != nil && strings.TrimSpace(*r.Date) != "" {
		date, err := ParseDate(*r.Date)
		if err != nil {
			return d, err
		}
		d.Date = &date
	}
	return d, nil
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD or RFC 3339", apperrors.ErrInvalidArgument, raw)
	}
	return t, nil
}

// ListExpensesParams defines query parameters for listing expense requests.
type ListExpensesParams struct {
	ProjectID string `form:"projectID"`
	Status    string `form:"status"`
	Limit     int    `form:"limit,default=50" binding:"min=1,max=200"`
	Offset    int    `form:"offset,default=0" binding:"min=0"`
}

// TransitionStatusRequest moves a request to another status.
type TransitionStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

// UpdateCommentRequest replaces the internal comment. An empty comment clears it.
type UpdateCommentRequest struct {
	Comment string `json:"comment"`
}

// LineItemResponse is one item of a returned request.
type LineItemResponse struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// ExpenseResponse defines the data returned for an expense request.
type ExpenseResponse struct {
	ExpenseID       string               `json:"expenseID"`
	RequestID       string               `json:"requestID"`
	Date            time.Time            `json:"date"`
	Purpose         string               `json:"purpose"`
	Items           []LineItemResponse   `json:"items"`
	TotalAmount     decimal.Decimal      `json:"totalAmount"`
	TotalFormatted  string               `json:"totalFormatted"`
	Currency        string               `json:"currency"`
	Status          domain.ExpenseStatus `json:"status"`
	StatusLabel     string               `json:"statusLabel"`
	StatusComment   *string              `json:"statusComment,omitempty"`
	InternalComment *string              `json:"internalComment,omitempty"`
	SubmitterID     *string              `json:"submitterID,omitempty"`
	SubmitterName   string               `json:"submitterName"`
	SubmitterTitle  *string              `json:"submitterTitle,omitempty"`
	ProjectID       *string              `json:"projectID,omitempty"`
	ProjectName     string               `json:"projectName"`
	ProjectCode     string               `json:"projectCode"`
	CreatedAt       time.Time            `json:"createdAt"`
	LastUpdatedAt   time.Time            `json:"lastUpdatedAt"`
}

// ToExpenseResponse converts a domain.ExpenseRequest. The internal comment is
// only copied when withInternal is set.
func ToExpenseResponse(e *domain.ExpenseRequest, locale string, withInternal bool) ExpenseResponse {
	items := make([]LineItemResponse, len(e.Items))
	for i, it := range e.Items {
		items[i] = LineItemResponse{Name: it.Name, Quantity: it.Quantity, Amount: it.Amount, Currency: it.Currency}
	}
	resp := ExpenseResponse{
		ExpenseID:      e.ExpenseID,
		RequestID:      e.RequestID,
		Date:           e.Date,
		Purpose:        e.Purpose,
		Items:          items,
		TotalAmount:    e.TotalAmount,
		TotalFormatted: utils.FormatMoney(e.TotalAmount, e.Currency),
		Currency:       e.Currency,
		Status:         e.Status,
		StatusLabel:    domain.StatusLabel(e.Status, locale),
		StatusComment:  e.StatusComment,
		SubmitterID:    e.SubmitterID,
		SubmitterName:  e.SubmitterName,
		SubmitterTitle: e.SubmitterTitle,
		ProjectID:      e.ProjectID,
		ProjectName:    e.ProjectName,
		ProjectCode:    e.ProjectCode,
		CreatedAt:      e.CreatedAt,
		LastUpdatedAt:  e.LastUpdatedAt,
	}
	if withInternal {
		resp.InternalComment = e.InternalComment
	}
	return resp
}

// ListExpensesResponse wraps a page of expense requests.
type ListExpensesResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// ToListExpensesResponse converts a page of requests.
func ToListExpensesResponse(expenses []domain.ExpenseRequest, locale string, withInternal bool, limit, offset int) ListExpensesResponse {
	out := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		out[i] = ToExpenseResponse(&expenses[i], locale, withInternal)
	}
	return ListExpensesResponse{Expenses: out, Limit: limit, Offset: offset}
}

// WebSubmitResponse is returned to the anonymous web form.
type WebSubmitResponse struct {
	ExpenseID string `json:"expenseID"`
	RequestID string `json:"requestID"`
}
