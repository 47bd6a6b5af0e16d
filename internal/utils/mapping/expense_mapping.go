package mapping

import (
	"github.com/SscSPs/expense_tracker/internal/core/domain"
	"github.com/SscSPs/expense_tracker/internal/models"
)

// ToModelLineItems converts domain line items to their JSON column shape
func ToModelLineItems(ds []domain.LineItem) []models.LineItem {
	ms := make([]models.LineItem, len(ds))
	for i, d := range ds {
		ms[i] = models.LineItem{Name: d.Name, Quantity: d.Quantity, Amount: d.Amount, Currency: d.Currency}
	}
	return ms
}

// ToDomainLineItems converts stored line items to domain line items
func ToDomainLineItems(ms []models.LineItem) []domain.LineItem {
	ds := make([]domain.LineItem, len(ms))
	for i, m := range ms {
		ds[i] = domain.LineItem{Name: m.Name, Quantity: m.Quantity, Amount: m.Amount, Currency: m.Currency}
	}
	return ds
}

// ToModelExpenseRequest converts a domain ExpenseRequest to a model ExpenseRequest
func ToModelExpenseRequest(d domain.ExpenseRequest, source domain.Channel) models.ExpenseRequest {
	return models.ExpenseRequest{
		ExpenseID:       d.ExpenseID,
		RequestID:       d.RequestID,
		ExpenseDate:     d.Date,
		Purpose:         d.Purpose,
		Items:           ToModelLineItems(d.Items),
		TotalAmount:     d.TotalAmount,
		Currency:        d.Currency,
		Status:          string(d.Status),
		SubmitterID:     d.SubmitterID,
		SubmitterName:   d.SubmitterName,
		SubmitterTitle:  d.SubmitterTitle,
		ProjectID:       d.ProjectID,
		ProjectName:     d.ProjectName,
		ProjectCode:     d.ProjectCode,
		InternalComment: d.InternalComment,
		StatusComment:   d.StatusComment,
		Source:          string(source),
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			LastUpdatedAt: d.LastUpdatedAt,
		},
	}
}

// ToDomainExpenseRequest converts a model ExpenseRequest to a domain ExpenseRequest
func ToDomainExpenseRequest(m models.ExpenseRequest) domain.ExpenseRequest {
	return domain.ExpenseRequest{
		ExpenseID:       m.ExpenseID,
		RequestID:       m.RequestID,
		Date:            m.ExpenseDate,
		Purpose:         m.Purpose,
		Items:           ToDomainLineItems(m.Items),
		TotalAmount:     m.TotalAmount,
		Currency:        m.Currency,
		Status:          domain.ExpenseStatus(m.Status),
		SubmitterID:     m.SubmitterID,
		SubmitterName:   m.SubmitterName,
		SubmitterTitle:  m.SubmitterTitle,
		ProjectID:       m.ProjectID,
		ProjectName:     m.ProjectName,
		ProjectCode:     m.ProjectCode,
		InternalComment: m.InternalComment,
		StatusComment:   m.StatusComment,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
		},
	}
}

// ToDomainExpenseRequestSlice converts a slice of model requests to domain requests
func ToDomainExpenseRequestSlice(ms []models.ExpenseRequest) []domain.ExpenseRequest {
	ds := make([]domain.ExpenseRequest, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainExpenseRequest(m)
	}
	return ds
}
