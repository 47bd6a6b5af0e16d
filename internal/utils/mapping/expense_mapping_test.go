package mapping

import (
	"testing"
	"time"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestExpenseRequestMapping_KeepsDenormalizedFields(t *testing.T) {
	title := "Engineer"
	created := time.Date(2025, 3, 14, 5, 0, 0, 0, time.UTC)
	d := domain.ExpenseRequest{
		ExpenseID:      "e-1",
		RequestID:      "TST-1",
		Items:          []domain.LineItem{{Name: "Cement", Quantity: decimal.NewFromInt(2), Amount: decimal.NewFromInt(10), Currency: "USD"}},
		TotalAmount:    decimal.NewFromInt(10),
		Currency:       "USD",
		Status:         domain.StatusReview,
		SubmitterName:  "Karimov Aziz",
		SubmitterTitle: &title,
		ProjectName:    "Test Site",
		ProjectCode:    "TST",
		AuditFields:    domain.AuditFields{CreatedAt: created},
	}

	m := ToModelExpenseRequest(d, domain.ChannelWizard)
	assert.Equal(t, "wizard", m.Source)
	assert.Equal(t, "review", m.Status)

	back := ToDomainExpenseRequest(m)
	assert.Equal(t, d, back)
}
