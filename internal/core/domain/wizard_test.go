package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/expense_tracker/internal/apperrors"
	"github.com/SscSPs/expense_tracker/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation_CommitItemKeepsOneCurrency(t *testing.T) {
	conv := domain.NewConversation("chan-1")
	conv.PendingName = "Cement"
	conv.PendingQuantity = decimal.NewFromInt(1)
	conv.PendingAmount = decimal.NewFromInt(100)
	require.NoError(t, conv.CommitItem("USD"))

	conv.PendingName = "Bricks"
	conv.PendingQuantity = decimal.NewFromInt(2)
	conv.PendingAmount = decimal.NewFromInt(50)
	err := conv.CommitItem("UZS")

	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.Contains(t, err.Error(), "USD")
	assert.Len(t, conv.Items, 1)
	assert.Equal(t, "Bricks", conv.PendingName)
	assert.Equal(t, "USD", conv.ChosenCurrency())
}

func TestConversation_SelectProject(t *testing.T) {
	conv := domain.NewConversation("chan-1")
	conv.Projects = []domain.ProjectOption{
		{ProjectID: "p-1", Name: "Alpha", Code: "ALP"},
		{ProjectID: "p-2", Name: "Beta", Code: "BET"},
	}

	for _, answer := range []string{"Beta (BET)", "bet", "2"} {
		p, ok := conv.SelectProject(answer)
		assert.True(t, ok, answer)
		assert.Equal(t, "p-2", p.ProjectID, answer)
	}
	_, ok := conv.SelectProject("Gamma")
	assert.False(t, ok)
}

func TestParseDecimalInput(t *testing.T) {
	d, err := domain.ParseDecimalInput(" 1 000,50 ")
	require.NoError(t, err)
	assert.Equal(t, "1000.5", d.String())

	for _, bad := range []string{"", "abc", "0", "-3"} {
		_, err := domain.ParseDecimalInput(bad)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument, bad)
	}
}

func TestParseDateInput(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.FixedZone("UZT", 5*60*60))

	got, err := domain.ParseDateInput("Сейчас", now)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14T04:30:00Z", got)

	got, err = domain.ParseDateInput("2025-02-28", now)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-28", got)

	_, err = domain.ParseDateInput("28.02.2025", now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestSumItemAmountsIgnoresQuantity(t *testing.T) {
	items := []domain.LineItem{
		{Quantity: decimal.NewFromInt(3), Amount: decimal.RequireFromString("1000.50")},
		{Quantity: decimal.NewFromInt(7), Amount: decimal.RequireFromString("250.25")},
	}
	assert.Equal(t, "1250.75", domain.SumItemAmounts(items).StringFixed(2))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Declined", domain.StatusLabel(domain.StatusDeclined, "en"))
	assert.Equal(t, "Отклонено", domain.StatusLabel(domain.StatusDeclined, "ru"))
	assert.Equal(t, "Отклонено", domain.StatusLabel(domain.StatusDeclined, "uz"))
}
