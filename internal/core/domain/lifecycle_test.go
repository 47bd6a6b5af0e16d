package domain_test

import (
	"testing"

	"github.com/SscSPs/expense_tracker/internal/apperrors"
	"github.com/SscSPs/expense_tracker/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringPtr(s string) *string { return &s }

func TestParseStatus(t *testing.T) {
	st, err := domain.ParseStatus(" Confirmed ")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, st)

	_, err = domain.ParseStatus("paid")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to domain.ExpenseStatus
		want     bool
	}{
		{domain.StatusRequest, domain.StatusReview, true},
		{domain.StatusRequest, domain.StatusConfirmed, true},
		{domain.StatusReview, domain.StatusRequest, true},
		{domain.StatusRevision, domain.StatusReview, true},
		{domain.StatusRevision, domain.StatusConfirmed, false},
		{domain.StatusDeclined, domain.StatusRevision, true},
		{domain.StatusDeclined, domain.StatusConfirmed, false},
		{domain.StatusConfirmed, domain.StatusArchived, true},
		{domain.StatusConfirmed, domain.StatusRequest, false},
		{domain.StatusArchived, domain.StatusRequest, false},
		{domain.StatusArchived, domain.StatusArchived, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, domain.CanTransition(tt.from, tt.to))
		})
	}
}

func TestApplyTransition(t *testing.T) {
	t.Run("declined needs a comment", func(t *testing.T) {
		e := domain.ExpenseRequest{Status: domain.StatusRequest}
		changed, err := e.ApplyTransition(domain.StatusDeclined, "  ")
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		assert.False(t, changed)
		assert.Equal(t, domain.StatusRequest, e.Status)
	})

	t.Run("declined with comment", func(t *testing.T) {
		e := domain.ExpenseRequest{Status: domain.StatusRequest}
		changed, err := e.ApplyTransition(domain.StatusDeclined, "no receipt")
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, domain.StatusDeclined, e.Status)
		assert.Equal(t, "no receipt", *e.StatusComment)
	})

	t.Run("status change clears the old comment", func(t *testing.T) {
		e := domain.ExpenseRequest{Status: domain.StatusRevision, StatusComment: stringPtr("fix it")}
		changed, err := e.ApplyTransition(domain.StatusReview, "")
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Nil(t, e.StatusComment)
	})

	t.Run("same status keeps comment when none given", func(t *testing.T) {
		e := domain.ExpenseRequest{Status: domain.StatusReview, StatusComment: stringPtr("looking")}
		changed, err := e.ApplyTransition(domain.StatusReview, "")
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, "looking", *e.StatusComment)
	})

	t.Run("archived is terminal", func(t *testing.T) {
		e := domain.ExpenseRequest{Status: domain.StatusArchived}
		_, err := e.ApplyTransition(domain.StatusRequest, "")
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	})
}
