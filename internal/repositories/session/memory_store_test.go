package session

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTripDoesNotAlias(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	conv := domain.NewConversation("chan-1")
	conv.Step = domain.StepAwaitingItemName
	conv.Items = []domain.LineItem{{Name: "Cement", Quantity: decimal.NewFromInt(2), Amount: decimal.RequireFromString("1000.50"), Currency: "USD"}}

	require.NoError(t, store.Save(ctx, conv))
	conv.Items[0].Name = "changed after save"

	got, ok, err := store.Load(ctx, "chan-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.StepAwaitingItemName, got.Step)
	assert.Equal(t, "Cement", got.Items[0].Name)
	assert.True(t, got.Items[0].Amount.Equal(decimal.RequireFromString("1000.50")))
}

func TestMemoryStore_MissingAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	_, ok, err := store.Load(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, domain.NewConversation("chan-1")))
	require.NoError(t, store.Delete(ctx, "chan-1"))
	require.NoError(t, store.Delete(ctx, "chan-1"))

	_, ok, err = store.Load(ctx, "chan-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	store := NewMemoryStore(10 * time.Minute)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, domain.NewConversation("a")))
	require.NoError(t, store.Save(ctx, domain.NewConversation("b")))

	now = now.Add(9 * time.Minute)
	_, ok, _ := store.Load(ctx, "a")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = store.Load(ctx, "a")
	assert.False(t, ok)
	assert.Equal(t, 1, store.Sweep())
}
