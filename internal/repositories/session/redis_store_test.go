package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedisStore connects to REDIS_TEST_URL or skips the test.
func newTestRedisStore(t *testing.T, ttl time.Duration) *RedisStore {
	t.Helper()
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set; skipping redis store tests")
	}
	rdb, err := NewRedisClient(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, ttl)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestRedisStore(t, time.Minute)
	id := "chan-" + uuid.NewString()
	t.Cleanup(func() { _ = store.Delete(ctx, id) })

	conv := domain.NewConversation(id)
	conv.Step = domain.StepAwaitingItemName
	conv.Items = []domain.LineItem{{Name: "Cement", Quantity: decimal.NewFromInt(2), Amount: decimal.RequireFromString("1000.50"), Currency: "USD"}}
	require.NoError(t, store.Save(ctx, conv))

	got, ok, err := store.Load(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.StepAwaitingItemName, got.Step)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Cement", got.Items[0].Name)
	assert.True(t, got.Items[0].Amount.Equal(decimal.RequireFromString("1000.50")))

	ttl, err := store.rdb.TTL(ctx, keyPrefix+id).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisStore_MissingAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestRedisStore(t, time.Minute)
	id := "chan-" + uuid.NewString()

	_, ok, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, domain.NewConversation(id)))
	require.NoError(t, store.Delete(ctx, id))
	_, ok, err = store.Load(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, store.Delete(ctx, id))
}

func TestRedisStore_CorruptPayload(t *testing.T) {
	ctx := context.Background()
	store := newTestRedisStore(t, time.Minute)
	id := "chan-" + uuid.NewString()
	t.Cleanup(func() { _ = store.Delete(ctx, id) })

	require.NoError(t, store.rdb.Set(ctx, keyPrefix+id, "not json", time.Minute).Err())

	_, ok, err := store.Load(ctx, id)
	assert.Error(t, err)
	assert.False(t, ok)
}
