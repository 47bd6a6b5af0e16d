package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_tracker/internal/core/ports/repositories"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "wizard:conversation:"

// RedisStore keeps conversations in Redis so they survive restarts. Turns are
// serialized by the wizard's in-process lock, so one bot process may use a
// given key prefix at a time.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ portsrepo.ConversationStore = (*RedisStore)(nil)

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

// NewRedisStore returns a store writing every conversation with the given ttl.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, conversationID string) (*domain.Conversation, bool, error) {
	payload, err := s.rdb.Get(ctx, keyPrefix+conversationID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load conversation %s: %w", conversationID, err)
	}

	var conv domain.Conversation
	if err := json.Unmarshal(payload, &conv); err != nil {
		return nil, false, fmt.Errorf("failed to decode conversation %s: %w", conversationID, err)
	}
	return &conv, true, nil
}

func (s *RedisStore) Save(ctx context.Context, conv *domain.Conversation) error {
	payload, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to encode conversation %s: %w", conv.ConversationID, err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+conv.ConversationID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save conversation %s: %w", conv.ConversationID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, conversationID string) error {
	if err := s.rdb.Del(ctx, keyPrefix+conversationID).Err(); err != nil {
		return fmt.Errorf("failed to delete conversation %s: %w", conversationID, err)
	}
	return nil
}
