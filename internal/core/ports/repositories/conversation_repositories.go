package repositories

import (
	"context"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
)

// ConversationStore is the arena holding one wizard state per conversation id.
type ConversationStore interface {
	// Load returns the stored conversation; ok is false when there is none.
	Load(ctx context.Context, conversationID string) (conv *domain.Conversation, ok bool, err error)

	// Save stores conv under its ConversationID.
	Save(ctx context.Context, conv *domain.Conversation) error

	// Delete forgets the conversation. Deleting a missing one is not an error.
	Delete(ctx context.Context, conversationID string) error
}
