package messaging

import (
	"context"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
)

// Transport delivers a text message, optionally with link buttons, to a chat
// channel. Retries, if any, are the transport's business.
type Transport interface {
	Send(ctx context.Context, channelID string, text string, buttons []domain.Button) error
}
