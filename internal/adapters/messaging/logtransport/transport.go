// Package logtransport is the chat transport used when no bot token is configured.
package logtransport

import (
	"context"
	"log/slog"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
	"github.com/SscSPs/expense_tracker/internal/core/ports/messaging"
)

// Transport writes outgoing messages to the log instead of a chat.
type Transport struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{logger: logger.With(slog.String("component", "log_transport"))}
}

var _ messaging.Transport = (*Transport)(nil)

func (t *Transport) Send(ctx context.Context, channelID string, text string, buttons []domain.Button) error {
	t.logger.InfoContext(ctx, "Chat message not sent, no transport configured",
		slog.String("channel_id", channelID),
		slog.Int("length", len(text)),
		slog.Int("buttons", len(buttons)),
	)
	return nil
}
