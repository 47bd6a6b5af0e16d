package services

import (
	"context"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
)

// WizardSvc runs the chat conversation that collects an expense request.
type WizardSvc interface {
	// HandleMessage feeds one message of a conversation into its state machine.
	HandleMessage(ctx context.Context, conversationID string, text string) (*domain.WizardReply, error)
}

// AdminChannelSvc manages the channel receiving administrator notices.
type AdminChannelSvc interface {
	// RegisterAdminChannel makes channelID the administrator channel.
	RegisterAdminChannel(ctx context.Context, channelID string) error
}
