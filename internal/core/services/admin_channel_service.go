package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/expense_tracker/internal/apperrors"
	portsrepo "github.com/SscSPs/expense_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_tracker/internal/core/ports/services"
)

type adminChannelService struct {
	BaseService
	registry portsrepo.AdminChannelRegistry
}

// NewAdminChannelService creates a new AdminChannelSvc.
func NewAdminChannelService(registry portsrepo.AdminChannelRegistry) portssvc.AdminChannelSvc {
	return &adminChannelService{registry: registry}
}

var _ portssvc.AdminChannelSvc = (*adminChannelService)(nil)

func (s *adminChannelService) RegisterAdminChannel(ctx context.Context, channelID string) error {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return fmt.Errorf("%w: channel id is required", apperrors.ErrInvalidArgument)
	}
	if err := s.registry.SetAdminChannel(ctx, channelID); err != nil {
		s.LogError(ctx, err, "Failed to register admin channel", slog.String("channel_id", channelID))
		return fmt.Errorf("failed to register admin channel: %w", err)
	}
	s.LogInfo(ctx, "Admin channel registered", slog.String("channel_id", channelID))
	return nil
}
