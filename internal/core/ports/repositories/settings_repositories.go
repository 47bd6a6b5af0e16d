package repositories

import "context"

// AdminChannelRegistry stores the chat channel that receives administrator notices.
type AdminChannelRegistry interface {
	// GetAdminChannel returns the registered channel; ok is false when none is set.
	GetAdminChannel(ctx context.Context) (channelID string, ok bool, err error)

	// SetAdminChannel registers channelID, replacing any previous one.
	SetAdminChannel(ctx context.Context, channelID string) error
}
