package dto

// SetAdminChannelRequest registers the chat channel for administrator notices.
type SetAdminChannelRequest struct {
	ChannelID string `json:"channelID" binding:"required"`
}
