package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/expense_tracker/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker/internal/dto"
	"github.com/SscSPs/expense_tracker/internal/middleware"
	"github.com/gin-gonic/gin"
)

type settingsHandler struct {
	adminChannelService portssvc.AdminChannelSvc
}

func registerSettingsRoutes(rg *gin.RouterGroup, adminChannelService portssvc.AdminChannelSvc) {
	h := &settingsHandler{adminChannelService: adminChannelService}

	settings := rg.Group("/settings", middleware.RequireAdmin())
	{
		settings.PUT("/admin-channel", h.setAdminChannel)
	}
}

// setAdminChannel godoc
// @Summary Register the administrator channel
// @Description New-request notices are sent to this chat channel.
// @Tags settings
// @Accept json
// @Param channel body dto.SetAdminChannelRequest true "Channel"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /settings/admin-channel [put]
func (h *settingsHandler) setAdminChannel(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SetAdminChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	if err := h.adminChannelService.RegisterAdminChannel(c.Request.Context(), req.ChannelID); err != nil {
		respondError(c, logger, err, "Failed to register admin channel")
		return
	}
	logger.Info("Admin channel registered", slog.String("channel_id", req.ChannelID))
	c.Status(http.StatusNoContent)
}
