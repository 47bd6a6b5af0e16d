package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
	portssvc "github.com/SscSPs/expense_tracker/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker/internal/dto"
	"github.com/SscSPs/expense_tracker/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

const maxWebFormBody = 64 << 10

type webSubmitHandler struct {
	expenseService portssvc.ExpenseWriterSvc
}

// registerWebSubmitRoutes exposes the anonymous web form endpoint. The
// submitter is resolved from the chat_id field, so callers are rate limited per IP.
func registerWebSubmitRoutes(r *gin.Engine, expenseService portssvc.ExpenseWriterSvc, formLimiter *limiter.Limiter) {
	h := &webSubmitHandler{expenseService: expenseService}

	public := r.Group("/public", middleware.RateLimit(formLimiter))
	{
		public.POST("/web-submit", h.submit)
	}
}

// submit godoc
// @Summary Submit an expense request from the web form
// @Description Loosely typed payload: chat_id, project_id, purpose, items[{name, quantity, amount, currency}], total_amount, currency, date. Numbers may be strings with a comma separator.
// @Tags public
// @Accept json
// @Produce json
// @Param form body object true "Form fields"
// @Success 201 {object} dto.WebSubmitResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Channel not linked to a member"
// @Failure 422 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /public/web-submit [post]
func (h *webSubmitHandler) submit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var fields map[string]any
	decoder := json.NewDecoder(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebFormBody))
	decoder.UseNumber()
	if err := decoder.Decode(&fields); err != nil || fields == nil {
		msg := "body must be a JSON object"
		if err != nil {
			msg = err.Error()
		}
		logger.Warn("Failed to decode web form", slog.String("error", msg))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + msg})
		return
	}

	created, err := h.expenseService.CreateExpense(c.Request.Context(), domain.FormDraft{Fields: fields})
	if err != nil {
		respondError(c, logger, err, "Failed to submit expense request")
		return
	}

	logger.Info("Web form request created", slog.String("request_id", created.RequestID))
	c.JSON(http.StatusCreated, dto.WebSubmitResponse{ExpenseID: created.ExpenseID, RequestID: created.RequestID})
}
