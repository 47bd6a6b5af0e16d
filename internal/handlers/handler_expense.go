package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/expense_tracker/internal/apperrors"
	"github.com/SscSPs/expense_tracker/internal/core/domain"
	portssvc "github.com/SscSPs/expense_tracker/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker/internal/dto"
	"github.com/SscSPs/expense_tracker/internal/middleware"
	"github.com/gin-gonic/gin"
)

// DownloadTokenVerifier checks the signed links sent with administrator notices.
type DownloadTokenVerifier interface {
	VerifyDownloadToken(token, expenseID string) error
}

// expenseHandler handles HTTP requests related to expense requests.
type expenseHandler struct {
	expenseService portssvc.ExpenseSvcFacade
	locale         string
}

func newExpenseHandler(es portssvc.ExpenseSvcFacade, locale string) *expenseHandler {
	return &expenseHandler{expenseService: es, locale: locale}
}

// registerExpenseRoutes registers the authenticated expense routes.
func registerExpenseRoutes(rg *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade, locale string) {
	h := newExpenseHandler(expenseService, locale)

	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.createExpense)
		expenses.GET("", h.listExpenses)
		expenses.GET("/:expenseID", h.getExpense)

		admin := expenses.Group("", middleware.RequireAdmin())
		admin.PATCH("/:expenseID/status", h.transitionStatus)
		admin.PUT("/:expenseID/comment", h.updateComment)
		admin.DELETE("/:expenseID", h.deleteExpense)
	}
}

// registerDocumentRoute exposes the request behind a signed download link.
// It sits outside the bearer-token group: the link token is the credential.
func registerDocumentRoute(r *gin.Engine, expenseService portssvc.ExpenseSvcFacade, tokens DownloadTokenVerifier, locale string) {
	h := newExpenseHandler(expenseService, locale)
	r.GET("/api/v1/expenses/:expenseID/document", func(c *gin.Context) {
		h.getDocument(c, tokens)
	})
}

// createExpense godoc
// @Summary Submit an expense request
// @Description Creates a request on behalf of the calling member and notifies the administrator channel
// @Tags expenses
// @Accept json
// @Produce json
// @Param expense body dto.CreateExpenseRequest true "Expense request"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 404 {object} ErrorResponse "Unknown project or member"
// @Failure 422 {object} ErrorResponse "Business rule violated"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses [post]
func (h *expenseHandler) createExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		logger.Error("Principal not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	draft, err := req.ToTypedDraft(principal)
	if err != nil {
		respondError(c, logger, err, "Failed to create expense request")
		return
	}

	created, err := h.expenseService.CreateExpense(c.Request.Context(), draft)
	if err != nil {
		respondError(c, logger, err, "Failed to create expense request")
		return
	}

	logger.Info("Expense request created", slog.String("request_id", created.RequestID))
	c.JSON(http.StatusCreated, dto.ToExpenseResponse(created, h.locale, principal.IsAdmin()))
}

// listExpenses godoc
// @Summary List expense requests
// @Description Newest first. Members only see their own requests.
// @Tags expenses
// @Produce json
// @Param projectID query string false "Project ID"
// @Param status query string false "Status"
// @Param limit query int false "Page size" minimum(1) maximum(200)
// @Param offset query int false "Offset" minimum(0)
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses [get]
func (h *expenseHandler) listExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListExpenses", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	filter := domain.ExpenseFilter{ProjectID: params.ProjectID, Limit: params.Limit, Offset: params.Offset}
	if params.Status != "" {
		status, err := domain.ParseStatus(params.Status)
		if err != nil {
			respondError(c, logger, err, "Failed to list expense requests")
			return
		}
		filter.Status = status
	}
	if m, isMember := principal.(domain.MemberPrincipal); isMember {
		filter.SubmitterID = m.MemberID
	}

	expenses, err := h.expenseService.ListExpenses(c.Request.Context(), filter)
	if err != nil {
		respondError(c, logger, err, "Failed to list expense requests")
		return
	}

	logger.Info("Expense requests listed", slog.Int("count", len(expenses)))
	c.JSON(http.StatusOK, dto.ToListExpensesResponse(expenses, h.locale, principal.IsAdmin(), params.Limit, params.Offset))
}

// getExpense godoc
// @Summary Get an expense request
// @Tags expenses
// @Produce json
// @Param expenseID path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses/{expenseID} [get]
func (h *expenseHandler) getExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID := c.Param("expenseID")

	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	expense, err := h.expenseService.GetExpense(c.Request.Context(), expenseID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve expense request")
		return
	}
	// Another member's request is reported as missing.
	if m, isMember := principal.(domain.MemberPrincipal); isMember {
		if expense.SubmitterID == nil || *expense.SubmitterID != m.MemberID {
			respondError(c, logger, fmt.Errorf("%w: expense request %s", apperrors.ErrNotFound, expenseID), "Failed to retrieve expense request")
			return
		}
	}

	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense, h.locale, principal.IsAdmin()))
}

// transitionStatus godoc
// @Summary Change the status of an expense request
// @Description declined and revision require a comment. The submitter is notified when the status changes.
// @Tags expenses
// @Accept json
// @Produce json
// @Param expenseID path string true "Expense ID"
// @Param transition body dto.TransitionStatusRequest true "Target status"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 400 {object} ErrorResponse "Unknown status or missing comment"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Transition not allowed"
// @Security BearerAuth
// @Router /expenses/{expenseID}/status [patch]
func (h *expenseHandler) transitionStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID := c.Param("expenseID")
	var req dto.TransitionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for TransitionStatus", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	updated, err := h.expenseService.TransitionStatus(c.Request.Context(), expenseID, domain.ExpenseStatus(strings.TrimSpace(req.Status)), req.Comment)
	if err != nil {
		respondError(c, logger, err, "Failed to change status")
		return
	}

	logger.Info("Expense status changed", slog.String("request_id", updated.RequestID), slog.String("status", string(updated.Status)))
	c.JSON(http.StatusOK, dto.ToExpenseResponse(updated, h.locale, true))
}

// updateComment godoc
// @Summary Replace the internal comment
// @Tags expenses
// @Accept json
// @Param expenseID path string true "Expense ID"
// @Param comment body dto.UpdateCommentRequest true "Comment"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses/{expenseID}/comment [put]
func (h *expenseHandler) updateComment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID := c.Param("expenseID")
	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	if err := h.expenseService.UpdateInternalComment(c.Request.Context(), expenseID, req.Comment); err != nil {
		respondError(c, logger, err, "Failed to update comment")
		return
	}
	c.Status(http.StatusNoContent)
}

// deleteExpense godoc
// @Summary Delete an expense request
// @Description The request id is never issued again.
// @Tags expenses
// @Param expenseID path string true "Expense ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses/{expenseID} [delete]
func (h *expenseHandler) deleteExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID := c.Param("expenseID")

	if err := h.expenseService.DeleteExpense(c.Request.Context(), expenseID); err != nil {
		respondError(c, logger, err, "Failed to delete expense request")
		return
	}
	logger.Info("Expense request deleted", slog.String("expense_id", expenseID))
	c.Status(http.StatusNoContent)
}

// getDocument godoc
// @Summary Fetch a request through a signed link
// @Description Used by the download button of administrator notices.
// @Tags expenses
// @Produce json
// @Param expenseID path string true "Expense ID"
// @Param token query string true "Download token"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /expenses/{expenseID}/document [get]
func (h *expenseHandler) getDocument(c *gin.Context, tokens DownloadTokenVerifier) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID := c.Param("expenseID")

	if err := tokens.VerifyDownloadToken(c.Query("token"), expenseID); err != nil {
		logger.Warn("Rejected download token", slog.String("expense_id", expenseID), slog.String("error", err.Error()))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired link"})
		return
	}

	expense, err := h.expenseService.GetExpense(c.Request.Context(), expenseID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve expense request")
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense, h.locale, false))
}
