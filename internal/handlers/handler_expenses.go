package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/hostelhq/housing_ledger_app/internal/core/ports/services"
	"github.com/hostelhq/housing_ledger_app/internal/dto"
	"github.com/hostelhq/housing_ledger_app/internal/middleware"
)

// expenseHandler handles HTTP requests for vendor expenses.
type expenseHandler struct {
	postingService portssvc.PostingSvcFacade
}

func newExpenseHandler(ps portssvc.PostingSvcFacade) *expenseHandler {
	return &expenseHandler{postingService: ps}
}

// registerExpenseRoutes registers routes for recording expenses.
func registerExpenseRoutes(rg *gin.RouterGroup, postingService portssvc.PostingSvcFacade) {
	h := newExpenseHandler(postingService)
	rg.POST("/expenses", h.recordExpense)
}

func (h *expenseHandler) recordExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RecordExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid record expense request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	logger = logger.With(
		slog.String("vendor_id", req.VendorID),
		slog.String("account_code", req.AccountCode),
		slog.String("amount", req.Amount.String()),
	)
	logger.Info("Received request to record expense")

	entryID, err := h.postingService.RecordExpense(c.Request.Context(), req)
	if err != nil {
		respondPostingError(c, logger, err, "expense")
		return
	}
	c.JSON(http.StatusCreated, dto.EntryCreatedResponse{EntryID: entryID})
}
