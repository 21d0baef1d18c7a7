package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hostelhq/housing_ledger_app/internal/apperrors"
	portssvc "github.com/hostelhq/housing_ledger_app/internal/core/ports/services"
	"github.com/hostelhq/housing_ledger_app/internal/dto"
	"github.com/hostelhq/housing_ledger_app/internal/middleware"
)

// paymentHandler handles HTTP requests for incoming payments.
type paymentHandler struct {
	allocationService portssvc.AllocationSvcFacade
}

func newPaymentHandler(as portssvc.AllocationSvcFacade) *paymentHandler {
	return &paymentHandler{allocationService: as}
}

// registerPaymentRoutes registers routes for recording payments.
func registerPaymentRoutes(rg *gin.RouterGroup, allocationService portssvc.AllocationSvcFacade) {
	h := newPaymentHandler(allocationService)
	rg.POST("/payments", h.recordPayment)
}

func (h *paymentHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid record payment request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	logger = logger.With(
		slog.String("debtor_id", req.DebtorID),
		slog.String("source_ref", req.SourceRef),
		slog.String("amount", req.Amount.String()),
	)
	logger.Info("Received request to record payment")

	result, err := h.allocationService.RecordPayment(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Payment rejected by validation", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrConcurrentModification) {
			logger.Warn("Debtor busy, payment should be retried")
			c.JSON(http.StatusConflict, gin.H{"error": "Debtor is being modified, retry shortly"})
		} else {
			logger.Error("Failed to record payment", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		}
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, dto.ToAllocationResponse(result))
}
