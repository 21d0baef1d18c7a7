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

// invoiceHandler handles HTTP requests for billing and adjustments.
type invoiceHandler struct {
	postingService portssvc.PostingSvcFacade
}

func newInvoiceHandler(ps portssvc.PostingSvcFacade) *invoiceHandler {
	return &invoiceHandler{postingService: ps}
}

// registerInvoiceRoutes registers routes for invoices and adjustments.
func registerInvoiceRoutes(rg *gin.RouterGroup, postingService portssvc.PostingSvcFacade) {
	h := newInvoiceHandler(postingService)
	rg.POST("/invoices", h.recordInvoice)
	rg.POST("/adjustments", h.recordAdjustment)
}

func (h *invoiceHandler) recordInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RecordInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid record invoice request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	logger = logger.With(
		slog.String("debtor_id", req.DebtorID),
		slog.String("category", req.Category),
		slog.String("period", req.Period),
	)
	logger.Info("Received request to record invoice")

	entryID, err := h.postingService.RecordInvoice(c.Request.Context(), req)
	if err != nil {
		respondPostingError(c, logger, err, "invoice")
		return
	}
	c.JSON(http.StatusCreated, dto.EntryCreatedResponse{EntryID: entryID})
}

func (h *invoiceHandler) recordAdjustment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RecordAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid record adjustment request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	logger = logger.With(
		slog.String("debtor_id", req.DebtorID),
		slog.String("category", req.Category),
		slog.String("period", req.Period),
		slog.String("amount", req.Amount.String()),
	)
	logger.Info("Received request to record adjustment")

	entryID, err := h.postingService.RecordAdjustment(c.Request.Context(), req)
	if err != nil {
		respondPostingError(c, logger, err, "adjustment")
		return
	}
	c.JSON(http.StatusCreated, dto.EntryCreatedResponse{EntryID: entryID})
}

// respondPostingError maps posting service errors to HTTP statuses.
func respondPostingError(c *gin.Context, logger *slog.Logger, err error, kind string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Posting rejected by validation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnknownAccount):
		logger.Warn("Posting references unknown account", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Posting conflicts with current state", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("Failed to record "+kind, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record " + kind})
	}
}
