package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hostelhq/housing_ledger_app/internal/apperrors"
	portssvc "github.com/hostelhq/housing_ledger_app/internal/core/ports/services"
	"github.com/hostelhq/housing_ledger_app/internal/dto"
	"github.com/hostelhq/housing_ledger_app/internal/middleware"
)

// debtorHandler handles HTTP requests for per-debtor views and forfeiture.
type debtorHandler struct {
	obligationService portssvc.ObligationSvcFacade
	postingService    portssvc.PostingSvcFacade
	forfeitureService portssvc.ForfeitureSvcFacade
}

func newDebtorHandler(os portssvc.ObligationSvcFacade, ps portssvc.PostingSvcFacade, fs portssvc.ForfeitureSvcFacade) *debtorHandler {
	return &debtorHandler{obligationService: os, postingService: ps, forfeitureService: fs}
}

// registerDebtorRoutes registers per-debtor routes.
func registerDebtorRoutes(rg *gin.RouterGroup, obligationService portssvc.ObligationSvcFacade, postingService portssvc.PostingSvcFacade, forfeitureService portssvc.ForfeitureSvcFacade) {
	h := newDebtorHandler(obligationService, postingService, forfeitureService)

	debtorGroup := rg.Group("/debtors/:debtor_id")
	{
		debtorGroup.GET("/obligations", h.getObligations)
		debtorGroup.GET("/statement", h.getStatement)
		debtorGroup.POST("/forfeit", h.forfeit)
	}
}

func (h *debtorHandler) getObligations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	debtorID := c.Param("debtor_id")

	asOfStr := c.DefaultQuery("asOf", time.Now().Format("2006-01-02"))
	asOf, err := time.Parse("2006-01-02", asOfStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	logger = logger.With(slog.String("debtor_id", debtorID), slog.String("asOf", asOfStr))
	logger.Info("Received request for debtor obligations")

	obligations, err := h.obligationService.Outstanding(c.Request.Context(), debtorID, endOfDay(asOf))
	if err != nil {
		logger.Error("Failed to derive obligations", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to derive obligations"})
		return
	}
	c.JSON(http.StatusOK, dto.ToObligationResponses(obligations))
}

func (h *debtorHandler) getStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	debtorID := c.Param("debtor_id")

	var from, to *time.Time
	if fromStr := c.Query("fromDate"); fromStr != "" {
		parsed, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fromDate format. Use YYYY-MM-DD"})
			return
		}
		from = &parsed
	}
	if toStr := c.Query("toDate"); toStr != "" {
		parsed, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid toDate format. Use YYYY-MM-DD"})
			return
		}
		end := endOfDay(parsed)
		to = &end
	}

	logger = logger.With(slog.String("debtor_id", debtorID))
	logger.Info("Received request for debtor statement")

	lines, err := h.postingService.DebtorStatement(c.Request.Context(), debtorID, from, to)
	if err != nil {
		logger.Error("Failed to build debtor statement", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build debtor statement"})
		return
	}
	c.JSON(http.StatusOK, dto.ToDebtorStatementResponses(lines))
}

func (h *debtorHandler) forfeit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	debtorID := c.Param("debtor_id")

	var req dto.ForfeitDebtorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid forfeit request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.DebtorID != debtorID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Debtor id in path and body must match"})
		return
	}

	logger = logger.With(slog.String("debtor_id", debtorID), slog.String("reason", req.Reason))
	logger.Info("Received request to forfeit debtor")

	result, err := h.forfeitureService.Forfeit(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Debtor already forfeited")
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrConcurrentModification) {
			logger.Warn("Debtor busy, forfeiture should be retried")
			c.JSON(http.StatusConflict, gin.H{"error": "Debtor is being modified, retry shortly"})
		} else {
			logger.Error("Forfeiture failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Forfeiture failed"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToForfeitureResponse(result))
}
