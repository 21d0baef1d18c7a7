package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hostelhq/housing_ledger_app/internal/apperrors"
	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	portssvc "github.com/hostelhq/housing_ledger_app/internal/core/ports/services"
	"github.com/hostelhq/housing_ledger_app/internal/dto"
	"github.com/hostelhq/housing_ledger_app/internal/middleware"
)

// reportHandler handles HTTP requests for financial reports.
type reportHandler struct {
	statementService  portssvc.StatementSvcFacade
	obligationService portssvc.ObligationSvcFacade
}

func newReportHandler(ss portssvc.StatementSvcFacade, os portssvc.ObligationSvcFacade) *reportHandler {
	return &reportHandler{statementService: ss, obligationService: os}
}

// registerReportRoutes registers routes for financial reports.
func registerReportRoutes(rg *gin.RouterGroup, statementService portssvc.StatementSvcFacade, obligationService portssvc.ObligationSvcFacade) {
	h := newReportHandler(statementService, obligationService)

	reportGroup := rg.Group("/reports")
	{
		reportGroup.GET("/balance-sheet", h.getBalanceSheet)
		reportGroup.GET("/income-statement", h.getIncomeStatement)
		reportGroup.GET("/monthly-snapshots", h.getMonthlySnapshots)
		reportGroup.GET("/aging", h.getAging)
	}
}

func (h *reportHandler) getBalanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOfStr := c.DefaultQuery("asOf", time.Now().Format("2006-01-02"))
	asOf, err := time.Parse("2006-01-02", asOfStr)
	if err != nil {
		logger.Warn("Invalid asOf date format", slog.String("asOf", asOfStr))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}
	residenceID := c.Query("residenceID")

	logger = logger.With(slog.String("asOf", asOfStr), slog.String("residence_id", residenceID))
	logger.Info("Received request to generate balance sheet")

	snapshot, err := h.statementService.BalanceSheet(c.Request.Context(), endOfDay(asOf), residenceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrStatementInvariant) {
			logger.Error("Balance sheet identity violated", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ledger is inconsistent, statement withheld"})
		} else {
			logger.Error("Failed to generate balance sheet", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate balance sheet"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceSheetResponse(snapshot))
}

func (h *reportHandler) getIncomeStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	now := time.Now()
	fromStr := c.DefaultQuery("fromDate", time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02"))
	toStr := c.DefaultQuery("toDate", now.Format("2006-01-02"))
	basisStr := c.DefaultQuery("basis", string(domain.BasisAccrual))

	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fromDate format. Use YYYY-MM-DD"})
		return
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid toDate format. Use YYYY-MM-DD"})
		return
	}
	basis, err := domain.ParseBasis(basisStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid basis. Use accrual or cash"})
		return
	}

	logger = logger.With(slog.String("fromDate", fromStr), slog.String("toDate", toStr), slog.String("basis", basisStr))
	logger.Info("Received request to generate income statement")

	snapshot, err := h.statementService.IncomeStatement(c.Request.Context(), from, endOfDay(to), basis)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Income statement request invalid", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to generate income statement", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate income statement"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToIncomeStatementResponse(snapshot, from, to))
}

func (h *reportHandler) getMonthlySnapshots(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from, err := domain.ParsePeriod(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from period. Use YYYY-MM"})
		return
	}
	to, err := domain.ParsePeriod(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to period. Use YYYY-MM"})
		return
	}
	residenceID := c.Query("residenceID")

	logger = logger.With(slog.String("from", from.String()), slog.String("to", to.String()))
	logger.Info("Received request to generate monthly snapshots")

	snapshots, err := h.statementService.MonthlySnapshots(c.Request.Context(), from, to, residenceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrStatementInvariant) {
			logger.Error("Balance sheet identity violated in snapshot series", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ledger is inconsistent, statement withheld"})
		} else {
			logger.Error("Failed to generate monthly snapshots", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate monthly snapshots"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToMonthlySnapshotResponses(snapshots))
}

func (h *reportHandler) getAging(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOfStr := c.DefaultQuery("asOf", time.Now().Format("2006-01-02"))
	asOf, err := time.Parse("2006-01-02", asOfStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}
	residenceID := c.Query("residenceID")

	logger = logger.With(slog.String("asOf", asOfStr), slog.String("residence_id", residenceID))
	logger.Info("Received request to generate receivables aging")

	report, err := h.obligationService.Aging(c.Request.Context(), endOfDay(asOf), residenceID)
	if err != nil {
		logger.Error("Failed to generate receivables aging", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate receivables aging"})
		return
	}
	c.JSON(http.StatusOK, dto.ToAgingResponse(report))
}

// endOfDay extends a parsed date to the last instant of that day so date-only
// query parameters include the whole day's entries.
func endOfDay(d time.Time) time.Time {
	return d.Add(24*time.Hour - time.Nanosecond)
}
