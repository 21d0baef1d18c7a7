package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordExpenseRequest records a paid vendor expense against an expense
// account from the chart.
type RecordExpenseRequest struct {
	VendorID    string          `json:"vendorID" binding:"required"`
	AccountCode string          `json:"accountCode" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Date        time.Time       `json:"date" binding:"required"`
	ResidenceID string          `json:"residenceID"`
	Description string          `json:"description"`
}
