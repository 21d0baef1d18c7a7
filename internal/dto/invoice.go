package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordInvoiceRequest bills a debtor for one category and period.
type RecordInvoiceRequest struct {
	DebtorID    string          `json:"debtorID" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Period      string          `json:"period" binding:"required"` // "2006-01"
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Date        time.Time       `json:"date" binding:"required"`
	ResidenceID string          `json:"residenceID"`
	Description string          `json:"description"`
}

// RecordAdjustmentRequest corrects an obligation up or down. A positive
// amount raises what is owed, a negative amount reduces it.
type RecordAdjustmentRequest struct {
	DebtorID    string          `json:"debtorID" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Period      string          `json:"period" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Date        time.Time       `json:"date" binding:"required"`
	ResidenceID string          `json:"residenceID"`
	Reason      string          `json:"reason" binding:"required"`
}

// EntryCreatedResponse returns the id of a newly appended ledger entry.
type EntryCreatedResponse struct {
	EntryID string `json:"entryID"`
}
