package dto

import (
	"time"

	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ForfeitDebtorRequest triggers the forfeiture workflow for a debtor.
type ForfeitDebtorRequest struct {
	DebtorID    string    `json:"debtorID" binding:"required"`
	Reason      string    `json:"reason" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	ResidenceID string    `json:"residenceID"`
}

// ForfeitureResponse reports the workflow outcome.
type ForfeitureResponse struct {
	DebtorID         string          `json:"debtorID"`
	State            string          `json:"state"`
	Reason           string          `json:"reason"`
	ReversedTotal    decimal.Decimal `json:"reversedTotal"`
	ReversedPayments int             `json:"reversedPayments"`
	EntryID          string          `json:"entryID,omitempty"`
	RoomReleased     bool            `json:"roomReleased"`
}

// ToForfeitureResponse converts a domain.ForfeitureResult to its DTO.
func ToForfeitureResponse(r *domain.ForfeitureResult) ForfeitureResponse {
	return ForfeitureResponse{
		DebtorID:         r.DebtorID,
		State:            string(r.State),
		Reason:           r.Reason,
		ReversedTotal:    r.ReversedTotal,
		ReversedPayments: r.ReversedPayments,
		EntryID:          r.EntryID,
		RoomReleased:     r.RoomReleased,
	}
}
