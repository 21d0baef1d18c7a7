package dto

import (
	"time"

	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest is the payload for applying an incoming payment.
type RecordPaymentRequest struct {
	DebtorID    string          `json:"debtorID" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Date        time.Time       `json:"date" binding:"required"`
	SourceRef   string          `json:"sourceRef" binding:"required"`
	ResidenceID string          `json:"residenceID"`
	Description string          `json:"description"`
}

// AllocationLineResponse reports one obligation the payment settled into.
type AllocationLineResponse struct {
	Category      string          `json:"category"`
	Period        string          `json:"period"`
	AmountApplied decimal.Decimal `json:"amountApplied"`
	Outstanding   decimal.Decimal `json:"outstandingAfter"`
}

// AllocationResponse is the result of one payment allocation run.
type AllocationResponse struct {
	EntryID            string                   `json:"entryID,omitempty"`
	DebtorID           string                   `json:"debtorID"`
	SourceRef          string                   `json:"sourceRef"`
	PaymentAmount      decimal.Decimal          `json:"paymentAmount"`
	Lines              []AllocationLineResponse `json:"lines"`
	UnappliedRemainder decimal.Decimal          `json:"unappliedRemainder"`
	Replayed           bool                     `json:"replayed"`
}

// ToAllocationResponse converts a domain.AllocationResult to its DTO.
func ToAllocationResponse(r *domain.AllocationResult) AllocationResponse {
	resp := AllocationResponse{
		EntryID:            r.EntryID,
		DebtorID:           r.DebtorID,
		SourceRef:          r.SourceRef,
		PaymentAmount:      r.PaymentAmount,
		Lines:              make([]AllocationLineResponse, len(r.Lines)),
		UnappliedRemainder: r.UnappliedRemainder,
		Replayed:           r.Replayed,
	}
	for i, line := range r.Lines {
		resp.Lines[i] = AllocationLineResponse{
			Category:      string(line.Obligation.Category),
			Period:        line.Obligation.Period.String(),
			AmountApplied: line.AmountApplied,
			Outstanding:   line.Obligation.Outstanding().Sub(line.AmountApplied),
		}
	}
	return resp
}
