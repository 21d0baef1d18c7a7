package domain

import "github.com/shopspring/decimal"

// AllocationLine records how much of a payment was applied to one obligation.
type AllocationLine struct {
	Obligation    Obligation      `json:"obligation"`
	AmountApplied decimal.Decimal `json:"amountApplied"`
}

// AllocationResult is the outcome of applying one payment across a debtor's
// outstanding obligations. The lines are ordered oldest period first, then by
// category priority; sum(AmountApplied) + UnappliedRemainder always equals the
// payment amount.
type AllocationResult struct {
	EntryID            string           `json:"entryID,omitempty"` // Ledger entry recording the payment; empty for a zero payment
	DebtorID           string           `json:"debtorID"`
	SourceRef          string           `json:"sourceRef"`
	PaymentAmount      decimal.Decimal  `json:"paymentAmount"`
	Lines              []AllocationLine `json:"lines"`
	UnappliedRemainder decimal.Decimal  `json:"unappliedRemainder"`
	Replayed           bool             `json:"replayed"` // True when the sourceRef had already been allocated
}

// TotalApplied sums the applied amounts across all lines.
func (r AllocationResult) TotalApplied() decimal.Decimal {
	total := decimal.Zero
	for _, line := range r.Lines {
		total = total.Add(line.AmountApplied)
	}
	return total
}

// OverpaymentPolicy decides what happens to an unapplied payment remainder.
type OverpaymentPolicy string

const (
	// OverpaymentFloating keeps the remainder as a floating credit on the
	// student-credit liability account, not tied to any period.
	OverpaymentFloating OverpaymentPolicy = "floating"
	// OverpaymentCreditBalance records the remainder as a credit carried
	// toward the next period, so it surfaces as a pre-settled obligation.
	OverpaymentCreditBalance OverpaymentPolicy = "credit_balance"
)
