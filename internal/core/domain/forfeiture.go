package domain

import "github.com/shopspring/decimal"

// ForfeitureState tracks the workflow state machine:
// Active -> Reversing -> Forfeited, or Active -> Failed with nothing visible.
type ForfeitureState string

const (
	ForfeitureActive    ForfeitureState = "ACTIVE"
	ForfeitureReversing ForfeitureState = "REVERSING"
	ForfeitureForfeited ForfeitureState = "FORFEITED"
	ForfeitureFailed    ForfeitureState = "FAILED"
)

// ForfeitureResult reports the outcome of forfeiting a debtor. When the
// reversal entry was written but the room release could not be signaled,
// State is FORFEITED with RoomReleased false: a reconcilable inconsistency,
// never a silent loss.
type ForfeitureResult struct {
	DebtorID         string          `json:"debtorID"`
	State            ForfeitureState `json:"state"`
	Reason           string          `json:"reason"`
	ReversedTotal    decimal.Decimal `json:"reversedTotal"`
	ReversedPayments int             `json:"reversedPayments"`
	EntryID          string          `json:"entryID,omitempty"`
	RoomReleased     bool            `json:"roomReleased"`
}
