package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnknownBasis is returned for a basis value other than cash or accrual.
var ErrUnknownBasis = errors.New("unknown statement basis")

// Basis selects how the income statement recognizes income and expenses.
type Basis string

const (
	// BasisAccrual recognizes income at the date of the originating invoice.
	BasisAccrual Basis = "accrual"
	// BasisCash recognizes income at the date of the payment that settled it.
	BasisCash Basis = "cash"
)

// ParseBasis validates a basis string from an external caller.
func ParseBasis(s string) (Basis, error) {
	switch Basis(s) {
	case BasisAccrual:
		return BasisAccrual, nil
	case BasisCash:
		return BasisCash, nil
	}
	return "", ErrUnknownBasis
}

// CategoryAmount is one income-statement line: recognized amount per category.
type CategoryAmount struct {
	Category Category        `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// AccountTypeTotal is the net total for one account type in a snapshot,
// signed by the type's normal balance (assets positive when debit-heavy,
// liabilities positive when credit-heavy, and so on).
type AccountTypeTotal struct {
	Type  AccountType     `json:"type"`
	Total decimal.Decimal `json:"total"`
}

// StatementSnapshot is a derived, time-bucketed aggregation of the ledger.
// Snapshots are computed per request and never persisted; the ledger store is
// the only source of truth.
type StatementSnapshot struct {
	AsOf             time.Time          `json:"asOf"`
	Period           Period             `json:"period"`
	Basis            Basis              `json:"basis,omitempty"`
	ResidenceID      string             `json:"residenceID,omitempty"`
	Totals           []AccountTypeTotal `json:"totalsByAccountType"`
	IncomeByCategory []CategoryAmount   `json:"incomeByCategory,omitempty"`
	NetIncome        decimal.Decimal    `json:"netIncome"`
	RetainedEarnings decimal.Decimal    `json:"cumulativeRetainedEarnings"`
}

// DebtorStatementLine is one row of a debtor's chronological statement:
// charges raise the running balance, payments and reversals lower it.
type DebtorStatementLine struct {
	EntryID     string          `json:"entryID"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	SourceKind  SourceKind      `json:"sourceKind"`
	Charge      decimal.Decimal `json:"charge"`
	Payment     decimal.Decimal `json:"payment"`
	Balance     decimal.Decimal `json:"balance"`
}

// TotalFor returns the snapshot total for one account type.
func (s StatementSnapshot) TotalFor(t AccountType) decimal.Decimal {
	for _, row := range s.Totals {
		if row.Type == t {
			return row.Total
		}
	}
	return decimal.Zero
}
