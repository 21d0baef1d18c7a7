package domain

import "github.com/shopspring/decimal"

// Obligation is a derived view of what a debtor owes for one category and
// period. It is never stored; the obligation tracker recomputes it from the
// ledger on every read, so there is exactly one definition of "owed".
type Obligation struct {
	DebtorID      string          `json:"debtorID"`
	Category      Category        `json:"category"`
	Period        Period          `json:"period"`
	AmountOwed    decimal.Decimal `json:"amountOwed"`
	AmountSettled decimal.Decimal `json:"amountSettled"`
}

// Outstanding returns the unsettled remainder of the obligation.
func (o Obligation) Outstanding() decimal.Decimal {
	return o.AmountOwed.Sub(o.AmountSettled)
}

// AgingBucket labels how overdue an obligation is.
type AgingBucket string

const (
	AgingCurrent AgingBucket = "CURRENT"
	Aging30      AgingBucket = "30_DAYS"
	Aging60      AgingBucket = "60_DAYS"
	Aging90Plus  AgingBucket = "90_PLUS_DAYS"
)

// AgingBuckets lists the buckets oldest-debt-last, matching report columns.
var AgingBuckets = []AgingBucket{AgingCurrent, Aging30, Aging60, Aging90Plus}

// AgingRow is one debtor's outstanding balance spread across age buckets.
type AgingRow struct {
	DebtorID string                          `json:"debtorID"`
	Buckets  map[AgingBucket]decimal.Decimal `json:"buckets"`
	Total    decimal.Decimal                 `json:"total"`
}

// AgingReport is the receivables aging for all debtors as of a date.
type AgingReport struct {
	AsOf    string                          `json:"asOf"`
	Rows    []AgingRow                      `json:"rows"`
	Totals  map[AgingBucket]decimal.Decimal `json:"totals"`
	Overall decimal.Decimal                 `json:"overall"`
}
