package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SourceKind classifies the business event a ledger entry records.
type SourceKind string

const (
	SourcePayment    SourceKind = "PAYMENT"
	SourceInvoice    SourceKind = "INVOICE"
	SourceExpense    SourceKind = "EXPENSE"
	SourceForfeiture SourceKind = "FORFEITURE"
	SourceAdjustment SourceKind = "ADJUSTMENT"
)

// EntryMetadata carries the semantic annotations of an entry. Debtor, period,
// and category are first-class; Extra is only for non-semantic annotations
// (labels, external ids) and is never read by the core.
type EntryMetadata struct {
	DebtorID    string            `json:"debtorID,omitempty"`
	ResidenceID string            `json:"residenceID,omitempty"`
	Period      Period            `json:"period,omitempty"`
	Category    Category          `json:"category,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// LedgerLine is a single debit or credit against one account. Exactly one of
// Debit/Credit is non-zero. Lines that settle or raise an obligation carry the
// category and period they belong to, so derivations can attribute amounts
// without parsing descriptions.
type LedgerLine struct {
	AccountCode string          `json:"accountCode"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Category    Category        `json:"category,omitempty"`
	Period      Period          `json:"period,omitempty"`
}

// Amount returns the non-zero side of the line.
func (l LedgerLine) Amount() decimal.Decimal {
	if l.Debit.IsPositive() {
		return l.Debit
	}
	return l.Credit
}

// DebitLine builds a debit line against the given account.
func DebitLine(code string, accountType AccountType, amount decimal.Decimal) LedgerLine {
	return LedgerLine{AccountCode: code, AccountType: accountType, Debit: amount, Credit: decimal.Zero}
}

// CreditLine builds a credit line against the given account.
func CreditLine(code string, accountType AccountType, amount decimal.Decimal) LedgerLine {
	return LedgerLine{AccountCode: code, AccountType: accountType, Debit: decimal.Zero, Credit: amount}
}

// WithObligation attributes the line to a (category, period) obligation.
func (l LedgerLine) WithObligation(category Category, period Period) LedgerLine {
	l.Category = category
	l.Period = period
	return l
}

// LedgerEntry is one immutable, balanced accounting event. Entries are never
// updated or deleted; a correction is a new entry referencing the original
// through SourceRef.
type LedgerEntry struct {
	EntryID     string        `json:"entryID"`
	Sequence    int64         `json:"sequence"` // Assigned by the store; breaks same-date ties
	Date        time.Time     `json:"date"`
	Description string        `json:"description"`
	SourceKind  SourceKind    `json:"sourceKind"`
	SourceRef   string        `json:"sourceRef"`
	Lines       []LedgerLine  `json:"lines"`
	Metadata    EntryMetadata `json:"metadata"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// NewLedgerEntry constructs a balanced entry or fails. The balance check runs
// here, at construction time, so an imbalanced entry can never exist in
// memory, let alone in a store.
func NewLedgerEntry(date time.Time, kind SourceKind, sourceRef, description string, lines []LedgerLine, meta EntryMetadata) (LedgerEntry, error) {
	e := LedgerEntry{
		Date:        date,
		Description: description,
		SourceKind:  kind,
		SourceRef:   sourceRef,
		Lines:       lines,
		Metadata:    meta,
	}
	if err := e.Validate(); err != nil {
		return LedgerEntry{}, err
	}
	return e, nil
}

// Validate checks the structural invariants of the entry: at least two lines,
// every line strictly one-sided and positive, and total debits equal to total
// credits.
func (e LedgerEntry) Validate() error {
	if len(e.Lines) < 2 {
		return fmt.Errorf("entry must have at least two lines, got %d", len(e.Lines))
	}
	debits := decimal.Zero
	credits := decimal.Zero
	for i, line := range e.Lines {
		if line.AccountCode == "" {
			return fmt.Errorf("line %d has no account code", i)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("line %d has a negative amount", i)
		}
		debitSet := line.Debit.IsPositive()
		creditSet := line.Credit.IsPositive()
		if debitSet == creditSet {
			return fmt.Errorf("line %d must have exactly one of debit/credit set", i)
		}
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	if !debits.Equal(credits) {
		return fmt.Errorf("debits %s != credits %s", debits.String(), credits.String())
	}
	return nil
}

// TotalDebits returns the entry's economic value: the sum of its debit side,
// which for a balanced entry equals the credit side.
func (e LedgerEntry) TotalDebits() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.Debit)
	}
	return total
}

// AccountCodes returns the distinct account codes referenced by the entry.
func (e LedgerEntry) AccountCodes() []string {
	seen := make(map[string]struct{}, len(e.Lines))
	codes := make([]string, 0, len(e.Lines))
	for _, line := range e.Lines {
		if _, ok := seen[line.AccountCode]; ok {
			continue
		}
		seen[line.AccountCode] = struct{}{}
		codes = append(codes, line.AccountCode)
	}
	return codes
}
