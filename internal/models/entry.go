package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is the persistence shape of one entry header row. Period and
// category are stored as nullable text; an empty string maps to NULL.
type LedgerEntry struct {
	EntryID     string    `db:"entry_id"`
	Sequence    int64     `db:"sequence"`
	EntryDate   time.Time `db:"entry_date"`
	Description string    `db:"description"`
	SourceKind  string    `db:"source_kind"`
	SourceRef   string    `db:"source_ref"`
	DebtorID    string    `db:"debtor_id"`
	ResidenceID string    `db:"residence_id"`
	Period      string    `db:"period"`
	Category    string    `db:"category"`
	Extra       []byte    `db:"extra"`
	CreatedAt   time.Time `db:"created_at"`
}

// LedgerLine is the persistence shape of one debit or credit row. LineNo
// preserves the in-entry order so reconstruction is deterministic.
type LedgerLine struct {
	EntryID     string          `db:"entry_id"`
	LineNo      int             `db:"line_no"`
	AccountCode string          `db:"account_code"`
	AccountType string          `db:"account_type"`
	Debit       decimal.Decimal `db:"debit"`
	Credit      decimal.Decimal `db:"credit"`
	Category    string          `db:"category"`
	Period      string          `db:"period"`
}
