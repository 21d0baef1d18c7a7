package repositories

import (
	"context"
	"time"

	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
)

// EntryFilter narrows a ledger query. Zero-value fields are ignored.
type EntryFilter struct {
	From        *time.Time
	To          *time.Time
	SourceKinds []domain.SourceKind
	DebtorID    string
	AccountCode string
	ResidenceID string
}

// Matches reports whether an entry satisfies the filter. Shared by store
// implementations so the filter semantics cannot drift between them.
func (f EntryFilter) Matches(e domain.LedgerEntry) bool {
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	if len(f.SourceKinds) > 0 {
		found := false
		for _, kind := range f.SourceKinds {
			if e.SourceKind == kind {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.DebtorID != "" && e.Metadata.DebtorID != f.DebtorID {
		return false
	}
	if f.ResidenceID != "" && e.Metadata.ResidenceID != f.ResidenceID {
		return false
	}
	if f.AccountCode != "" {
		found := false
		for _, line := range e.Lines {
			if line.AccountCode == f.AccountCode {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// LedgerReader defines read operations over the append-only ledger.
type LedgerReader interface {
	// FindEntryByID retrieves a single entry by its identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error)

	// FindEntryBySourceRef retrieves the entry recorded for a source
	// reference, or apperrors.ErrNotFound. Allocation idempotency depends
	// on this lookup.
	FindEntryBySourceRef(ctx context.Context, sourceRef string) (*domain.LedgerEntry, error)

	// QueryEntries returns entries matching the filter, ordered by date
	// ascending and then by append sequence for same-date ties. The order
	// is deterministic so repeated statement runs agree.
	QueryEntries(ctx context.Context, filter EntryFilter) ([]domain.LedgerEntry, error)
}

// LedgerWriter defines the single write operation the ledger supports.
type LedgerWriter interface {
	// AppendEntry validates and appends one entry atomically, returning its
	// assigned id. Fails with apperrors.ErrImbalancedEntry when debits do
	// not equal credits, apperrors.ErrUnknownAccount when a line references
	// an account missing from the chart, and apperrors.ErrDuplicateSourceRef
	// when the source reference was already recorded. There is no update or
	// delete; reversal is a new entry referencing the original.
	AppendEntry(ctx context.Context, entry domain.LedgerEntry) (string, error)
}

// LedgerRepositoryFacade combines ledger read and write operations.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
