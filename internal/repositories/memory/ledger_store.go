package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hostelhq/housing_ledger_app/internal/apperrors"
	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	portsrepo "github.com/hostelhq/housing_ledger_app/internal/core/ports/repositories"
)

// LedgerStore is an in-memory implementation of the ledger repository. It
// backs the service tests and local development; production uses the pgsql
// store. Appends are serialized by a mutex so the balance check and the write
// are atomic together.
type LedgerStore struct {
	mu          sync.Mutex
	chart       portsrepo.ChartOfAccountsReader
	entries     []domain.LedgerEntry
	bySourceRef map[string]int // sourceRef -> index into entries
	nextSeq     int64
}

// NewLedgerStore creates an empty store validating against the given chart.
func NewLedgerStore(chart portsrepo.ChartOfAccountsReader) *LedgerStore {
	return &LedgerStore{
		chart:       chart,
		bySourceRef: make(map[string]int),
		nextSeq:     1,
	}
}

var _ portsrepo.LedgerRepositoryFacade = (*LedgerStore)(nil)

// AppendEntry validates and appends one entry. The entry becomes visible only
// after every check passes; a failed append leaves no trace.
func (s *LedgerStore) AppendEntry(ctx context.Context, entry domain.LedgerEntry) (string, error) {
	if err := entry.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrImbalancedEntry, err)
	}

	accounts, err := s.chart.FindAccountsByCodes(ctx, entry.AccountCodes())
	if err != nil {
		return "", fmt.Errorf("failed to resolve accounts: %w", err)
	}
	for _, code := range entry.AccountCodes() {
		if _, ok := accounts[code]; !ok {
			return "", fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, code)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.SourceRef != "" {
		if _, exists := s.bySourceRef[entry.SourceRef]; exists {
			return "", fmt.Errorf("%w: %s", apperrors.ErrDuplicateSourceRef, entry.SourceRef)
		}
	}

	if entry.EntryID == "" {
		entry.EntryID = uuid.NewString()
	}
	entry.Sequence = s.nextSeq
	s.nextSeq++
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.entries = append(s.entries, entry)
	if entry.SourceRef != "" {
		s.bySourceRef[entry.SourceRef] = len(s.entries) - 1
	}
	return entry.EntryID, nil
}

// FindEntryByID retrieves one entry by id.
func (s *LedgerStore) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].EntryID == entryID {
			e := cloneEntry(s.entries[i])
			return &e, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// FindEntryBySourceRef retrieves the entry recorded for a source reference.
func (s *LedgerStore) FindEntryBySourceRef(ctx context.Context, sourceRef string) (*domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.bySourceRef[sourceRef]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	e := cloneEntry(s.entries[idx])
	return &e, nil
}

// QueryEntries returns matching entries ordered by date ascending, then by
// append sequence. The result is a snapshot: a single point-in-time read that
// later appends do not mutate.
func (s *LedgerStore) QueryEntries(ctx context.Context, filter portsrepo.EntryFilter) ([]domain.LedgerEntry, error) {
	s.mu.Lock()
	matched := make([]domain.LedgerEntry, 0, len(s.entries))
	for i := range s.entries {
		if filter.Matches(s.entries[i]) {
			matched = append(matched, cloneEntry(s.entries[i]))
		}
	}
	s.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.Before(matched[j].Date)
		}
		return matched[i].Sequence < matched[j].Sequence
	})
	return matched, nil
}

// cloneEntry copies an entry so callers cannot mutate stored state.
func cloneEntry(e domain.LedgerEntry) domain.LedgerEntry {
	lines := make([]domain.LedgerLine, len(e.Lines))
	copy(lines, e.Lines)
	e.Lines = lines
	if e.Metadata.Extra != nil {
		extra := make(map[string]string, len(e.Metadata.Extra))
		for k, v := range e.Metadata.Extra {
			extra[k] = v
		}
		e.Metadata.Extra = extra
	}
	return e
}
