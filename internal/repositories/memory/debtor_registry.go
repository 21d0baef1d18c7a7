package memory

import (
	"context"
	"sync"
	"time"

	portsrepo "github.com/hostelhq/housing_ledger_app/internal/core/ports/repositories"
)

type forfeitureRecord struct {
	Reason string
	At     time.Time
}

// DebtorRegistry is an in-memory stand-in for the external debtor/room
// collaborator, tracking which debtors have been forfeited.
type DebtorRegistry struct {
	mu        sync.RWMutex
	forfeited map[string]forfeitureRecord
}

// NewDebtorRegistry creates an empty registry.
func NewDebtorRegistry() *DebtorRegistry {
	return &DebtorRegistry{forfeited: make(map[string]forfeitureRecord)}
}

var _ portsrepo.DebtorRegistry = (*DebtorRegistry)(nil)

// MarkForfeited flags the debtor as forfeited.
func (r *DebtorRegistry) MarkForfeited(ctx context.Context, debtorID, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forfeited[debtorID] = forfeitureRecord{Reason: reason, At: at}
	return nil
}

// IsForfeited reports whether the debtor has been forfeited.
func (r *DebtorRegistry) IsForfeited(ctx context.Context, debtorID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.forfeited[debtorID]
	return ok, nil
}
