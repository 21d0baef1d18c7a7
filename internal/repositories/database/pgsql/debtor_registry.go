package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/hostelhq/housing_ledger_app/internal/core/ports/repositories"
)

type PgxDebtorRegistry struct {
	BaseRepository
}

// newPgxDebtorRegistry creates a new repository for the debtor registry.
func newPgxDebtorRegistry(pool *pgxpool.Pool) portsrepo.DebtorRegistry {
	return &PgxDebtorRegistry{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DebtorRegistry = (*PgxDebtorRegistry)(nil)

// MarkForfeited flags the debtor as forfeited, creating the registry row if
// the debtor was never seen before. Marking twice keeps the first timestamp.
func (r *PgxDebtorRegistry) MarkForfeited(ctx context.Context, debtorID, reason string, at time.Time) error {
	query := `
		INSERT INTO debtors (debtor_id, forfeited_at, forfeit_reason, created_at, last_updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (debtor_id) DO UPDATE
		SET forfeited_at    = COALESCE(debtors.forfeited_at, EXCLUDED.forfeited_at),
		    forfeit_reason  = COALESCE(NULLIF(debtors.forfeit_reason, ''), EXCLUDED.forfeit_reason),
		    last_updated_at = NOW();
	`
	if _, err := r.Pool.Exec(ctx, query, debtorID, at, reason); err != nil {
		return fmt.Errorf("failed to mark debtor %s forfeited: %w", debtorID, err)
	}
	return nil
}

// IsForfeited reports whether the debtor has been forfeited. Unknown debtors
// have not been.
func (r *PgxDebtorRegistry) IsForfeited(ctx context.Context, debtorID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM debtors WHERE debtor_id = $1 AND forfeited_at IS NOT NULL);`

	var forfeited bool
	if err := r.Pool.QueryRow(ctx, query, debtorID).Scan(&forfeited); err != nil {
		return false, fmt.Errorf("failed to check debtor %s: %w", debtorID, err)
	}
	return forfeited, nil
}
