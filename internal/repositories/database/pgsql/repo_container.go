package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/hostelhq/housing_ledger_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the Postgres-backed repositories. The event
// publisher is injected because eventing is not a database concern.
func NewRepositoryProvider(dbPool *pgxpool.Pool, events portsrepo.EventPublisher) portsrepo.RepositoryProvider {
	chartRepo := newPgxChartRepository(dbPool)
	ledgerRepo := newPgxLedgerRepository(dbPool, chartRepo)
	debtorRepo := newPgxDebtorRegistry(dbPool)

	return portsrepo.RepositoryProvider{
		Ledger:  ledgerRepo,
		Chart:   chartRepo,
		Debtors: debtorRepo,
		Events:  events,
	}
}
