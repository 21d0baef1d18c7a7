package repositories

import (
	"context"

	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
)

// ChartOfAccountsReader defines lookups against the chart of accounts.
type ChartOfAccountsReader interface {
	// FindAccountByCode retrieves one account, or apperrors.ErrNotFound.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByCodes retrieves several accounts keyed by code. Missing
	// codes are absent from the map, not an error.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts returns the full chart ordered by code.
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// ChartOfAccountsWriter defines maintenance operations on the chart.
type ChartOfAccountsWriter interface {
	// SaveAccount inserts a new account. Fails with apperrors.ErrConflict
	// when the code already exists.
	SaveAccount(ctx context.Context, account domain.Account) error
}

// ChartOfAccountsFacade combines chart read and write operations.
type ChartOfAccountsFacade interface {
	ChartOfAccountsReader
	ChartOfAccountsWriter
}
