package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hostelhq/housing_ledger_app/internal/apperrors"
	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	portsrepo "github.com/hostelhq/housing_ledger_app/internal/core/ports/repositories"
	"github.com/hostelhq/housing_ledger_app/internal/models"
	"github.com/hostelhq/housing_ledger_app/internal/utils/mapping"
)

const accountColumns = `account_code, name, account_type, normal_balance, description, is_active`

type PgxChartRepository struct {
	BaseRepository
}

// newPgxChartRepository creates a new repository for the chart of accounts.
func newPgxChartRepository(pool *pgxpool.Pool) portsrepo.ChartOfAccountsFacade {
	return &PgxChartRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ChartOfAccountsFacade = (*PgxChartRepository)(nil)

// FindAccountByCode retrieves one account by its code.
func (r *PgxChartRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_code = $1;`

	var m models.Account
	err := r.Pool.QueryRow(ctx, query, code).Scan(
		&m.AccountCode, &m.Name, &m.AccountType, &m.NormalBalance, &m.Description, &m.IsActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", code, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", code, err)
	}
	account := mapping.ToDomainAccount(m)
	return &account, nil
}

// FindAccountsByCodes retrieves several accounts keyed by code. Missing codes
// are absent from the map.
func (r *PgxChartRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	if len(codes) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_code = ANY($1);`

	rows, err := r.Pool.Query(ctx, query, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to find accounts by codes: %w", err)
	}
	defer rows.Close()

	result := make(map[string]domain.Account, len(codes))
	for rows.Next() {
		var m models.Account
		if err := rows.Scan(&m.AccountCode, &m.Name, &m.AccountType, &m.NormalBalance, &m.Description, &m.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		result[m.AccountCode] = mapping.ToDomainAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read account rows: %w", err)
	}
	return result, nil
}

// ListAccounts returns the full chart ordered by code.
func (r *PgxChartRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY account_code;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var m models.Account
		if err := rows.Scan(&m.AccountCode, &m.Name, &m.AccountType, &m.NormalBalance, &m.Description, &m.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read account rows: %w", err)
	}
	return mapping.ToDomainAccountSlice(accounts), nil
}

// SaveAccount inserts a new account.
func (r *PgxChartRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (account_code, name, account_type, normal_balance, description, is_active)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.Pool.Exec(ctx, query, m.AccountCode, m.Name, m.AccountType, m.NormalBalance, m.Description, m.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("account %s already exists: %w", account.Code, apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to save account %s: %w", account.Code, err)
	}
	return nil
}
