package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hostelhq/housing_ledger_app/internal/apperrors"
	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	portsrepo "github.com/hostelhq/housing_ledger_app/internal/core/ports/repositories"
)

// ChartOfAccounts is an in-memory chart keyed by account code.
type ChartOfAccounts struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

// NewChartOfAccounts creates a chart seeded with the given accounts.
func NewChartOfAccounts(accounts []domain.Account) *ChartOfAccounts {
	c := &ChartOfAccounts{accounts: make(map[string]domain.Account, len(accounts))}
	for _, a := range accounts {
		c.accounts[a.Code] = a
	}
	return c
}

var _ portsrepo.ChartOfAccountsFacade = (*ChartOfAccounts)(nil)

// FindAccountByCode retrieves one account by code.
func (c *ChartOfAccounts) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.accounts[code]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &a, nil
}

// FindAccountsByCodes retrieves several accounts keyed by code; missing codes
// are simply absent.
func (c *ChartOfAccounts) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	found := make(map[string]domain.Account, len(codes))
	for _, code := range codes {
		if a, ok := c.accounts[code]; ok {
			found[code] = a
		}
	}
	return found, nil
}

// ListAccounts returns the chart ordered by code.
func (c *ChartOfAccounts) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	accounts := make([]domain.Account, 0, len(c.accounts))
	for _, a := range c.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

// SaveAccount inserts a new account; duplicate codes conflict.
func (c *ChartOfAccounts) SaveAccount(ctx context.Context, account domain.Account) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.accounts[account.Code]; exists {
		return fmt.Errorf("%w: account code %s", apperrors.ErrConflict, account.Code)
	}
	c.accounts[account.Code] = account
	return nil
}
