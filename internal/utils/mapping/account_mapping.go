package mapping

import (
	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	"github.com/hostelhq/housing_ledger_app/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountCode:   d.Code,
		Name:          d.Name,
		AccountType:   string(d.Type),
		NormalBalance: string(d.NormalBalance),
		Description:   d.Description,
		IsActive:      d.IsActive,
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		Code:          m.AccountCode,
		Name:          m.Name,
		Type:          domain.AccountType(m.AccountType),
		NormalBalance: domain.NormalBalance(m.NormalBalance),
		Description:   m.Description,
		IsActive:      m.IsActive,
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
