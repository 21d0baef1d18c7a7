package accounting

import (
	"fmt"

	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// NormalSignedAmount returns a line's contribution to its account, signed in
// the account type's normal-balance direction. Used by the statement engine
// and repositories so aggregation logic cannot diverge.
//
// DEBIT to ASSET/EXPENSE -> Positive (+)
// CREDIT to ASSET/EXPENSE -> Negative (-)
// DEBIT to LIABILITY/EQUITY/INCOME -> Negative (-)
// CREDIT to LIABILITY/EQUITY/INCOME -> Positive (+)
func NormalSignedAmount(line domain.LedgerLine) (decimal.Decimal, error) {
	net := line.Debit.Sub(line.Credit)
	switch line.AccountType {
	case domain.Asset, domain.Expense:
		return net, nil
	case domain.Liability, domain.Equity, domain.Income:
		return net.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown account type %q for account %s", line.AccountType, line.AccountCode)
	}
}

// SumByType accumulates normal-signed totals per account type across entries.
func SumByType(entries []domain.LedgerEntry) (map[domain.AccountType]decimal.Decimal, error) {
	totals := make(map[domain.AccountType]decimal.Decimal, len(domain.AccountTypes))
	for _, t := range domain.AccountTypes {
		totals[t] = decimal.Zero
	}
	for _, entry := range entries {
		for _, line := range entry.Lines {
			signed, err := NormalSignedAmount(line)
			if err != nil {
				return nil, fmt.Errorf("entry %s: %w", entry.EntryID, err)
			}
			totals[line.AccountType] = totals[line.AccountType].Add(signed)
		}
	}
	return totals, nil
}
