package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hostelhq/housing_ledger_app/internal/apperrors"
	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	portsrepo "github.com/hostelhq/housing_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/hostelhq/housing_ledger_app/internal/core/ports/services"
	"github.com/hostelhq/housing_ledger_app/internal/utils/accounting"
)

// statementService aggregates the immutable ledger into financial statements.
// Reads are pure aggregations over a point-in-time query snapshot; they never
// lock and never persist, so a statement may exclude an entry appended after
// the snapshot was taken. That is consistency within the snapshot, not a bug.
type statementService struct {
	BaseService
	ledgerRepo portsrepo.LedgerReader
	chartRepo  portsrepo.ChartOfAccountsReader
}

// NewStatementService creates a statement engine over the ledger and chart.
func NewStatementService(ledgerRepo portsrepo.LedgerReader, chartRepo portsrepo.ChartOfAccountsReader) portssvc.StatementSvcFacade {
	return &statementService{ledgerRepo: ledgerRepo, chartRepo: chartRepo}
}

var _ portssvc.StatementSvcFacade = (*statementService)(nil)

// BalanceSheet computes account-type totals as of a date, with cumulative
// retained earnings folded into equity, and asserts the balance sheet
// identity. An identity violation is a programming error in the engine, so
// it fails the request loudly instead of delivering a clamped document.
func (s *statementService) BalanceSheet(ctx context.Context, asOf time.Time, residenceID string) (*domain.StatementSnapshot, error) {
	entries, err := s.ledgerRepo.QueryEntries(ctx, portsrepo.EntryFilter{To: &asOf, ResidenceID: residenceID})
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger for balance sheet: %w", err)
	}

	totals, err := accounting.SumByType(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate balance sheet: %w", err)
	}

	// Retained earnings are cumulative: every period's net income from the
	// first entry through asOf, not just the current period's.
	retained := totals[domain.Income].Sub(totals[domain.Expense])

	period := domain.PeriodOf(asOf)
	periodNet := netIncomeBetween(entries, period.Start(), asOf)

	snapshot := &domain.StatementSnapshot{
		AsOf:             asOf,
		Period:           period,
		ResidenceID:      residenceID,
		Totals:           orderedTotals(totals),
		NetIncome:        periodNet,
		RetainedEarnings: retained,
	}

	assets := totals[domain.Asset]
	liabilitiesAndEquity := totals[domain.Liability].Add(totals[domain.Equity]).Add(retained)
	if !assets.Equal(liabilitiesAndEquity) {
		err := fmt.Errorf("%w: assets %s vs liabilities+equity %s as of %s",
			apperrors.ErrStatementInvariant, assets.String(), liabilitiesAndEquity.String(), asOf.Format("2006-01-02"))
		s.LogError(ctx, err, "Balance sheet identity violated, refusing to deliver statement",
			slog.String("as_of", asOf.Format(time.RFC3339)),
			slog.String("residence_id", residenceID))
		return nil, err
	}
	return snapshot, nil
}

// IncomeStatement computes recognized income and expenses for a range. On
// accrual basis income is recognized at invoice dates; on cash basis at the
// dates of the payments that settled it, which the attributed receivable
// lines make joinable. Cumulative retained earnings are computed on the same
// basis through the end of the range.
func (s *statementService) IncomeStatement(ctx context.Context, from, to time.Time, basis domain.Basis) (*domain.StatementSnapshot, error) {
	if _, err := domain.ParseBasis(string(basis)); err != nil {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrValidation, basis)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end %s precedes start %s", apperrors.ErrValidation,
			to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	// One query through `to`; the range totals and the cumulative retained
	// earnings come from the same snapshot so they cannot disagree.
	entries, err := s.ledgerRepo.QueryEntries(ctx, portsrepo.EntryFilter{To: &to})
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger for income statement: %w", err)
	}

	incomeCategories, err := s.incomeCategories(ctx)
	if err != nil {
		return nil, err
	}

	rangeIncome, rangeExpense, byCategory := recognize(entries, from, to, basis, incomeCategories)
	cumulativeIncome, cumulativeExpense, _ := recognize(entries, time.Time{}, to, basis, incomeCategories)

	snapshot := &domain.StatementSnapshot{
		AsOf:   to,
		Period: domain.PeriodOf(to),
		Basis:  basis,
		Totals: []domain.AccountTypeTotal{
			{Type: domain.Income, Total: rangeIncome},
			{Type: domain.Expense, Total: rangeExpense},
		},
		IncomeByCategory: byCategory,
		NetIncome:        rangeIncome.Sub(rangeExpense),
		RetainedEarnings: cumulativeIncome.Sub(cumulativeExpense),
	}
	return snapshot, nil
}

// MonthlySnapshots computes one balance sheet per month over an inclusive
// period range, oldest first.
func (s *statementService) MonthlySnapshots(ctx context.Context, from, to domain.Period, residenceID string) ([]domain.StatementSnapshot, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: period range end %s precedes start %s", apperrors.ErrValidation, to, from)
	}
	var snapshots []domain.StatementSnapshot
	for p := from; !to.Before(p); p = p.Next() {
		snapshot, err := s.BalanceSheet(ctx, p.End(), residenceID)
		if err != nil {
			return nil, fmt.Errorf("failed snapshot for %s: %w", p, err)
		}
		snapshot.Period = p
		snapshots = append(snapshots, *snapshot)
	}
	return snapshots, nil
}

// netIncomeBetween computes accrual net income for entries dated in
// [from, to], given entries already filtered to dates <= to.
func netIncomeBetween(entries []domain.LedgerEntry, from, to time.Time) decimal.Decimal {
	net := decimal.Zero
	for _, entry := range entries {
		if entry.Date.Before(from) || entry.Date.After(to) {
			continue
		}
		for _, line := range entry.Lines {
			switch line.AccountType {
			case domain.Income:
				net = net.Add(line.Credit).Sub(line.Debit)
			case domain.Expense:
				net = net.Sub(line.Debit).Add(line.Credit)
			}
		}
	}
	return net
}

// incomeCategories resolves which billing categories settle into income
// accounts. Deposits settle into a liability and are excluded from income on
// both bases.
func (s *statementService) incomeCategories(ctx context.Context) (map[domain.Category]bool, error) {
	result := make(map[domain.Category]bool, len(domain.DefaultCategoryPriority))
	for _, category := range domain.DefaultCategoryPriority {
		code, err := category.SettlementAccount()
		if err != nil {
			return nil, err
		}
		account, err := s.chartRepo.FindAccountByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve settlement account for %s: %w", category, err)
		}
		result[category] = account.Type == domain.Income
	}
	return result, nil
}

// recognize sums income and expenses for entries dated in [from, to] under
// the given basis. A zero `from` means from the beginning of the ledger.
func recognize(entries []domain.LedgerEntry, from, to time.Time, basis domain.Basis, incomeCategories map[domain.Category]bool) (income, expense decimal.Decimal, byCategory []domain.CategoryAmount) {
	income = decimal.Zero
	expense = decimal.Zero
	perCategory := make(map[domain.Category]decimal.Decimal)

	for _, entry := range entries {
		if !from.IsZero() && entry.Date.Before(from) {
			continue
		}
		if entry.Date.After(to) {
			continue
		}
		for _, line := range entry.Lines {
			// Expenses are recognized at entry date on both bases:
			// vendor expenses are recorded when paid, and forfeiture
			// losses when the reversal is written.
			if line.AccountType == domain.Expense {
				expense = expense.Add(line.Debit).Sub(line.Credit)
				continue
			}
			switch basis {
			case domain.BasisAccrual:
				if line.AccountType == domain.Income {
					amount := line.Credit.Sub(line.Debit)
					income = income.Add(amount)
					if line.Category != "" {
						perCategory[line.Category] = perCategory[line.Category].Add(amount)
					}
				}
			case domain.BasisCash:
				// Income is recognized through the payment's
				// attributed receivable credit lines.
				if entry.SourceKind == domain.SourcePayment &&
					line.AccountCode == domain.AccountReceivable &&
					line.Credit.IsPositive() &&
					incomeCategories[line.Category] {
					income = income.Add(line.Credit)
					perCategory[line.Category] = perCategory[line.Category].Add(line.Credit)
				}
			}
		}
	}

	byCategory = make([]domain.CategoryAmount, 0, len(perCategory))
	for category, amount := range perCategory {
		byCategory = append(byCategory, domain.CategoryAmount{Category: category, Amount: amount})
	}
	sort.Slice(byCategory, func(i, j int) bool { return byCategory[i].Category < byCategory[j].Category })
	return income, expense, byCategory
}

// orderedTotals converts a totals map into the fixed reporting order.
func orderedTotals(totals map[domain.AccountType]decimal.Decimal) []domain.AccountTypeTotal {
	out := make([]domain.AccountTypeTotal, 0, len(domain.AccountTypes))
	for _, t := range domain.AccountTypes {
		out = append(out, domain.AccountTypeTotal{Type: t, Total: totals[t]})
	}
	return out
}
