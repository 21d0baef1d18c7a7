package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/hostelhq/housing_ledger_app/internal/apperrors"
	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	portsrepo "github.com/hostelhq/housing_ledger_app/internal/core/ports/repositories"
	"github.com/hostelhq/housing_ledger_app/internal/core/services"
	"github.com/hostelhq/housing_ledger_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementService_BalanceSheet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.invoice(t, "student-1", "RENT", "2025-01", 100, utcDate(2025, time.January, 1))
	f.pay(t, "student-1", "pay-1", 60, utcDate(2025, time.January, 10))
	f.expense(t, domain.AccountUtilitiesExp, 30, utcDate(2025, time.January, 15))

	snapshot, err := f.statement.BalanceSheet(ctx, utcDate(2025, time.January, 31), "")
	require.NoError(t, err)

	// Cash 60-30, receivable 100-60.
	assert.True(t, snapshot.TotalFor(domain.Asset).Equal(decimal.NewFromInt(70)))
	assert.True(t, snapshot.TotalFor(domain.Liability).IsZero())
	assert.True(t, snapshot.TotalFor(domain.Income).Equal(decimal.NewFromInt(100)))
	assert.True(t, snapshot.TotalFor(domain.Expense).Equal(decimal.NewFromInt(30)))
	assert.True(t, snapshot.RetainedEarnings.Equal(decimal.NewFromInt(70)))
	assert.True(t, snapshot.NetIncome.Equal(decimal.NewFromInt(70)))
}

func TestStatementService_BalanceSheet_RetainedEarningsAreCumulative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.invoice(t, "student-1", "RENT", "2025-01", 100, utcDate(2025, time.January, 1))
	f.invoice(t, "student-1", "RENT", "2025-02", 100, utcDate(2025, time.February, 1))

	snapshot, err := f.statement.BalanceSheet(ctx, utcDate(2025, time.February, 28), "")
	require.NoError(t, err)

	// February's net income covers February only; retained earnings carry
	// January as well.
	assert.True(t, snapshot.NetIncome.Equal(decimal.NewFromInt(100)))
	assert.True(t, snapshot.RetainedEarnings.Equal(decimal.NewFromInt(200)))
}

// stubLedger feeds the statement engine entries directly, bypassing the
// store's balance checks, to exercise the identity guard.
type stubLedger struct {
	entries []domain.LedgerEntry
}

func (s *stubLedger) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	return nil, apperrors.ErrNotFound
}

func (s *stubLedger) FindEntryBySourceRef(ctx context.Context, sourceRef string) (*domain.LedgerEntry, error) {
	return nil, apperrors.ErrNotFound
}

func (s *stubLedger) QueryEntries(ctx context.Context, filter portsrepo.EntryFilter) ([]domain.LedgerEntry, error) {
	return s.entries, nil
}

func TestStatementService_BalanceSheet_RefusesBrokenIdentity(t *testing.T) {
	broken := &stubLedger{entries: []domain.LedgerEntry{{
		EntryID:    "bad-entry",
		Date:       utcDate(2025, time.January, 1),
		SourceKind: domain.SourceInvoice,
		Lines: []domain.LedgerLine{
			domain.DebitLine(domain.AccountReceivable, domain.Asset, decimal.NewFromInt(100)),
			domain.CreditLine("4010", domain.Income, decimal.NewFromInt(40)),
		},
	}}}
	chart := newFixture(t).chart
	svc := services.NewStatementService(broken, chart)

	_, err := svc.BalanceSheet(context.Background(), utcDate(2025, time.January, 31), "")
	assert.ErrorIs(t, err, apperrors.ErrStatementInvariant)
}

func TestStatementService_IncomeStatement_AccrualVsCash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Billed in January, paid in February.
	f.invoice(t, "student-1", "RENT", "2025-01", 100, utcDate(2025, time.January, 1))
	f.pay(t, "student-1", "pay-1", 100, utcDate(2025, time.February, 10))

	jan1 := utcDate(2025, time.January, 1)
	jan31 := utcDate(2025, time.January, 31)
	feb1 := utcDate(2025, time.February, 1)
	feb28 := utcDate(2025, time.February, 28)

	accrualJan, err := f.statement.IncomeStatement(ctx, jan1, jan31, domain.BasisAccrual)
	require.NoError(t, err)
	assert.True(t, accrualJan.NetIncome.Equal(decimal.NewFromInt(100)))

	cashJan, err := f.statement.IncomeStatement(ctx, jan1, jan31, domain.BasisCash)
	require.NoError(t, err)
	assert.True(t, cashJan.NetIncome.IsZero())

	cashFeb, err := f.statement.IncomeStatement(ctx, feb1, feb28, domain.BasisCash)
	require.NoError(t, err)
	assert.True(t, cashFeb.NetIncome.Equal(decimal.NewFromInt(100)))
	require.Len(t, cashFeb.IncomeByCategory, 1)
	assert.Equal(t, domain.CategoryRent, cashFeb.IncomeByCategory[0].Category)

	accrualFeb, err := f.statement.IncomeStatement(ctx, feb1, feb28, domain.BasisAccrual)
	require.NoError(t, err)
	assert.True(t, accrualFeb.NetIncome.IsZero())

	// Cumulative retained earnings through February agree across bases once
	// everything billed is also paid.
	assert.True(t, cashFeb.RetainedEarnings.Equal(decimal.NewFromInt(100)))
	assert.True(t, accrualFeb.RetainedEarnings.Equal(decimal.NewFromInt(100)))
}

func TestStatementService_IncomeStatement_DepositsAreNotIncome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.invoice(t, "student-1", "DEPOSIT", "2025-01", 50, utcDate(2025, time.January, 1))
	f.pay(t, "student-1", "pay-1", 50, utcDate(2025, time.January, 10))

	jan1 := utcDate(2025, time.January, 1)
	jan31 := utcDate(2025, time.January, 31)

	accrual, err := f.statement.IncomeStatement(ctx, jan1, jan31, domain.BasisAccrual)
	require.NoError(t, err)
	assert.True(t, accrual.NetIncome.IsZero())

	cash, err := f.statement.IncomeStatement(ctx, jan1, jan31, domain.BasisCash)
	require.NoError(t, err)
	assert.True(t, cash.NetIncome.IsZero())
	assert.Empty(t, cash.IncomeByCategory)
}

func TestStatementService_IncomeStatement_RejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.statement.IncomeStatement(ctx, utcDate(2025, time.January, 1), utcDate(2025, time.January, 31), "modified-cash")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.statement.IncomeStatement(ctx, utcDate(2025, time.February, 1), utcDate(2025, time.January, 1), domain.BasisAccrual)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestStatementService_MonthlySnapshots_YearOfActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.invoice(t, "student-1", "RENT", "2025-01", 100, utcDate(2025, time.January, 1))
	f.pay(t, "student-1", "pay-jan", 100, utcDate(2025, time.January, 20))

	f.invoice(t, "student-1", "RENT", "2025-02", 100, utcDate(2025, time.February, 1))
	f.invoice(t, "student-1", "DEPOSIT", "2025-02", 50, utcDate(2025, time.February, 1))
	f.pay(t, "student-1", "pay-feb", 120, utcDate(2025, time.February, 20))

	f.expense(t, domain.AccountUtilitiesExp, 30, utcDate(2025, time.March, 10))

	f.invoice(t, "student-2", "RENT", "2025-04", 100, utcDate(2025, time.April, 1))
	f.pay(t, "student-2", "pay-may", 60, utcDate(2025, time.May, 5))

	_, err := f.forfeiture.Forfeit(ctx, dto.ForfeitDebtorRequest{
		DebtorID: "student-2",
		Reason:   "abandoned unit",
		Date:     utcDate(2025, time.June, 1),
	})
	require.NoError(t, err)

	from := domain.Period{Year: 2025, Month: time.January}
	to := domain.Period{Year: 2025, Month: time.December}
	snapshots, err := f.statement.MonthlySnapshots(ctx, from, to, "")
	require.NoError(t, err)
	require.Len(t, snapshots, 12)

	// Every snapshot passed the balance sheet identity or the call would
	// have failed. Retained earnings at month N equal the net income of
	// months 1..N.
	running := decimal.Zero
	for i, snapshot := range snapshots {
		assert.Equal(t, time.Month(i+1), snapshot.Period.Month)
		running = running.Add(snapshot.NetIncome)
		assert.True(t, snapshot.RetainedEarnings.Equal(running),
			"month %s: retained %s, cumulative net %s", snapshot.Period, snapshot.RetainedEarnings, running)
	}

	// Rent income 300, utilities 30, forfeiture loss 60.
	final := snapshots[11]
	assert.True(t, final.RetainedEarnings.Equal(decimal.NewFromInt(210)))
	assert.True(t, final.TotalFor(domain.Liability).Equal(decimal.NewFromInt(50)))
	assert.True(t, final.TotalFor(domain.Asset).Equal(decimal.NewFromInt(260)))
}

func TestStatementService_MonthlySnapshots_RejectsReversedRange(t *testing.T) {
	f := newFixture(t)
	_, err := f.statement.MonthlySnapshots(context.Background(),
		domain.Period{Year: 2025, Month: time.June},
		domain.Period{Year: 2025, Month: time.January}, "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
