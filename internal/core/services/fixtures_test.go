package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	portssvc "github.com/hostelhq/housing_ledger_app/internal/core/ports/services"
	"github.com/hostelhq/housing_ledger_app/internal/core/services"
	"github.com/hostelhq/housing_ledger_app/internal/dto"
	"github.com/hostelhq/housing_ledger_app/internal/repositories/memory"
	"github.com/hostelhq/housing_ledger_app/internal/utils/locking"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// testFixture wires the services over in-memory stores, the same shape the
// service container builds for production.
type testFixture struct {
	chart      *memory.ChartOfAccounts
	ledger     *memory.LedgerStore
	debtors    *memory.DebtorRegistry
	events     *memory.EventRecorder
	locks      *locking.KeyedMutex
	obligation portssvc.ObligationSvcFacade
	posting    portssvc.PostingSvcFacade
	allocation portssvc.AllocationSvcFacade
	statement  portssvc.StatementSvcFacade
	forfeiture portssvc.ForfeitureSvcFacade
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()
	f := &testFixture{
		chart:   memory.NewChartOfAccounts(domain.DefaultChart()),
		debtors: memory.NewDebtorRegistry(),
		events:  memory.NewEventRecorder(),
		locks:   locking.NewKeyedMutex(),
	}
	f.ledger = memory.NewLedgerStore(f.chart)
	f.obligation = services.NewObligationService(f.ledger)
	f.posting = services.NewPostingService(f.ledger, f.chart, f.obligation)
	f.allocation = services.NewAllocationService(f.ledger, f.obligation, f.locks)
	f.statement = services.NewStatementService(f.ledger, f.chart)
	f.forfeiture = services.NewForfeitureService(f.ledger, f.debtors, f.events, f.locks)
	return f
}

func (f *testFixture) invoice(t *testing.T, debtorID, category, period string, amount int64, date time.Time) string {
	t.Helper()
	entryID, err := f.posting.RecordInvoice(context.Background(), dto.RecordInvoiceRequest{
		DebtorID: debtorID,
		Category: category,
		Period:   period,
		Amount:   decimal.NewFromInt(amount),
		Date:     date,
	})
	require.NoError(t, err)
	return entryID
}

func (f *testFixture) pay(t *testing.T, debtorID, sourceRef string, amount int64, date time.Time) *domain.AllocationResult {
	t.Helper()
	result, err := f.allocation.RecordPayment(context.Background(), dto.RecordPaymentRequest{
		DebtorID:  debtorID,
		Amount:    decimal.NewFromInt(amount),
		Date:      date,
		SourceRef: sourceRef,
	})
	require.NoError(t, err)
	return result
}

func (f *testFixture) expense(t *testing.T, accountCode string, amount int64, date time.Time) string {
	t.Helper()
	entryID, err := f.posting.RecordExpense(context.Background(), dto.RecordExpenseRequest{
		VendorID:    "vendor-1",
		AccountCode: accountCode,
		Amount:      decimal.NewFromInt(amount),
		Date:        date,
	})
	require.NoError(t, err)
	return entryID
}

func utcDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
