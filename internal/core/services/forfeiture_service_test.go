package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hostelhq/housing_ledger_app/internal/apperrors"
	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	portsrepo "github.com/hostelhq/housing_ledger_app/internal/core/ports/repositories"
	"github.com/hostelhq/housing_ledger_app/internal/core/services"
	"github.com/hostelhq/housing_ledger_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) AppendEntry(ctx context.Context, entry domain.LedgerEntry) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindEntryBySourceRef(ctx context.Context, sourceRef string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, sourceRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) QueryEntries(ctx context.Context, filter portsrepo.EntryFilter) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

// failingPublisher rejects every publish.
type failingPublisher struct{}

func (failingPublisher) Publish(ctx context.Context, topic string, event any) error {
	return errors.New("broker unavailable")
}

func settledDebtor(t *testing.T, f *testFixture, debtorID string) {
	t.Helper()
	f.invoice(t, debtorID, "RENT", "2025-01", 100, utcDate(2025, time.January, 1))
	f.invoice(t, debtorID, "RENT", "2025-02", 100, utcDate(2025, time.February, 1))
	f.pay(t, debtorID, "pay-"+debtorID, 150, utcDate(2025, time.February, 10))
}

func TestForfeitureService_Forfeit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	settledDebtor(t, f, "student-1")

	result, err := f.forfeiture.Forfeit(ctx, dto.ForfeitDebtorRequest{
		DebtorID: "student-1",
		Reason:   "contract breach",
		Date:     utcDate(2025, time.March, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ForfeitureForfeited, result.State)
	assert.True(t, result.ReversedTotal.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 1, result.ReversedPayments)
	assert.True(t, result.RoomReleased)
	require.NotEmpty(t, result.EntryID)

	// One balanced reversal entry: loss debited, receivable credited, and
	// no attribution so settled obligations stay settled.
	entry, err := f.ledger.FindEntryByID(ctx, result.EntryID)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceForfeiture, entry.SourceKind)
	require.Len(t, entry.Lines, 2)
	assert.Equal(t, domain.AccountForfeitureLoss, entry.Lines[0].AccountCode)
	assert.True(t, entry.Lines[0].Debit.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, domain.AccountReceivable, entry.Lines[1].AccountCode)
	assert.True(t, entry.Lines[1].Credit.Equal(decimal.NewFromInt(150)))
	assert.Empty(t, entry.Lines[0].Category)
	assert.Empty(t, entry.Lines[1].Category)

	// Room release went out on the configured topic.
	published := f.events.Events()
	require.Len(t, published, 1)
	assert.Equal(t, "room.release", published[0].Topic)
	event, ok := published[0].Event.(portsrepo.RoomReleaseEvent)
	require.True(t, ok)
	assert.Equal(t, "student-1", event.DebtorID)

	forfeited, err := f.debtors.IsForfeited(ctx, "student-1")
	require.NoError(t, err)
	assert.True(t, forfeited)
}

func TestForfeitureService_Forfeit_DoesNotResurrectObligations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	settledDebtor(t, f, "student-1")

	_, err := f.forfeiture.Forfeit(ctx, dto.ForfeitDebtorRequest{
		DebtorID: "student-1",
		Reason:   "contract breach",
		Date:     utcDate(2025, time.March, 1),
	})
	require.NoError(t, err)

	// January was fully settled before the forfeiture and must stay gone;
	// February's unsettled remainder is unchanged.
	obligations, err := f.obligation.Outstanding(ctx, "student-1", utcDate(2025, time.March, 31))
	require.NoError(t, err)
	require.Len(t, obligations, 1)
	assert.Equal(t, "2025-02", obligations[0].Period.String())
	assert.True(t, obligations[0].Outstanding().Equal(decimal.NewFromInt(50)))
}

func TestForfeitureService_Forfeit_NoSettledPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.invoice(t, "student-1", "RENT", "2025-01", 100, utcDate(2025, time.January, 1))

	result, err := f.forfeiture.Forfeit(ctx, dto.ForfeitDebtorRequest{
		DebtorID: "student-1",
		Reason:   "no-show",
		Date:     utcDate(2025, time.February, 1),
	})
	require.NoError(t, err)

	// Nothing to reverse, so no entry, but the room is still released and
	// the debtor still marked.
	assert.Equal(t, domain.ForfeitureForfeited, result.State)
	assert.True(t, result.ReversedTotal.IsZero())
	assert.Zero(t, result.ReversedPayments)
	assert.Empty(t, result.EntryID)
	assert.True(t, result.RoomReleased)
	assert.Len(t, f.events.Events(), 1)
}

func TestForfeitureService_Forfeit_AlreadyForfeited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	settledDebtor(t, f, "student-1")

	_, err := f.forfeiture.Forfeit(ctx, dto.ForfeitDebtorRequest{
		DebtorID: "student-1", Reason: "breach", Date: utcDate(2025, time.March, 1),
	})
	require.NoError(t, err)

	_, err = f.forfeiture.Forfeit(ctx, dto.ForfeitDebtorRequest{
		DebtorID: "student-1", Reason: "breach again", Date: utcDate(2025, time.March, 2),
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// The reversal was not doubled.
	entries, err := f.ledger.QueryEntries(ctx, portsrepo.EntryFilter{
		SourceKinds: []domain.SourceKind{domain.SourceForfeiture},
	})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestForfeitureService_Forfeit_LedgerWriteFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	settledDebtor(t, f, "student-1")

	payments, err := f.ledger.QueryEntries(ctx, portsrepo.EntryFilter{
		SourceKinds: []domain.SourceKind{domain.SourcePayment},
	})
	require.NoError(t, err)

	mockLedger := new(MockLedgerRepository)
	mockLedger.On("QueryEntries", mock.Anything, mock.Anything).Return(payments, nil)
	mockLedger.On("AppendEntry", mock.Anything, mock.Anything).Return("", errors.New("database down"))

	svc := services.NewForfeitureService(mockLedger, f.debtors, f.events, f.locks)
	result, err := svc.Forfeit(ctx, dto.ForfeitDebtorRequest{
		DebtorID: "student-1", Reason: "breach", Date: utcDate(2025, time.March, 1),
	})
	require.Error(t, err)

	// The write failed, so nothing else happened: no event, no marking.
	assert.Equal(t, domain.ForfeitureFailed, result.State)
	assert.Empty(t, f.events.Events())
	forfeited, err := f.debtors.IsForfeited(ctx, "student-1")
	require.NoError(t, err)
	assert.False(t, forfeited)
	mockLedger.AssertExpectations(t)
}

func TestForfeitureService_Forfeit_PublishFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	settledDebtor(t, f, "student-1")

	svc := services.NewForfeitureService(f.ledger, f.debtors, failingPublisher{}, f.locks)
	result, err := svc.Forfeit(ctx, dto.ForfeitDebtorRequest{
		DebtorID: "student-1", Reason: "breach", Date: utcDate(2025, time.March, 1),
	})
	require.NoError(t, err)

	// The reversal committed, so the workflow completes and reports the
	// missing signal instead of failing.
	assert.Equal(t, domain.ForfeitureForfeited, result.State)
	assert.False(t, result.RoomReleased)
	assert.NotEmpty(t, result.EntryID)

	forfeited, err := f.debtors.IsForfeited(ctx, "student-1")
	require.NoError(t, err)
	assert.True(t, forfeited)
}

func TestForfeitureService_Forfeit_ResumesAfterPartialRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	settledDebtor(t, f, "student-1")

	// Simulate a prior run that wrote the reversal and crashed before the
	// side effects: the entry exists, the debtor is not marked.
	priorEntry, err := domain.NewLedgerEntry(utcDate(2025, time.March, 1), domain.SourceForfeiture,
		"forfeiture:student-1", "Forfeiture of debtor student-1: breach", []domain.LedgerLine{
			domain.DebitLine(domain.AccountForfeitureLoss, domain.Expense, decimal.NewFromInt(150)),
			domain.CreditLine(domain.AccountReceivable, domain.Asset, decimal.NewFromInt(150)),
		}, domain.EntryMetadata{DebtorID: "student-1"})
	require.NoError(t, err)
	priorID, err := f.ledger.AppendEntry(ctx, priorEntry)
	require.NoError(t, err)

	result, err := f.forfeiture.Forfeit(ctx, dto.ForfeitDebtorRequest{
		DebtorID: "student-1", Reason: "breach", Date: utcDate(2025, time.March, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ForfeitureForfeited, result.State)
	assert.Equal(t, priorID, result.EntryID)
	assert.True(t, result.ReversedTotal.Equal(decimal.NewFromInt(150)))
	assert.True(t, result.RoomReleased)

	// Still exactly one reversal entry.
	entries, err := f.ledger.QueryEntries(ctx, portsrepo.EntryFilter{
		SourceKinds: []domain.SourceKind{domain.SourceForfeiture},
	})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestForfeitureService_Forfeit_ConcurrentDebtorRejected(t *testing.T) {
	f := newFixture(t)

	unlock, ok := f.locks.TryLock("student-1")
	require.True(t, ok)
	defer unlock()

	_, err := f.forfeiture.Forfeit(context.Background(), dto.ForfeitDebtorRequest{
		DebtorID: "student-1", Reason: "breach", Date: time.Now(),
	})
	assert.ErrorIs(t, err, apperrors.ErrConcurrentModification)
}
