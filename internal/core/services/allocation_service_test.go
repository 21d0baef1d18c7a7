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

func TestAllocationService_OldestPeriodFirst(t *testing.T) {
	f := newFixture(t)

	f.invoice(t, "student-1", "RENT", "2025-01", 100, utcDate(2025, time.January, 1))
	f.invoice(t, "student-1", "RENT", "2025-02", 100, utcDate(2025, time.February, 1))

	result := f.pay(t, "student-1", "pay-1", 150, utcDate(2025, time.February, 15))

	require.Len(t, result.Lines, 2)
	assert.Equal(t, "2025-01", result.Lines[0].Obligation.Period.String())
	assert.True(t, result.Lines[0].AmountApplied.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "2025-02", result.Lines[1].Obligation.Period.String())
	assert.True(t, result.Lines[1].AmountApplied.Equal(decimal.NewFromInt(50)))
	assert.True(t, result.UnappliedRemainder.IsZero())
	assert.True(t, result.TotalApplied().Equal(decimal.NewFromInt(150)))
	assert.False(t, result.Replayed)

	// January is fully settled; February keeps the rest outstanding.
	obligations, err := f.obligation.Outstanding(context.Background(), "student-1", utcDate(2025, time.February, 28))
	require.NoError(t, err)
	require.Len(t, obligations, 1)
	assert.Equal(t, "2025-02", obligations[0].Period.String())
	assert.True(t, obligations[0].Outstanding().Equal(decimal.NewFromInt(50)))
}

func TestAllocationService_CategoryPriorityWithinPeriod(t *testing.T) {
	f := newFixture(t)

	f.invoice(t, "student-1", "ADMIN_FEE", "2025-01", 20, utcDate(2025, time.January, 1))
	f.invoice(t, "student-1", "RENT", "2025-01", 80, utcDate(2025, time.January, 1))

	result := f.pay(t, "student-1", "pay-1", 50, utcDate(2025, time.January, 10))

	require.Len(t, result.Lines, 1)
	assert.Equal(t, domain.CategoryRent, result.Lines[0].Obligation.Category)
	assert.True(t, result.Lines[0].AmountApplied.Equal(decimal.NewFromInt(50)))
	assert.True(t, result.UnappliedRemainder.IsZero())
}

func TestAllocationService_OverpaymentFloating(t *testing.T) {
	f := newFixture(t)

	f.invoice(t, "student-1", "RENT", "2025-01", 100, utcDate(2025, time.January, 1))

	result := f.pay(t, "student-1", "pay-1", 150, utcDate(2025, time.January, 10))
	assert.True(t, result.UnappliedRemainder.Equal(decimal.NewFromInt(50)))

	entry, err := f.ledger.FindEntryBySourceRef(context.Background(), "pay-1")
	require.NoError(t, err)
	require.Len(t, entry.Lines, 3)

	var credit *domain.LedgerLine
	for i := range entry.Lines {
		if entry.Lines[i].AccountCode == domain.AccountStudentCredit {
			credit = &entry.Lines[i]
		}
	}
	require.NotNil(t, credit)
	assert.True(t, credit.Credit.Equal(decimal.NewFromInt(50)))
	assert.True(t, credit.Period.IsZero())
}

func TestAllocationService_OverpaymentCreditBalance(t *testing.T) {
	f := newFixture(t)
	svc := services.NewAllocationService(f.ledger, f.obligation, f.locks,
		services.WithOverpaymentPolicy(domain.OverpaymentCreditBalance))

	f.invoice(t, "student-1", "RENT", "2025-01", 100, utcDate(2025, time.January, 1))

	result, err := svc.RecordPayment(context.Background(), dto.RecordPaymentRequest{
		DebtorID:  "student-1",
		Amount:    decimal.NewFromInt(150),
		Date:      utcDate(2025, time.January, 10),
		SourceRef: "pay-1",
	})
	require.NoError(t, err)
	assert.True(t, result.UnappliedRemainder.Equal(decimal.NewFromInt(50)))

	entry, err := f.ledger.FindEntryBySourceRef(context.Background(), "pay-1")
	require.NoError(t, err)
	for _, line := range entry.Lines {
		if line.AccountCode == domain.AccountStudentCredit {
			// The remainder is earmarked for the month after the payment.
			assert.Equal(t, "2025-02", line.Period.String())
		}
	}
}

func TestAllocationService_CreditBalanceCarriesForward(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := services.NewAllocationService(f.ledger, f.obligation, f.locks,
		services.WithOverpaymentPolicy(domain.OverpaymentCreditBalance))

	f.invoice(t, "student-1", "RENT", "2025-01", 100, utcDate(2025, time.January, 1))
	_, err := svc.RecordPayment(ctx, dto.RecordPaymentRequest{
		DebtorID:  "student-1",
		Amount:    decimal.NewFromInt(150),
		Date:      utcDate(2025, time.January, 10),
		SourceRef: "pay-1",
	})
	require.NoError(t, err)

	// The earmarked remainder surfaces as pre-settled once February is billed.
	f.invoice(t, "student-1", "RENT", "2025-02", 100, utcDate(2025, time.February, 1))
	obligations, err := f.obligation.Outstanding(ctx, "student-1", utcDate(2025, time.February, 28))
	require.NoError(t, err)
	require.Len(t, obligations, 1)
	assert.True(t, obligations[0].AmountSettled.Equal(decimal.NewFromInt(50)))
	assert.True(t, obligations[0].Outstanding().Equal(decimal.NewFromInt(50)))

	// The next payment only needs to cover what the credit left open.
	result, err := svc.RecordPayment(ctx, dto.RecordPaymentRequest{
		DebtorID:  "student-1",
		Amount:    decimal.NewFromInt(50),
		Date:      utcDate(2025, time.February, 10),
		SourceRef: "pay-2",
	})
	require.NoError(t, err)
	require.Len(t, result.Lines, 1)
	assert.True(t, result.Lines[0].AmountApplied.Equal(decimal.NewFromInt(50)))
	assert.True(t, result.UnappliedRemainder.IsZero())

	obligations, err = f.obligation.Outstanding(ctx, "student-1", utcDate(2025, time.February, 28))
	require.NoError(t, err)
	assert.Empty(t, obligations)
}

func TestAllocationService_FloatingRemainderDoesNotCarryForward(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.invoice(t, "student-1", "RENT", "2025-01", 100, utcDate(2025, time.January, 1))
	f.pay(t, "student-1", "pay-1", 150, utcDate(2025, time.January, 10))

	// Under the default policy the remainder floats; February stays fully
	// outstanding.
	f.invoice(t, "student-1", "RENT", "2025-02", 100, utcDate(2025, time.February, 1))
	obligations, err := f.obligation.Outstanding(ctx, "student-1", utcDate(2025, time.February, 28))
	require.NoError(t, err)
	require.Len(t, obligations, 1)
	assert.True(t, obligations[0].AmountSettled.IsZero())
	assert.True(t, obligations[0].Outstanding().Equal(decimal.NewFromInt(100)))
}

func TestAllocationService_ZeroPaymentWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.allocation.RecordPayment(ctx, dto.RecordPaymentRequest{
		DebtorID:  "student-1",
		Amount:    decimal.Zero,
		Date:      utcDate(2025, time.January, 10),
		SourceRef: "pay-zero",
	})
	require.NoError(t, err)
	assert.Empty(t, result.EntryID)
	assert.Empty(t, result.Lines)

	_, err = f.ledger.FindEntryBySourceRef(ctx, "pay-zero")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAllocationService_ZeroAmountReplayReturnsPriorResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.invoice(t, "student-1", "RENT", "2025-01", 100, utcDate(2025, time.January, 1))
	first := f.pay(t, "student-1", "pay-1", 150, utcDate(2025, time.January, 10))

	// A replay of a recorded source ref wins over the zero short-circuit.
	replay, err := f.allocation.RecordPayment(ctx, dto.RecordPaymentRequest{
		DebtorID:  "student-1",
		Amount:    decimal.Zero,
		Date:      utcDate(2025, time.January, 10),
		SourceRef: "pay-1",
	})
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	assert.Equal(t, first.EntryID, replay.EntryID)
	assert.True(t, replay.PaymentAmount.Equal(decimal.NewFromInt(150)))
}

func TestAllocationService_RejectsInvalidRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.allocation.RecordPayment(ctx, dto.RecordPaymentRequest{
		DebtorID:  "student-1",
		Amount:    decimal.NewFromInt(-10),
		Date:      time.Now(),
		SourceRef: "pay-1",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.allocation.RecordPayment(ctx, dto.RecordPaymentRequest{
		DebtorID: "student-1",
		Amount:   decimal.NewFromInt(10),
		Date:     time.Now(),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAllocationService_IdempotentPerSourceRef(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.invoice(t, "student-1", "RENT", "2025-01", 100, utcDate(2025, time.January, 1))

	first := f.pay(t, "student-1", "pay-1", 150, utcDate(2025, time.January, 10))
	replay := f.pay(t, "student-1", "pay-1", 150, utcDate(2025, time.January, 10))

	assert.True(t, replay.Replayed)
	assert.Equal(t, first.EntryID, replay.EntryID)
	assert.True(t, replay.PaymentAmount.Equal(decimal.NewFromInt(150)))
	assert.True(t, replay.UnappliedRemainder.Equal(decimal.NewFromInt(50)))
	require.Len(t, replay.Lines, 1)
	assert.Equal(t, domain.CategoryRent, replay.Lines[0].Obligation.Category)
	assert.True(t, replay.Lines[0].AmountApplied.Equal(decimal.NewFromInt(100)))

	// Exactly one payment entry exists.
	payments, err := f.ledger.QueryEntries(ctx, portsrepo.EntryFilter{
		SourceKinds: []domain.SourceKind{domain.SourcePayment},
	})
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestAllocationService_ConcurrentDebtorRejected(t *testing.T) {
	f := newFixture(t)

	unlock, ok := f.locks.TryLock("student-1")
	require.True(t, ok)
	defer unlock()

	_, err := f.allocation.RecordPayment(context.Background(), dto.RecordPaymentRequest{
		DebtorID:  "student-1",
		Amount:    decimal.NewFromInt(10),
		Date:      time.Now(),
		SourceRef: "pay-1",
	})
	assert.ErrorIs(t, err, apperrors.ErrConcurrentModification)
}

func TestAllocationService_PaymentEntryBalanced(t *testing.T) {
	f := newFixture(t)

	f.invoice(t, "student-1", "RENT", "2025-01", 100, utcDate(2025, time.January, 1))
	f.pay(t, "student-1", "pay-1", 60, utcDate(2025, time.January, 10))

	entry, err := f.ledger.FindEntryBySourceRef(context.Background(), "pay-1")
	require.NoError(t, err)
	require.NoError(t, entry.Validate())
	require.Len(t, entry.Lines, 2)

	assert.Equal(t, domain.AccountCash, entry.Lines[0].AccountCode)
	assert.True(t, entry.Lines[0].Debit.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, domain.AccountReceivable, entry.Lines[1].AccountCode)
	assert.True(t, entry.Lines[1].Credit.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, domain.CategoryRent, entry.Lines[1].Category)
	assert.Equal(t, "2025-01", entry.Lines[1].Period.String())
}
