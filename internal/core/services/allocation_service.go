package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/hostelhq/housing_ledger_app/internal/apperrors"
	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	portsrepo "github.com/hostelhq/housing_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/hostelhq/housing_ledger_app/internal/core/ports/services"
	"github.com/hostelhq/housing_ledger_app/internal/dto"
	"github.com/hostelhq/housing_ledger_app/internal/utils/locking"
)

// allocationService applies incoming payments across a debtor's outstanding
// obligations: greedy, oldest period first, then by category priority.
type allocationService struct {
	BaseService
	ledgerRepo    portsrepo.LedgerRepositoryFacade
	obligationSvc portssvc.ObligationSvcFacade
	locks         *locking.KeyedMutex
	overpayment   domain.OverpaymentPolicy
}

// AllocationServiceOption is a functional option for the allocation service.
type AllocationServiceOption func(*allocationService)

// WithOverpaymentPolicy selects what happens to an unapplied remainder.
func WithOverpaymentPolicy(policy domain.OverpaymentPolicy) AllocationServiceOption {
	return func(s *allocationService) {
		if policy != "" {
			s.overpayment = policy
		}
	}
}

// NewAllocationService creates an allocation engine. The keyed mutex is
// shared with the forfeiture service so allocation and forfeiture are
// mutually exclusive per debtor.
func NewAllocationService(ledgerRepo portsrepo.LedgerRepositoryFacade, obligationSvc portssvc.ObligationSvcFacade, locks *locking.KeyedMutex, options ...AllocationServiceOption) portssvc.AllocationSvcFacade {
	svc := &allocationService{
		ledgerRepo:    ledgerRepo,
		obligationSvc: obligationSvc,
		locks:         locks,
		overpayment:   domain.OverpaymentFloating,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AllocationSvcFacade = (*allocationService)(nil)

// RecordPayment allocates one payment and persists it as a single balanced
// ledger entry. Idempotent per source reference: replaying the same payment
// event returns the previously computed result without a second write. The
// whole read-derive-append sequence runs inside the debtor's critical
// section; concurrent callers for the same debtor get
// apperrors.ErrConcurrentModification and should retry with backoff.
func (s *allocationService) RecordPayment(ctx context.Context, req dto.RecordPaymentRequest) (*domain.AllocationResult, error) {
	if req.DebtorID == "" || req.SourceRef == "" {
		return nil, fmt.Errorf("%w: debtor id and source ref are required", apperrors.ErrValidation)
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: payment amount cannot be negative, got %s", apperrors.ErrValidation, req.Amount.String())
	}

	unlock, ok := s.locks.TryLock(req.DebtorID)
	if !ok {
		return nil, fmt.Errorf("%w: debtor %s", apperrors.ErrConcurrentModification, req.DebtorID)
	}
	defer unlock()

	// Replay check before doing any work. Runs ahead of the zero-amount
	// short-circuit so a replayed source ref always returns the prior
	// result, whatever amount the replay carries.
	if existing, err := s.ledgerRepo.FindEntryBySourceRef(ctx, req.SourceRef); err == nil {
		s.LogInfo(ctx, "Payment source ref already allocated, returning prior result",
			slog.String("source_ref", req.SourceRef),
			slog.String("entry_id", existing.EntryID))
		return s.resultFromEntry(existing), nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check source ref %s: %w", req.SourceRef, err)
	}

	// A zero payment allocates nothing and writes nothing.
	if req.Amount.IsZero() {
		return &domain.AllocationResult{
			DebtorID:           req.DebtorID,
			SourceRef:          req.SourceRef,
			PaymentAmount:      decimal.Zero,
			Lines:              []domain.AllocationLine{},
			UnappliedRemainder: decimal.Zero,
		}, nil
	}

	obligations, err := s.obligationSvc.Outstanding(ctx, req.DebtorID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to derive obligations for debtor %s: %w", req.DebtorID, err)
	}

	result := &domain.AllocationResult{
		DebtorID:      req.DebtorID,
		SourceRef:     req.SourceRef,
		PaymentAmount: req.Amount,
		Lines:         make([]domain.AllocationLine, 0, len(obligations)),
	}

	// Walk the ordered obligations, applying as much as each still needs.
	lines := []domain.LedgerLine{domain.DebitLine(domain.AccountCash, domain.Asset, req.Amount)}
	remaining := req.Amount
	for _, obligation := range obligations {
		if remaining.IsZero() {
			break
		}
		applied := decimal.Min(remaining, obligation.Outstanding())
		remaining = remaining.Sub(applied)
		result.Lines = append(result.Lines, domain.AllocationLine{Obligation: obligation, AmountApplied: applied})
		lines = append(lines,
			domain.CreditLine(domain.AccountReceivable, domain.Asset, applied).
				WithObligation(obligation.Category, obligation.Period))
	}
	result.UnappliedRemainder = remaining

	// Anything left over is held as a student credit. Policy decides
	// whether it is earmarked for the next period or floats.
	if remaining.IsPositive() {
		credit := domain.CreditLine(domain.AccountStudentCredit, domain.Liability, remaining)
		if s.overpayment == domain.OverpaymentCreditBalance {
			credit.Period = domain.PeriodOf(req.Date).Next()
		}
		lines = append(lines, credit)
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Payment %s from debtor %s", req.SourceRef, req.DebtorID)
	}
	entry, err := domain.NewLedgerEntry(req.Date, domain.SourcePayment, req.SourceRef, description, lines, domain.EntryMetadata{
		DebtorID:    req.DebtorID,
		ResidenceID: req.ResidenceID,
		Period:      domain.PeriodOf(req.Date),
	})
	if err != nil {
		// Cannot happen for amounts that passed validation; surface loudly.
		return nil, fmt.Errorf("%w: %v", apperrors.ErrImbalancedEntry, err)
	}

	entryID, err := s.ledgerRepo.AppendEntry(ctx, entry)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateSourceRef) {
			// Lost a race outside our lock scope (e.g. a second process
			// on the same store). The prior entry is the result.
			if existing, findErr := s.ledgerRepo.FindEntryBySourceRef(ctx, req.SourceRef); findErr == nil {
				return s.resultFromEntry(existing), nil
			}
		}
		s.LogError(ctx, err, "Failed to append payment entry",
			slog.String("debtor_id", req.DebtorID),
			slog.String("source_ref", req.SourceRef))
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	result.EntryID = entryID

	s.LogInfo(ctx, "Payment allocated",
		slog.String("entry_id", entryID),
		slog.String("debtor_id", req.DebtorID),
		slog.String("source_ref", req.SourceRef),
		slog.Int("obligations_settled", len(result.Lines)),
		slog.String("unapplied_remainder", result.UnappliedRemainder.String()))
	return result, nil
}

// resultFromEntry reconstructs an allocation result from a previously
// persisted payment entry. The receivable credit lines carry the per
// obligation attribution; the student-credit line is the remainder. The
// embedded obligations only identify category and period, since the owed and
// settled amounts at original allocation time are not re-derivable.
func (s *allocationService) resultFromEntry(entry *domain.LedgerEntry) *domain.AllocationResult {
	result := &domain.AllocationResult{
		EntryID:            entry.EntryID,
		DebtorID:           entry.Metadata.DebtorID,
		SourceRef:          entry.SourceRef,
		PaymentAmount:      entry.TotalDebits(),
		Lines:              []domain.AllocationLine{},
		UnappliedRemainder: decimal.Zero,
		Replayed:           true,
	}
	for _, line := range entry.Lines {
		switch {
		case line.AccountCode == domain.AccountReceivable && line.Credit.IsPositive():
			result.Lines = append(result.Lines, domain.AllocationLine{
				Obligation: domain.Obligation{
					DebtorID: entry.Metadata.DebtorID,
					Category: line.Category,
					Period:   line.Period,
				},
				AmountApplied: line.Credit,
			})
		case line.AccountCode == domain.AccountStudentCredit && line.Credit.IsPositive():
			result.UnappliedRemainder = result.UnappliedRemainder.Add(line.Credit)
		}
	}
	return result
}
