package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hostelhq/housing_ledger_app/internal/apperrors"
	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	portsrepo "github.com/hostelhq/housing_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/hostelhq/housing_ledger_app/internal/core/ports/services"
	"github.com/hostelhq/housing_ledger_app/internal/dto"
	"github.com/hostelhq/housing_ledger_app/internal/utils/locking"
)

const defaultRoomReleaseTopic = "room.release"

// forfeitureService runs the forfeiture workflow: reverse everything the
// debtor's payments settled, signal the room release, mark the debtor. The
// ledger write is one balanced entry, so the reversal is atomic by
// construction; everything after it is best-effort side effects that are
// reported, never silently dropped.
type forfeitureService struct {
	BaseService
	ledgerRepo portsrepo.LedgerRepositoryFacade
	debtorRepo portsrepo.DebtorRegistry
	events     portsrepo.EventPublisher
	locks      *locking.KeyedMutex
	topic      string
}

// ForfeitureServiceOption configures the forfeiture service.
type ForfeitureServiceOption func(*forfeitureService)

// WithRoomReleaseTopic overrides the topic room release events publish to.
func WithRoomReleaseTopic(topic string) ForfeitureServiceOption {
	return func(s *forfeitureService) {
		if topic != "" {
			s.topic = topic
		}
	}
}

// NewForfeitureService creates the forfeiture workflow. The keyed mutex must
// be the same instance the allocation service uses so a forfeiture and a
// payment for one debtor can never interleave.
func NewForfeitureService(
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	debtorRepo portsrepo.DebtorRegistry,
	events portsrepo.EventPublisher,
	locks *locking.KeyedMutex,
	options ...ForfeitureServiceOption,
) portssvc.ForfeitureSvcFacade {
	svc := &forfeitureService{
		ledgerRepo: ledgerRepo,
		debtorRepo: debtorRepo,
		events:     events,
		locks:      locks,
		topic:      defaultRoomReleaseTopic,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ForfeitureSvcFacade = (*forfeitureService)(nil)

// Forfeit reverses the debtor's settled payments in one ledger entry, emits
// the room release signal, and marks the debtor forfeited. If the ledger
// write fails nothing is visible and the workflow reports FAILED. If a side
// effect after the write fails, the result says so (RoomReleased false) and
// the inconsistency is logged for reconciliation.
func (s *forfeitureService) Forfeit(ctx context.Context, req dto.ForfeitDebtorRequest) (*domain.ForfeitureResult, error) {
	logger := s.GetLogger(ctx)

	unlock, ok := s.locks.TryLock(req.DebtorID)
	if !ok {
		return nil, fmt.Errorf("%w: debtor %s is being modified", apperrors.ErrConcurrentModification, req.DebtorID)
	}
	defer unlock()

	forfeited, err := s.debtorRepo.IsForfeited(ctx, req.DebtorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check debtor state: %w", err)
	}
	if forfeited {
		return nil, fmt.Errorf("%w: debtor %s is already forfeited", apperrors.ErrConflict, req.DebtorID)
	}

	result := &domain.ForfeitureResult{
		DebtorID: req.DebtorID,
		State:    domain.ForfeitureActive,
		Reason:   req.Reason,
	}

	total, payments, err := s.settledTotal(ctx, req.DebtorID, req.Date)
	if err != nil {
		result.State = domain.ForfeitureFailed
		return result, err
	}
	result.ReversedTotal = total
	result.ReversedPayments = payments
	result.State = domain.ForfeitureReversing

	if total.IsPositive() {
		entry, err := s.buildReversalEntry(req, total)
		if err != nil {
			result.State = domain.ForfeitureFailed
			return result, err
		}
		entryID, err := s.ledgerRepo.AppendEntry(ctx, entry)
		if errors.Is(err, apperrors.ErrDuplicateSourceRef) {
			// A prior run wrote the reversal but did not finish the
			// side effects. Resume from the committed entry.
			prior, findErr := s.ledgerRepo.FindEntryBySourceRef(ctx, entry.SourceRef)
			if findErr != nil {
				result.State = domain.ForfeitureFailed
				return result, fmt.Errorf("failed to load prior reversal entry: %w", findErr)
			}
			entryID = prior.EntryID
			result.ReversedTotal = prior.TotalDebits()
			logger.Warn("Resuming forfeiture from a previously committed reversal",
				slog.String("debtor_id", req.DebtorID),
				slog.String("entry_id", entryID))
		} else if err != nil {
			result.State = domain.ForfeitureFailed
			s.LogError(ctx, err, "Forfeiture reversal write failed, nothing committed",
				slog.String("debtor_id", req.DebtorID))
			return result, fmt.Errorf("failed to append forfeiture reversal: %w", err)
		}
		result.EntryID = entryID
	}

	// The ledger is committed from here on. Side effect failures are
	// reported on the result instead of failing the workflow, otherwise a
	// retry would double-reverse.
	result.State = domain.ForfeitureForfeited

	event := portsrepo.RoomReleaseEvent{DebtorID: req.DebtorID, Reason: req.Reason, At: req.Date}
	if err := s.events.Publish(ctx, s.topic, event); err != nil {
		s.LogError(ctx, err, "Room release signal failed after reversal committed, needs reconciliation",
			slog.String("debtor_id", req.DebtorID),
			slog.String("entry_id", result.EntryID),
			slog.String("topic", s.topic))
	} else {
		result.RoomReleased = true
	}

	if err := s.debtorRepo.MarkForfeited(ctx, req.DebtorID, req.Reason, req.Date); err != nil {
		s.LogError(ctx, err, "Failed to mark debtor forfeited after reversal committed, needs reconciliation",
			slog.String("debtor_id", req.DebtorID),
			slog.String("entry_id", result.EntryID))
	}

	s.LogInfo(ctx, "Debtor forfeited",
		slog.String("debtor_id", req.DebtorID),
		slog.String("reversed_total", result.ReversedTotal.String()),
		slog.Int("reversed_payments", result.ReversedPayments),
		slog.Bool("room_released", result.RoomReleased))
	return result, nil
}

// settledTotal sums the amounts the debtor's payments applied to obligations
// through the forfeiture date, and counts the payments involved.
func (s *forfeitureService) settledTotal(ctx context.Context, debtorID string, asOf time.Time) (decimal.Decimal, int, error) {
	entries, err := s.ledgerRepo.QueryEntries(ctx, portsrepo.EntryFilter{
		DebtorID:    debtorID,
		SourceKinds: []domain.SourceKind{domain.SourcePayment},
		To:          &asOf,
	})
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to query debtor payments: %w", err)
	}

	total := decimal.Zero
	payments := 0
	for _, entry := range entries {
		applied := decimal.Zero
		for _, line := range entry.Lines {
			if line.AccountCode == domain.AccountReceivable && line.Credit.IsPositive() && line.Category != "" {
				applied = applied.Add(line.Credit)
			}
		}
		if applied.IsPositive() {
			total = total.Add(applied)
			payments++
		}
	}
	return total, payments, nil
}

// buildReversalEntry makes the single balanced entry that reverses the
// settled total: debit the loss account, credit the receivable. The lines
// carry no category or period on purpose, a reversal must not resurrect the
// obligations it tears down.
func (s *forfeitureService) buildReversalEntry(req dto.ForfeitDebtorRequest, total decimal.Decimal) (domain.LedgerEntry, error) {
	description := fmt.Sprintf("Forfeiture of debtor %s: %s", req.DebtorID, req.Reason)
	lines := []domain.LedgerLine{
		domain.DebitLine(domain.AccountForfeitureLoss, domain.Expense, total),
		domain.CreditLine(domain.AccountReceivable, domain.Asset, total),
	}
	meta := domain.EntryMetadata{DebtorID: req.DebtorID, ResidenceID: req.ResidenceID}
	sourceRef := fmt.Sprintf("forfeiture:%s", req.DebtorID)
	entry, err := domain.NewLedgerEntry(req.Date, domain.SourceForfeiture, sourceRef, description, lines, meta)
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("failed to build forfeiture reversal: %w", err)
	}
	return entry, nil
}
