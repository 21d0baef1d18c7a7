package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	portsrepo "github.com/hostelhq/housing_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/hostelhq/housing_ledger_app/internal/core/ports/services"
)

// obligationKey identifies one obligation bucket of a single debtor.
type obligationKey struct {
	Category domain.Category
	Period   domain.Period
}

// obligationService derives outstanding obligations from the ledger. It is
// the single definition of "owed": allocation, statements, and forfeiture all
// consume this derivation rather than re-deriving ad hoc.
type obligationService struct {
	BaseService
	ledgerRepo portsrepo.LedgerReader
	priority   domain.CategoryPriority
}

// ObligationServiceOption is a functional option for the obligation service.
type ObligationServiceOption func(*obligationService)

// WithCategoryPriority overrides the default category allocation order.
func WithCategoryPriority(priority domain.CategoryPriority) ObligationServiceOption {
	return func(s *obligationService) {
		if len(priority) > 0 {
			s.priority = priority
		}
	}
}

// NewObligationService creates an obligation tracker over the given ledger.
func NewObligationService(ledgerRepo portsrepo.LedgerReader, options ...ObligationServiceOption) portssvc.ObligationSvcFacade {
	svc := &obligationService{
		ledgerRepo: ledgerRepo,
		priority:   domain.DefaultCategoryPriority,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ObligationSvcFacade = (*obligationService)(nil)

// Outstanding returns the debtor's unsettled obligations as of a date,
// sorted by period ascending (oldest debt first), then by category priority.
// This ordering is the allocation policy: when a payment cannot cover
// everything, it decides who gets paid first.
func (s *obligationService) Outstanding(ctx context.Context, debtorID string, asOf time.Time) ([]domain.Obligation, error) {
	if debtorID == "" {
		return nil, fmt.Errorf("debtor id is required")
	}
	obligations, err := s.deriveObligations(ctx, debtorID, asOf, "")
	if err != nil {
		return nil, err
	}

	outstanding := obligations[:0]
	for _, o := range obligations {
		if o.Outstanding().IsPositive() {
			outstanding = append(outstanding, o)
		}
	}
	s.sortByPolicy(outstanding)

	s.LogDebug(ctx, "Derived outstanding obligations",
		slog.String("debtor_id", debtorID),
		slog.Int("count", len(outstanding)))
	return outstanding, nil
}

// Aging buckets outstanding receivables by how overdue their period is,
// relative to asOf: current month, 30, 60, and 90+ days.
func (s *obligationService) Aging(ctx context.Context, asOf time.Time, residenceID string) (*domain.AgingReport, error) {
	entries, err := s.ledgerRepo.QueryEntries(ctx, portsrepo.EntryFilter{
		To:          &asOf,
		SourceKinds: []domain.SourceKind{domain.SourceInvoice, domain.SourceAdjustment, domain.SourcePayment},
		ResidenceID: residenceID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger for aging: %w", err)
	}

	// Outstanding per debtor per period, derived from the same attributed
	// receivable lines the per-debtor derivation uses.
	type debtorPeriod struct {
		DebtorID string
		Period   domain.Period
	}
	owed := make(map[debtorPeriod]decimal.Decimal)
	for _, entry := range entries {
		debtorID := entry.Metadata.DebtorID
		if debtorID == "" {
			continue
		}
		for _, line := range entry.Lines {
			if entry.SourceKind == domain.SourcePayment &&
				line.AccountCode == domain.AccountStudentCredit &&
				line.Credit.IsPositive() && !line.Period.IsZero() {
				// Carried credit counts against the period it is
				// earmarked for.
				key := debtorPeriod{DebtorID: debtorID, Period: line.Period}
				owed[key] = owed[key].Sub(line.Credit)
				continue
			}
			if line.AccountCode != domain.AccountReceivable || line.Category == "" {
				continue
			}
			key := debtorPeriod{DebtorID: debtorID, Period: line.Period}
			owed[key] = owed[key].Add(line.Debit).Sub(line.Credit)
		}
	}

	report := &domain.AgingReport{
		AsOf:    asOf.Format("2006-01-02"),
		Totals:  make(map[domain.AgingBucket]decimal.Decimal, len(domain.AgingBuckets)),
		Overall: decimal.Zero,
	}
	for _, bucket := range domain.AgingBuckets {
		report.Totals[bucket] = decimal.Zero
	}

	rowIndex := make(map[string]int)
	for key, amount := range owed {
		if !amount.IsPositive() {
			continue
		}
		bucket := ageBucket(key.Period, asOf)
		idx, ok := rowIndex[key.DebtorID]
		if !ok {
			idx = len(report.Rows)
			rowIndex[key.DebtorID] = idx
			row := domain.AgingRow{
				DebtorID: key.DebtorID,
				Buckets:  make(map[domain.AgingBucket]decimal.Decimal, len(domain.AgingBuckets)),
				Total:    decimal.Zero,
			}
			for _, b := range domain.AgingBuckets {
				row.Buckets[b] = decimal.Zero
			}
			report.Rows = append(report.Rows, row)
		}
		report.Rows[idx].Buckets[bucket] = report.Rows[idx].Buckets[bucket].Add(amount)
		report.Rows[idx].Total = report.Rows[idx].Total.Add(amount)
		report.Totals[bucket] = report.Totals[bucket].Add(amount)
		report.Overall = report.Overall.Add(amount)
	}

	sort.Slice(report.Rows, func(i, j int) bool { return report.Rows[i].DebtorID < report.Rows[j].DebtorID })
	return report, nil
}

// deriveObligations accumulates owed and settled amounts per (category,
// period) from attributed receivable lines: invoice/adjustment debits raise
// what is owed, payment credits settle it. Student-credit lines earmarked
// with a period (the credit_balance overpayment policy) are carried forward
// and consumed as settlement toward that period's obligations. Forfeiture
// reversals carry no attribution and so never resurrect settled obligations.
func (s *obligationService) deriveObligations(ctx context.Context, debtorID string, asOf time.Time, residenceID string) ([]domain.Obligation, error) {
	entries, err := s.ledgerRepo.QueryEntries(ctx, portsrepo.EntryFilter{
		To:          &asOf,
		DebtorID:    debtorID,
		ResidenceID: residenceID,
		SourceKinds: []domain.SourceKind{domain.SourceInvoice, domain.SourceAdjustment, domain.SourcePayment},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger for debtor %s: %w", debtorID, err)
	}

	owed := make(map[obligationKey]decimal.Decimal)
	settled := make(map[obligationKey]decimal.Decimal)
	carried := make(map[domain.Period]decimal.Decimal)
	for _, entry := range entries {
		for _, line := range entry.Lines {
			if entry.SourceKind == domain.SourcePayment &&
				line.AccountCode == domain.AccountStudentCredit &&
				line.Credit.IsPositive() && !line.Period.IsZero() {
				carried[line.Period] = carried[line.Period].Add(line.Credit)
				continue
			}
			if line.AccountCode != domain.AccountReceivable || line.Category == "" {
				continue
			}
			key := obligationKey{Category: line.Category, Period: line.Period}
			switch entry.SourceKind {
			case domain.SourceInvoice, domain.SourceAdjustment:
				owed[key] = owed[key].Add(line.Debit).Sub(line.Credit)
			case domain.SourcePayment:
				settled[key] = settled[key].Add(line.Credit)
			}
		}
	}

	obligations := make([]domain.Obligation, 0, len(owed))
	for key, amountOwed := range owed {
		obligations = append(obligations, domain.Obligation{
			DebtorID:      debtorID,
			Category:      key.Category,
			Period:        key.Period,
			AmountOwed:    amountOwed,
			AmountSettled: settled[key],
		})
	}

	// Carried credits pre-settle their period's obligations in priority
	// order, capped at what each obligation still needs. Credit for a
	// period with nothing billed yet stays unconsumed until an invoice
	// arrives.
	if len(carried) > 0 {
		s.sortByPolicy(obligations)
		for i := range obligations {
			credit := carried[obligations[i].Period]
			if !credit.IsPositive() {
				continue
			}
			applied := decimal.Min(credit, obligations[i].Outstanding())
			if applied.IsPositive() {
				obligations[i].AmountSettled = obligations[i].AmountSettled.Add(applied)
				carried[obligations[i].Period] = credit.Sub(applied)
			}
		}
	}
	return obligations, nil
}

// sortByPolicy orders obligations oldest period first, then by the
// configured category priority. Stable and deterministic: two runs over the
// same ledger produce the same order.
func (s *obligationService) sortByPolicy(obligations []domain.Obligation) {
	sort.SliceStable(obligations, func(i, j int) bool {
		if obligations[i].Period != obligations[j].Period {
			return obligations[i].Period.Before(obligations[j].Period)
		}
		return s.priority.Rank(obligations[i].Category) < s.priority.Rank(obligations[j].Category)
	})
}

// ageBucket classifies how overdue a period is relative to asOf.
func ageBucket(period domain.Period, asOf time.Time) domain.AgingBucket {
	age := asOf.Sub(period.End())
	switch {
	case age <= 0:
		return domain.AgingCurrent
	case age <= 30*24*time.Hour:
		return domain.Aging30
	case age <= 60*24*time.Hour:
		return domain.Aging60
	default:
		return domain.Aging90Plus
	}
}
