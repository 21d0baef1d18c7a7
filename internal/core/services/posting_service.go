package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hostelhq/housing_ledger_app/internal/apperrors"
	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	portsrepo "github.com/hostelhq/housing_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/hostelhq/housing_ledger_app/internal/core/ports/services"
	"github.com/hostelhq/housing_ledger_app/internal/dto"
)

// postingService records the non-payment write-side events: invoices,
// adjustments, and vendor expenses. Each becomes one balanced ledger entry.
type postingService struct {
	BaseService
	ledgerRepo    portsrepo.LedgerRepositoryFacade
	chartRepo     portsrepo.ChartOfAccountsReader
	obligationSvc portssvc.ObligationSvcFacade
}

// NewPostingService creates a posting service over the ledger and chart.
func NewPostingService(ledgerRepo portsrepo.LedgerRepositoryFacade, chartRepo portsrepo.ChartOfAccountsReader, obligationSvc portssvc.ObligationSvcFacade) portssvc.PostingSvcFacade {
	return &postingService{ledgerRepo: ledgerRepo, chartRepo: chartRepo, obligationSvc: obligationSvc}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

// RecordInvoice bills a debtor: debit the receivable, credit the category's
// settlement account (income, or the deposits-held liability for deposits).
// Both lines carry the (category, period) attribution the obligation tracker
// derives from.
func (s *postingService) RecordInvoice(ctx context.Context, req dto.RecordInvoiceRequest) (string, error) {
	if !req.Amount.IsPositive() {
		return "", fmt.Errorf("%w: invoice amount must be positive, got %s", apperrors.ErrValidation, req.Amount.String())
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	period, err := domain.ParsePeriod(req.Period)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	settlementCode, err := category.SettlementAccount()
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	settlementAccount, err := s.chartRepo.FindAccountByCode(ctx, settlementCode)
	if err != nil {
		return "", fmt.Errorf("failed to resolve settlement account %s: %w", settlementCode, err)
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("%s invoice for %s", category, period)
	}

	lines := []domain.LedgerLine{
		domain.DebitLine(domain.AccountReceivable, domain.Asset, req.Amount).WithObligation(category, period),
		domain.CreditLine(settlementAccount.Code, settlementAccount.Type, req.Amount).WithObligation(category, period),
	}
	entry, err := domain.NewLedgerEntry(req.Date, domain.SourceInvoice, "", description, lines, domain.EntryMetadata{
		DebtorID:    req.DebtorID,
		ResidenceID: req.ResidenceID,
		Period:      period,
		Category:    category,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrImbalancedEntry, err)
	}

	entryID, err := s.ledgerRepo.AppendEntry(ctx, entry)
	if err != nil {
		s.LogError(ctx, err, "Failed to append invoice entry", slog.String("debtor_id", req.DebtorID))
		return "", fmt.Errorf("failed to record invoice: %w", err)
	}
	s.LogInfo(ctx, "Invoice recorded",
		slog.String("entry_id", entryID),
		slog.String("debtor_id", req.DebtorID),
		slog.String("category", string(category)),
		slog.String("period", period.String()))
	return entryID, nil
}

// RecordAdjustment corrects an obligation. A positive amount raises it like
// an invoice; a negative amount reduces it with the sides swapped. Reductions
// below what is already settled are rejected so the settled <= owed invariant
// survives corrections.
func (s *postingService) RecordAdjustment(ctx context.Context, req dto.RecordAdjustmentRequest) (string, error) {
	if req.Amount.IsZero() {
		return "", fmt.Errorf("%w: adjustment amount must be non-zero", apperrors.ErrValidation)
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	period, err := domain.ParsePeriod(req.Period)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	settlementCode, err := category.SettlementAccount()
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	settlementAccount, err := s.chartRepo.FindAccountByCode(ctx, settlementCode)
	if err != nil {
		return "", fmt.Errorf("failed to resolve settlement account %s: %w", settlementCode, err)
	}

	magnitude := req.Amount.Abs()
	if req.Amount.IsNegative() {
		// A reduction below what is already settled would leave the
		// obligation with settled > owed; reject rather than let the
		// invariant break silently.
		obligations, err := s.obligationSvc.Outstanding(ctx, req.DebtorID, req.Date)
		if err != nil {
			return "", fmt.Errorf("failed to derive obligations for adjustment check: %w", err)
		}
		for _, o := range obligations {
			if o.Category == category && o.Period == period && magnitude.GreaterThan(o.Outstanding()) {
				return "", fmt.Errorf("%w: adjustment of %s exceeds outstanding %s for %s %s",
					apperrors.ErrConflict, magnitude.String(), o.Outstanding().String(), category, period)
			}
		}
	}
	var lines []domain.LedgerLine
	if req.Amount.IsPositive() {
		lines = []domain.LedgerLine{
			domain.DebitLine(domain.AccountReceivable, domain.Asset, magnitude).WithObligation(category, period),
			domain.CreditLine(settlementAccount.Code, settlementAccount.Type, magnitude).WithObligation(category, period),
		}
	} else {
		lines = []domain.LedgerLine{
			domain.DebitLine(settlementAccount.Code, settlementAccount.Type, magnitude).WithObligation(category, period),
			domain.CreditLine(domain.AccountReceivable, domain.Asset, magnitude).WithObligation(category, period),
		}
	}

	entry, err := domain.NewLedgerEntry(req.Date, domain.SourceAdjustment, "", fmt.Sprintf("Adjustment: %s", req.Reason), lines, domain.EntryMetadata{
		DebtorID:    req.DebtorID,
		ResidenceID: req.ResidenceID,
		Period:      period,
		Category:    category,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrImbalancedEntry, err)
	}

	entryID, err := s.ledgerRepo.AppendEntry(ctx, entry)
	if err != nil {
		s.LogError(ctx, err, "Failed to append adjustment entry", slog.String("debtor_id", req.DebtorID))
		return "", fmt.Errorf("failed to record adjustment: %w", err)
	}
	s.LogInfo(ctx, "Adjustment recorded",
		slog.String("entry_id", entryID),
		slog.String("debtor_id", req.DebtorID),
		slog.String("amount", req.Amount.String()))
	return entryID, nil
}

// RecordExpense records a paid vendor expense: debit the expense account,
// credit cash.
func (s *postingService) RecordExpense(ctx context.Context, req dto.RecordExpenseRequest) (string, error) {
	if !req.Amount.IsPositive() {
		return "", fmt.Errorf("%w: expense amount must be positive, got %s", apperrors.ErrValidation, req.Amount.String())
	}
	account, err := s.chartRepo.FindAccountByCode(ctx, req.AccountCode)
	if err != nil {
		return "", fmt.Errorf("%w: account %s", apperrors.ErrUnknownAccount, req.AccountCode)
	}
	if account.Type != domain.Expense {
		return "", fmt.Errorf("%w: account %s is %s, expected EXPENSE", apperrors.ErrValidation, account.Code, account.Type)
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("%s paid to vendor %s", account.Name, req.VendorID)
	}

	lines := []domain.LedgerLine{
		domain.DebitLine(account.Code, account.Type, req.Amount),
		domain.CreditLine(domain.AccountCash, domain.Asset, req.Amount),
	}
	entry, err := domain.NewLedgerEntry(req.Date, domain.SourceExpense, "", description, lines, domain.EntryMetadata{
		DebtorID:    req.VendorID,
		ResidenceID: req.ResidenceID,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrImbalancedEntry, err)
	}

	entryID, err := s.ledgerRepo.AppendEntry(ctx, entry)
	if err != nil {
		s.LogError(ctx, err, "Failed to append expense entry", slog.String("vendor_id", req.VendorID))
		return "", fmt.Errorf("failed to record expense: %w", err)
	}
	s.LogInfo(ctx, "Expense recorded", slog.String("entry_id", entryID), slog.String("vendor_id", req.VendorID))
	return entryID, nil
}

// DebtorStatement lists the debtor's ledger activity in date order with a
// running balance over the receivable: charges raise it, settlements and
// reversals lower it.
func (s *postingService) DebtorStatement(ctx context.Context, debtorID string, from, to *time.Time) ([]domain.DebtorStatementLine, error) {
	if debtorID == "" {
		return nil, fmt.Errorf("%w: debtor id is required", apperrors.ErrValidation)
	}
	entries, err := s.ledgerRepo.QueryEntries(ctx, portsrepo.EntryFilter{
		DebtorID: debtorID,
		From:     from,
		To:       to,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger for debtor %s: %w", debtorID, err)
	}

	statement := make([]domain.DebtorStatementLine, 0, len(entries))
	balance := decimal.Zero
	for _, entry := range entries {
		charge := decimal.Zero
		payment := decimal.Zero
		for _, line := range entry.Lines {
			if line.AccountCode != domain.AccountReceivable {
				continue
			}
			charge = charge.Add(line.Debit)
			payment = payment.Add(line.Credit)
		}
		if charge.IsZero() && payment.IsZero() {
			continue
		}
		balance = balance.Add(charge).Sub(payment)
		statement = append(statement, domain.DebtorStatementLine{
			EntryID:     entry.EntryID,
			Date:        entry.Date,
			Description: entry.Description,
			SourceKind:  entry.SourceKind,
			Charge:      charge,
			Payment:     payment,
			Balance:     balance,
		})
	}
	return statement, nil
}
