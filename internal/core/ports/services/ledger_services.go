package services

import (
	"context"
	"time"

	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	"github.com/hostelhq/housing_ledger_app/internal/dto"
)

// PostingSvcFacade records the write-side events that raise or reduce
// obligations outside of payment allocation.
type PostingSvcFacade interface {
	// RecordInvoice bills a debtor for a category and period, returning the
	// ledger entry id.
	RecordInvoice(ctx context.Context, req dto.RecordInvoiceRequest) (string, error)

	// RecordAdjustment applies a signed correction to an obligation.
	RecordAdjustment(ctx context.Context, req dto.RecordAdjustmentRequest) (string, error)

	// RecordExpense records a vendor expense against an expense account.
	RecordExpense(ctx context.Context, req dto.RecordExpenseRequest) (string, error)

	// DebtorStatement lists a debtor's ledger activity chronologically with
	// a running balance.
	DebtorStatement(ctx context.Context, debtorID string, from, to *time.Time) ([]domain.DebtorStatementLine, error)
}

// ObligationSvcFacade derives outstanding obligations from the ledger. Every
// consumer (allocation, statements, forfeiture) goes through this one
// derivation so "owed" has a single definition.
type ObligationSvcFacade interface {
	// Outstanding returns the debtor's unsettled obligations as of a date,
	// ordered oldest period first, then by category priority. The ordering
	// is the allocation policy: it decides who gets paid first.
	Outstanding(ctx context.Context, debtorID string, asOf time.Time) ([]domain.Obligation, error)

	// Aging buckets all outstanding receivables by age as of a date,
	// optionally scoped to one residence.
	Aging(ctx context.Context, asOf time.Time, residenceID string) (*domain.AgingReport, error)
}

// AllocationSvcFacade applies incoming payments across obligations.
type AllocationSvcFacade interface {
	// RecordPayment allocates a payment greedily across the debtor's
	// outstanding obligations and persists one balanced ledger entry.
	// Idempotent per source reference: a replay returns the prior result.
	RecordPayment(ctx context.Context, req dto.RecordPaymentRequest) (*domain.AllocationResult, error)
}

// StatementSvcFacade aggregates the ledger into financial statements.
type StatementSvcFacade interface {
	// BalanceSheet computes asset/liability/equity totals as of a date and
	// asserts the balance sheet identity.
	BalanceSheet(ctx context.Context, asOf time.Time, residenceID string) (*domain.StatementSnapshot, error)

	// IncomeStatement computes recognized income and expenses for a range
	// on either cash or accrual basis.
	IncomeStatement(ctx context.Context, from, to time.Time, basis domain.Basis) (*domain.StatementSnapshot, error)

	// MonthlySnapshots computes one balance sheet snapshot per month over
	// an inclusive period range.
	MonthlySnapshots(ctx context.Context, from, to domain.Period, residenceID string) ([]domain.StatementSnapshot, error)
}

// ForfeitureSvcFacade reverses a debtor's allocations and releases the room.
type ForfeitureSvcFacade interface {
	// Forfeit runs the forfeiture workflow as an all-or-nothing unit.
	Forfeit(ctx context.Context, req dto.ForfeitDebtorRequest) (*domain.ForfeitureResult, error)
}

// ServiceContainer bundles the core services for route registration.
type ServiceContainer struct {
	Posting    PostingSvcFacade
	Obligation ObligationSvcFacade
	Allocation AllocationSvcFacade
	Statement  StatementSvcFacade
	Forfeiture ForfeitureSvcFacade
}
