package dto

import (
	"time"

	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountTypeTotalResponse is one account-type total in a statement.
type AccountTypeTotalResponse struct {
	Type  string          `json:"type"`
	Total decimal.Decimal `json:"total"`
}

// BalanceSheetResponse is the balance sheet as of a date.
type BalanceSheetResponse struct {
	AsOf        string                     `json:"asOf"`
	ResidenceID string                     `json:"residenceID,omitempty"`
	Totals      []AccountTypeTotalResponse `json:"totals"`
	Summary     struct {
		TotalAssets      decimal.Decimal `json:"totalAssets"`
		TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
		TotalEquity      decimal.Decimal `json:"totalEquity"`
		RetainedEarnings decimal.Decimal `json:"retainedEarnings"`
	} `json:"summary"`
}

// IncomeStatementResponse is the income statement for a range and basis.
type IncomeStatementResponse struct {
	FromDate         string                     `json:"fromDate"`
	ToDate           string                     `json:"toDate"`
	Basis            string                     `json:"basis"`
	IncomeByCategory []CategoryAmountResponse   `json:"incomeByCategory"`
	Totals           []AccountTypeTotalResponse `json:"totals"`
	NetIncome        decimal.Decimal            `json:"netIncome"`
	RetainedEarnings decimal.Decimal            `json:"cumulativeRetainedEarnings"`
}

// CategoryAmountResponse is income recognized for one billing category.
type CategoryAmountResponse struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// ToBalanceSheetResponse converts a snapshot into the balance sheet DTO.
func ToBalanceSheetResponse(s *domain.StatementSnapshot) BalanceSheetResponse {
	resp := BalanceSheetResponse{
		AsOf:        s.AsOf.Format("2006-01-02"),
		ResidenceID: s.ResidenceID,
		Totals:      toTypeTotals(s.Totals),
	}
	resp.Summary.TotalAssets = s.TotalFor(domain.Asset)
	resp.Summary.TotalLiabilities = s.TotalFor(domain.Liability)
	resp.Summary.TotalEquity = s.TotalFor(domain.Equity)
	resp.Summary.RetainedEarnings = s.RetainedEarnings
	return resp
}

// ToIncomeStatementResponse converts a snapshot into the income statement DTO.
func ToIncomeStatementResponse(s *domain.StatementSnapshot, from, to time.Time) IncomeStatementResponse {
	resp := IncomeStatementResponse{
		FromDate:         from.Format("2006-01-02"),
		ToDate:           to.Format("2006-01-02"),
		Basis:            string(s.Basis),
		IncomeByCategory: make([]CategoryAmountResponse, len(s.IncomeByCategory)),
		Totals:           toTypeTotals(s.Totals),
		NetIncome:        s.NetIncome,
		RetainedEarnings: s.RetainedEarnings,
	}
	for i, row := range s.IncomeByCategory {
		resp.IncomeByCategory[i] = CategoryAmountResponse{Category: string(row.Category), Amount: row.Amount}
	}
	return resp
}

func toTypeTotals(totals []domain.AccountTypeTotal) []AccountTypeTotalResponse {
	out := make([]AccountTypeTotalResponse, len(totals))
	for i, row := range totals {
		out[i] = AccountTypeTotalResponse{Type: string(row.Type), Total: row.Total}
	}
	return out
}

// ObligationResponse is one outstanding obligation for a debtor.
type ObligationResponse struct {
	Category      string          `json:"category"`
	Period        string          `json:"period"`
	AmountOwed    decimal.Decimal `json:"amountOwed"`
	AmountSettled decimal.Decimal `json:"amountSettled"`
	Outstanding   decimal.Decimal `json:"outstanding"`
}

// ToObligationResponses converts derived obligations into their DTO form.
func ToObligationResponses(obligations []domain.Obligation) []ObligationResponse {
	out := make([]ObligationResponse, len(obligations))
	for i, o := range obligations {
		out[i] = ObligationResponse{
			Category:      string(o.Category),
			Period:        o.Period.String(),
			AmountOwed:    o.AmountOwed,
			AmountSettled: o.AmountSettled,
			Outstanding:   o.Outstanding(),
		}
	}
	return out
}

// AgingRowResponse is one debtor's receivables spread across age buckets.
type AgingRowResponse struct {
	DebtorID string                     `json:"debtorID"`
	Buckets  map[string]decimal.Decimal `json:"buckets"`
	Total    decimal.Decimal            `json:"total"`
}

// AgingResponse is the receivables aging report as of a date.
type AgingResponse struct {
	AsOf    string                     `json:"asOf"`
	Rows    []AgingRowResponse         `json:"rows"`
	Totals  map[string]decimal.Decimal `json:"totals"`
	Overall decimal.Decimal            `json:"overall"`
}

// ToAgingResponse converts an aging report into its DTO form.
func ToAgingResponse(r *domain.AgingReport) AgingResponse {
	resp := AgingResponse{
		AsOf:    r.AsOf,
		Rows:    make([]AgingRowResponse, len(r.Rows)),
		Totals:  bucketsToStrings(r.Totals),
		Overall: r.Overall,
	}
	for i, row := range r.Rows {
		resp.Rows[i] = AgingRowResponse{
			DebtorID: row.DebtorID,
			Buckets:  bucketsToStrings(row.Buckets),
			Total:    row.Total,
		}
	}
	return resp
}

func bucketsToStrings(buckets map[domain.AgingBucket]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(buckets))
	for bucket, amount := range buckets {
		out[string(bucket)] = amount
	}
	return out
}

// MonthlySnapshotResponse is one month's balance sheet in a snapshot series.
type MonthlySnapshotResponse struct {
	Period           string                     `json:"period"`
	Totals           []AccountTypeTotalResponse `json:"totals"`
	NetIncome        decimal.Decimal            `json:"netIncome"`
	RetainedEarnings decimal.Decimal            `json:"cumulativeRetainedEarnings"`
}

// ToMonthlySnapshotResponses converts a snapshot series into its DTO form.
func ToMonthlySnapshotResponses(snapshots []domain.StatementSnapshot) []MonthlySnapshotResponse {
	out := make([]MonthlySnapshotResponse, len(snapshots))
	for i, s := range snapshots {
		out[i] = MonthlySnapshotResponse{
			Period:           s.Period.String(),
			Totals:           toTypeTotals(s.Totals),
			NetIncome:        s.NetIncome,
			RetainedEarnings: s.RetainedEarnings,
		}
	}
	return out
}

// DebtorStatementLineResponse is one row of a debtor statement.
type DebtorStatementLineResponse struct {
	EntryID     string          `json:"entryID"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	SourceKind  string          `json:"sourceKind"`
	Charge      decimal.Decimal `json:"charge"`
	Payment     decimal.Decimal `json:"payment"`
	Balance     decimal.Decimal `json:"balance"`
}

// ToDebtorStatementResponses converts statement lines into their DTO form.
func ToDebtorStatementResponses(lines []domain.DebtorStatementLine) []DebtorStatementLineResponse {
	out := make([]DebtorStatementLineResponse, len(lines))
	for i, line := range lines {
		out[i] = DebtorStatementLineResponse{
			EntryID:     line.EntryID,
			Date:        line.Date.Format("2006-01-02"),
			Description: line.Description,
			SourceKind:  string(line.SourceKind),
			Charge:      line.Charge,
			Payment:     line.Payment,
			Balance:     line.Balance,
		}
	}
	return out
}
