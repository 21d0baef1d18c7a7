package domain

// Well-known account codes used by the posting, allocation, and forfeiture
// services. The chart can carry additional accounts, but these must exist.
const (
	AccountCash              = "1010"
	AccountReceivable        = "1200"
	AccountStudentCredit     = "2100"
	AccountDepositsHeld      = "2200"
	AccountAccountsPayable   = "2010"
	AccountOwnersEquity      = "3010"
	AccountForfeitureLoss    = "5900"
	AccountMaintenanceExp    = "5010"
	AccountUtilitiesExp      = "5020"
	AccountAdministrationExp = "5030"
)

// DefaultChart returns the standard chart of accounts for a student-housing
// residence. Codes follow the usual convention: 1xxx assets, 2xxx liabilities,
// 3xxx equity, 4xxx income, 5xxx expenses.
func DefaultChart() []Account {
	accounts := []Account{
		{Code: AccountCash, Name: "Cash", Type: Asset, Description: "Operating bank account"},
		{Code: AccountReceivable, Name: "Accounts Receivable", Type: Asset, Description: "Amounts owed by students"},
		{Code: AccountAccountsPayable, Name: "Accounts Payable", Type: Liability, Description: "Amounts owed to vendors"},
		{Code: AccountStudentCredit, Name: "Student Credit Balances", Type: Liability, Description: "Unapplied payment remainders held on behalf of students"},
		{Code: AccountDepositsHeld, Name: "Security Deposits Held", Type: Liability, Description: "Refundable deposits"},
		{Code: AccountOwnersEquity, Name: "Owner's Equity", Type: Equity},
		{Code: "4010", Name: "Rent Income", Type: Income},
		{Code: "4020", Name: "Admin Fee Income", Type: Income},
		{Code: "4030", Name: "Utility Recovery Income", Type: Income},
		{Code: "4050", Name: "Penalty Income", Type: Income},
		{Code: AccountMaintenanceExp, Name: "Maintenance Expense", Type: Expense},
		{Code: AccountUtilitiesExp, Name: "Utilities Expense", Type: Expense},
		{Code: AccountAdministrationExp, Name: "Administration Expense", Type: Expense},
		{Code: AccountForfeitureLoss, Name: "Forfeiture Loss", Type: Expense, Description: "Allocations reversed on forfeiture"},
	}
	for i := range accounts {
		accounts[i].NormalBalance = NormalBalanceFor(accounts[i].Type)
		accounts[i].IsActive = true
	}
	return accounts
}
