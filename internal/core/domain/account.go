package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// AccountTypes lists every account type in reporting order.
var AccountTypes = []AccountType{Asset, Liability, Equity, Income, Expense}

// NormalBalance indicates which side of an entry increases an account.
type NormalBalance string

const (
	NormalDebit  NormalBalance = "DEBIT"
	NormalCredit NormalBalance = "CREDIT"
)

// Account represents one entry in the chart of accounts. Accounts are
// immutable once referenced by a ledger entry; corrections happen through new
// offsetting entries, never by mutating the account.
type Account struct {
	Code          string        `json:"code"` // Globally unique account code, e.g. "1200"
	Name          string        `json:"name"`
	Type          AccountType   `json:"type"`
	NormalBalance NormalBalance `json:"normalBalance"`
	Description   string        `json:"description"`
	IsActive      bool          `json:"isActive"`
}

// NormalBalanceFor returns the conventional normal balance for an account type.
func NormalBalanceFor(t AccountType) NormalBalance {
	switch t {
	case Asset, Expense:
		return NormalDebit
	default:
		return NormalCredit
	}
}
