package domain

import "fmt"

// Category classifies what a student is billed for.
type Category string

const (
	CategoryRent     Category = "RENT"
	CategoryAdminFee Category = "ADMIN_FEE"
	CategoryUtility  Category = "UTILITY"
	CategoryDeposit  Category = "DEPOSIT"
	CategoryPenalty  Category = "PENALTY"
)

// DefaultCategoryPriority is the order in which a partial payment is applied
// across categories of the same period: rent first, penalties last. The order
// is a business policy and is overridable through configuration.
var DefaultCategoryPriority = CategoryPriority{
	CategoryRent,
	CategoryAdminFee,
	CategoryUtility,
	CategoryDeposit,
	CategoryPenalty,
}

// categorySettlementAccounts maps each category to the account credited when
// the category is billed. Deposits fund a liability, everything else income.
var categorySettlementAccounts = map[Category]string{
	CategoryRent:     "4010",
	CategoryAdminFee: "4020",
	CategoryUtility:  "4030",
	CategoryDeposit:  AccountDepositsHeld,
	CategoryPenalty:  "4050",
}

// SettlementAccount returns the account code credited when this category is
// invoiced.
func (c Category) SettlementAccount() (string, error) {
	code, ok := categorySettlementAccounts[c]
	if !ok {
		return "", fmt.Errorf("no settlement account for category %q", c)
	}
	return code, nil
}

// ParseCategory validates a category string from an external caller.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categorySettlementAccounts[c]; !ok {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// CategoryPriority is an ordered allocation policy over categories.
type CategoryPriority []Category

// Rank returns the position of c in the priority order. Unknown categories
// sort after all known ones so they are still payable, just last.
func (p CategoryPriority) Rank(c Category) int {
	for i, candidate := range p {
		if candidate == c {
			return i
		}
	}
	return len(p)
}
