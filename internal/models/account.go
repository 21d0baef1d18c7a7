package models

import "time"

// Account is the persistence shape of one chart-of-accounts row.
type Account struct {
	AccountCode   string    `db:"account_code"`
	Name          string    `db:"name"`
	AccountType   string    `db:"account_type"`
	NormalBalance string    `db:"normal_balance"`
	Description   string    `db:"description"`
	IsActive      bool      `db:"is_active"`
	CreatedAt     time.Time `db:"created_at"`
}
