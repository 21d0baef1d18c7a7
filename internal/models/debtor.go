package models

import "time"

// Debtor is the persistence shape of one debtor registry row. Only the
// forfeiture flag lives here; identity and room assignment are owned by the
// external occupancy system.
type Debtor struct {
	DebtorID       string     `db:"debtor_id"`
	ForfeitedAt    *time.Time `db:"forfeited_at"`
	ForfeitReason  string     `db:"forfeit_reason"`
	CreatedAt      time.Time  `db:"created_at"`
	LastUpdatedAt  time.Time  `db:"last_updated_at"`
}
