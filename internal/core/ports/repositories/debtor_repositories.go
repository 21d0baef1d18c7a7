package repositories

import (
	"context"
	"time"
)

// DebtorRegistry is the outbound port to the debtor/room collaborator. The
// ledger core has no notion of rooms; it only flags the debtor record after a
// forfeiture reversal has been written.
type DebtorRegistry interface {
	// MarkForfeited flags the debtor as forfeited.
	MarkForfeited(ctx context.Context, debtorID, reason string, at time.Time) error

	// IsForfeited reports whether the debtor has been forfeited.
	IsForfeited(ctx context.Context, debtorID string) (bool, error)
}

// RoomReleaseEvent is published when a forfeiture frees the debtor's unit.
// Occupancy is owned by an external collaborator; this is a side-channel
// signal, not a ledger write.
type RoomReleaseEvent struct {
	DebtorID string    `json:"debtorID"`
	Reason   string    `json:"reason"`
	At       time.Time `json:"at"`
}

// EventPublisher is the outbound port for side-channel events.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event any) error
}
