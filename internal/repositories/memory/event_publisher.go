package memory

import (
	"context"
	"sync"

	portsrepo "github.com/hostelhq/housing_ledger_app/internal/core/ports/repositories"
)

// PublishedEvent is one captured event with its topic.
type PublishedEvent struct {
	Topic string
	Event any
}

// EventRecorder captures published events in memory. It serves tests and
// deployments without a broker; production wires the kafka publisher.
type EventRecorder struct {
	mu     sync.Mutex
	events []PublishedEvent
}

// NewEventRecorder creates an empty recorder.
func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

var _ portsrepo.EventPublisher = (*EventRecorder)(nil)

// Publish records the event.
func (r *EventRecorder) Publish(ctx context.Context, topic string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, PublishedEvent{Topic: topic, Event: event})
	return nil
}

// Events returns a copy of everything published so far.
func (r *EventRecorder) Events() []PublishedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PublishedEvent, len(r.events))
	copy(out, r.events)
	return out
}
