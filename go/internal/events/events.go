// Package events publishes domain events after roster changes commit.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	TeamCreated        = "team.created"
	TeamUpdated        = "team.updated"
	TeamCaptainChanged = "team.captain_changed"
	TeamStatusChanged  = "team.status_changed"
	TeamDeleted        = "team.deleted"
	TeamMemberAdded    = "team.member_added"
	TeamMemberRemoved  = "team.member_removed"
	RosterSynced       = "roster.synced"
)

// Event is one domain event. AggregateID is the team the event is about,
// or uuid.Nil for job-level events.
type Event struct {
	ID          uuid.UUID
	Type        string
	AggregateID uuid.UUID
	Payload     []byte
	OccurredAt  time.Time
}

// New builds an event with a JSON payload.
func New(eventType string, aggregateID uuid.UUID, payload any, now time.Time) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:          uuid.New(),
		Type:        eventType,
		AggregateID: aggregateID,
		Payload:     data,
		OccurredAt:  now,
	}, nil
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Emit builds and publishes an event. Failures are logged, not returned:
// the change the event describes has already committed.
func Emit(ctx context.Context, pub Publisher, eventType string, aggregateID uuid.UUID, payload any, now time.Time) {
	if pub == nil {
		return
	}
	evt, err := New(eventType, aggregateID, payload, now)
	if err == nil {
		err = pub.Publish(ctx, evt)
	}
	if err != nil {
		log.Error().
			Err(err).
			Str("event_type", eventType).
			Str("aggregate_id", aggregateID.String()).
			Msg("failed to publish event")
	}
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Types returns the types of the recorded events in publish order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
