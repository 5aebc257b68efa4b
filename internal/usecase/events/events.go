// Package events describes what the write side announces once a transaction commits.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	BookingCreated   Type = "booking.created"
	PaymentReceived  Type = "payment.received"
	BookingCancelled Type = "booking.cancelled"
	BookingMoved     Type = "booking.moved"
	SessionChanged   Type = "session.changed"
)

func (t Type) String() string {
	return string(t)
}

type Event struct {
	ID                uuid.UUID  `json:"id"`
	Type              Type       `json:"type"`
	BookingID         *uuid.UUID `json:"bookingId,omitempty"`
	SessionID         uuid.UUID  `json:"sessionId"`
	PreviousSessionID *uuid.UUID `json:"previousSessionId,omitempty"`
	AmountCents       *int64     `json:"amountCents,omitempty"`
	ClientEmail       string     `json:"clientEmail,omitempty"`
	OccurredAt        time.Time  `json:"occurredAt"`
}

func New(t Type, sessionID uuid.UUID, at time.Time) Event {
	return Event{ID: uuid.New(), Type: t, SessionID: sessionID, OccurredAt: at}
}

func (e Event) WithBooking(id uuid.UUID, email string) Event {
	e.BookingID = &id
	e.ClientEmail = email
	return e
}

func (e Event) WithAmount(cents int64) Event {
	e.AmountCents = &cents
	return e
}

func (e Event) MovedFrom(sessionID uuid.UUID) Event {
	e.PreviousSessionID = &sessionID
	return e
}

// SessionIDs lists every session whose availability the event touches.
func (e Event) SessionIDs() []uuid.UUID {
	if e.PreviousSessionID != nil && *e.PreviousSessionID != e.SessionID {
		return []uuid.UUID{e.SessionID, *e.PreviousSessionID}
	}
	return []uuid.UUID{e.SessionID}
}

// Publisher must not block the caller; delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, evs ...Event)
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...Event) {}
