package booking

import (
	"fmt"
	"time"

	"canyon-booking/internal/domain/money"
	"canyon-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound  = errs.Class("booking not found", errs.ErrNotFound)
	ErrInvalidPeople    = errs.Class("number of people must be at least 1", errs.ErrValidation)
	ErrBookingCancelled = errs.Class("booking is cancelled", errs.ErrConflict)
)

type Booking struct {
	id                        uuid.UUID
	sessionID                 uuid.UUID
	productID                 uuid.UUID
	resellerID                *uuid.UUID
	client                    Client
	numberOfPeople            int
	totalPrice                money.Money
	amountPaid                money.Money
	status                    Status
	participantsFormCompleted bool
	productDetailsSent        bool
	createdAt                 time.Time
	updatedAt                 time.Time
}

type Params struct {
	SessionID      uuid.UUID
	ProductID      uuid.UUID
	ResellerID     *uuid.UUID
	Client         Client
	NumberOfPeople int
	TotalPrice     money.Money
	AmountPaid     money.Money
}

// NewBooking starts confirmed when the initial amount already covers the price.
func NewBooking(p Params, now time.Time) (*Booking, error) {
	if p.NumberOfPeople < 1 {
		return nil, ErrInvalidPeople
	}
	b := &Booking{
		id:             uuid.New(),
		sessionID:      p.SessionID,
		productID:      p.ProductID,
		resellerID:     p.ResellerID,
		client:         p.Client,
		numberOfPeople: p.NumberOfPeople,
		totalPrice:     p.TotalPrice,
		amountPaid:     p.AmountPaid,
		createdAt:      now,
		updatedAt:      now,
	}
	b.status = b.paymentStatus()
	return b, nil
}

type Snapshot struct {
	ID                        uuid.UUID
	SessionID                 uuid.UUID
	ProductID                 uuid.UUID
	ResellerID                *uuid.UUID
	Client                    Client
	NumberOfPeople            int
	TotalPrice                money.Money
	AmountPaid                money.Money
	Status                    Status
	ParticipantsFormCompleted bool
	ProductDetailsSent        bool
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

func Reconstruct(s Snapshot) *Booking {
	return &Booking{
		id:                        s.ID,
		sessionID:                 s.SessionID,
		productID:                 s.ProductID,
		resellerID:                s.ResellerID,
		client:                    s.Client,
		numberOfPeople:            s.NumberOfPeople,
		totalPrice:                s.TotalPrice,
		amountPaid:                s.AmountPaid,
		status:                    s.Status,
		participantsFormCompleted: s.ParticipantsFormCompleted,
		productDetailsSent:        s.ProductDetailsSent,
		createdAt:                 s.CreatedAt,
		updatedAt:                 s.UpdatedAt,
	}
}

func (b *Booking) Snapshot() Snapshot {
	return Snapshot{
		ID:                        b.id,
		SessionID:                 b.sessionID,
		ProductID:                 b.productID,
		ResellerID:                b.resellerID,
		Client:                    b.client,
		NumberOfPeople:            b.numberOfPeople,
		TotalPrice:                b.totalPrice,
		AmountPaid:                b.amountPaid,
		Status:                    b.status,
		ParticipantsFormCompleted: b.participantsFormCompleted,
		ProductDetailsSent:        b.productDetailsSent,
		CreatedAt:                 b.createdAt,
		UpdatedAt:                 b.updatedAt,
	}
}

func (b *Booking) ID() uuid.UUID                   { return b.id }
func (b *Booking) SessionID() uuid.UUID            { return b.sessionID }
func (b *Booking) ProductID() uuid.UUID            { return b.productID }
func (b *Booking) ResellerID() *uuid.UUID          { return b.resellerID }
func (b *Booking) Client() Client                  { return b.client }
func (b *Booking) NumberOfPeople() int             { return b.numberOfPeople }
func (b *Booking) TotalPrice() money.Money         { return b.totalPrice }
func (b *Booking) AmountPaid() money.Money         { return b.amountPaid }
func (b *Booking) Status() Status                  { return b.status }
func (b *Booking) ParticipantsFormCompleted() bool { return b.participantsFormCompleted }
func (b *Booking) ProductDetailsSent() bool        { return b.productDetailsSent }
func (b *Booking) CreatedAt() time.Time            { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time            { return b.updatedAt }

func (b *Booking) IsActive() bool {
	return b.status != StatusCancelled
}

func (b *Booking) paymentStatus() Status {
	if b.amountPaid.GreaterOrEqual(b.totalPrice) {
		return StatusConfirmed
	}
	return StatusPending
}

// ApplyPayment adds to the running total and re-derives the payment status.
func (b *Booking) ApplyPayment(p Payment, now time.Time) error {
	if !b.IsActive() {
		return ErrBookingCancelled
	}
	b.amountPaid = b.amountPaid.Add(p.Amount)
	b.status = b.paymentStatus()
	b.updatedAt = now
	return nil
}

// Cancel reports false when the booking was already cancelled; nothing changes in that case.
func (b *Booking) Cancel(now time.Time) bool {
	if !b.IsActive() {
		return false
	}
	b.status = StatusCancelled
	b.updatedAt = now
	return true
}

type Relocation struct {
	SessionID uuid.UUID
	ProductID uuid.UUID
	// UnitPrice is the per-person price of the target product.
	UnitPrice money.Money
}

// MoveTo relocates the booking. The price is recomputed only when the product changes.
// The returned text describes the change for the history log.
func (b *Booking) MoveTo(r Relocation, now time.Time) (string, error) {
	if !b.IsActive() {
		return "", ErrBookingCancelled
	}
	details := fmt.Sprintf("moved from session %s to session %s", b.sessionID, r.SessionID)
	if r.ProductID != b.productID {
		newTotal := r.UnitPrice.Times(b.numberOfPeople)
		details += fmt.Sprintf("; product %s -> %s; price %s -> %s", b.productID, r.ProductID, b.totalPrice, newTotal)
		b.productID = r.ProductID
		b.totalPrice = newTotal
	}
	b.sessionID = r.SessionID
	b.updatedAt = now
	return details, nil
}

func (b *Booking) MarkParticipantsCompleted(completed bool, now time.Time) {
	b.participantsFormCompleted = completed
	b.updatedAt = now
}
