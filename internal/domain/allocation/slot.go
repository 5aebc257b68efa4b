// Package allocation decides who may occupy a session: remaining capacity per
// product, the magic-rotation lock and the target product of a move.
// Every function here is pure; callers supply a consistent snapshot.
package allocation

import (
	"time"

	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/domain/session"

	"github.com/google/uuid"
)

// Occupant is the part of a booking that matters for capacity.
type Occupant struct {
	BookingID uuid.UUID
	ProductID uuid.UUID
	People    int
	Status    booking.Status
	CreatedAt time.Time
}

func (o Occupant) Active() bool {
	return o.Status != booking.StatusCancelled
}

// Slot is a session as seen by the allocator: its effective products in link
// order and every booking it holds, cancelled ones included.
type Slot struct {
	SessionID       uuid.UUID
	IsMagicRotation bool
	Open            bool
	Products        []product.Effective
	Occupants       []Occupant
}

// NewSlot merges each link's overrides onto its canonical product. Every linked
// product must be present in products.
func NewSlot(s *session.Session, products []*product.Product, bookings []*booking.Booking) (Slot, error) {
	canonical := make(map[uuid.UUID]*product.Product, len(products))
	for _, p := range products {
		canonical[p.ID()] = p
	}

	slot := Slot{
		SessionID:       s.ID(),
		IsMagicRotation: s.IsMagicRotation(),
		Open:            s.Status() == session.StatusOpen,
		Products:        make([]product.Effective, 0, len(s.Links())),
		Occupants:       make([]Occupant, 0, len(bookings)),
	}
	for _, l := range s.Links() {
		p, ok := canonical[l.ProductID]
		if !ok {
			return Slot{}, product.ErrProductNotFound
		}
		slot.Products = append(slot.Products, product.MergeOverrides(p.Effective(), l.Overrides))
	}
	for _, b := range bookings {
		slot.Occupants = append(slot.Occupants, OccupantOf(b))
	}
	return slot, nil
}

func OccupantOf(b *booking.Booking) Occupant {
	return Occupant{
		BookingID: b.ID(),
		ProductID: b.ProductID(),
		People:    b.NumberOfPeople(),
		Status:    b.Status(),
		CreatedAt: b.CreatedAt(),
	}
}

func (s Slot) Product(id uuid.UUID) (product.Effective, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return product.Effective{}, false
}

func (s Slot) activeOccupants(exclude uuid.UUID) []Occupant {
	out := make([]Occupant, 0, len(s.Occupants))
	for _, o := range s.Occupants {
		if o.Active() && o.BookingID != exclude {
			out = append(out, o)
		}
	}
	return out
}

// Headcount is the number of people held by active bookings across all products.
func (s Slot) Headcount() int {
	total := 0
	for _, o := range s.activeOccupants(uuid.Nil) {
		total += o.People
	}
	return total
}

func (s Slot) HasActiveBookings() bool {
	return len(s.activeOccupants(uuid.Nil)) > 0
}
