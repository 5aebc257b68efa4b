package commands

import (
	"context"

	"canyon-booking/internal/domain/allocation"
	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/domain/session"
	"canyon-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

// AllocationRecorder counts allocation attempts by operation and outcome.
type AllocationRecorder interface {
	RecordAllocation(operation, outcome string)
}

type NopRecorder struct{}

func (NopRecorder) RecordAllocation(string, string) {}

const (
	opCreate        = "create"
	opMove          = "move"
	opPayment       = "payment"
	opCancel        = "cancel"
	opSessionUpdate = "session_update"
	opSessionDelete = "session_delete"
	opCheckout      = "checkout"
)

// loadSlot reads the slot of a session inside the caller's transaction. The
// session row must already be locked for the result to be stable.
func loadSlot(ctx context.Context, tx shared.Tx, s *session.Session) (allocation.Slot, error) {
	products, err := tx.Products().FindByIDs(ctx, tx.DB(), s.ProductIDs())
	if err != nil {
		return allocation.Slot{}, err
	}
	bookings, err := tx.Bookings().ListBySession(ctx, tx.DB(), s.ID())
	if err != nil {
		return allocation.Slot{}, err
	}
	return allocation.NewSlot(s, products, bookings)
}

func activeBookings(bs []*booking.Booking) []*booking.Booking {
	out := make([]*booking.Booking, 0, len(bs))
	for _, b := range bs {
		if b.IsActive() {
			out = append(out, b)
		}
	}
	return out
}

// requireProducts fails unless every id names an existing product.
func requireProducts(ctx context.Context, tx shared.Tx, links []session.Link) error {
	ids := make([]uuid.UUID, len(links))
	for i, l := range links {
		ids[i] = l.ProductID
	}
	found, err := tx.Products().FindByIDs(ctx, tx.DB(), ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return product.ErrProductNotFound
	}
	return nil
}
