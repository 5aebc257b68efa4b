package allocation

import (
	"bytes"

	"github.com/google/uuid"
)

// ResolveLock returns the product a magic-rotation slot is committed to: the product
// of its earliest active booking. Ties on creation time fall back to booking id order.
func ResolveLock(s Slot) (uuid.UUID, bool) {
	return resolveLock(s, uuid.Nil)
}

func resolveLock(s Slot, exclude uuid.UUID) (uuid.UUID, bool) {
	if !s.IsMagicRotation {
		return uuid.Nil, false
	}
	first, ok := earliest(s.activeOccupants(exclude))
	if !ok {
		return uuid.Nil, false
	}
	return first.ProductID, true
}

func earliest(occupants []Occupant) (Occupant, bool) {
	if len(occupants) == 0 {
		return Occupant{}, false
	}
	first := occupants[0]
	for _, o := range occupants[1:] {
		if createdBefore(o, first) {
			first = o
		}
	}
	return first, true
}

func createdBefore(a, b Occupant) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.BookingID[:], b.BookingID[:]) < 0
}

// checkLock fails when a lock exists that points outside the slot's products
// (integrity violation) or at a product other than productID.
func checkLock(s Slot, productID, exclude uuid.UUID) error {
	locked, ok := resolveLock(s, exclude)
	if !ok {
		return nil
	}
	if _, linked := s.Product(locked); !linked {
		return lockIntegrityError(locked)
	}
	if locked != productID {
		return ErrGuideOccupied
	}
	return nil
}
