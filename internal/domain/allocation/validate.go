package allocation

import (
	"errors"

	"github.com/google/uuid"
)

// Validate checks a slot as a whole: the lock points at an offered product, a
// rotation slot holds a single product, and no product is over capacity. Used
// after a session is edited, when the bookings stay put but the offer changes.
func Validate(s Slot) error {
	active := s.activeOccupants(uuid.Nil)
	for _, o := range active {
		if _, ok := s.Product(o.ProductID); !ok {
			return ErrProductInUse
		}
	}

	if locked, ok := ResolveLock(s); ok {
		for _, o := range active {
			if o.ProductID != locked {
				return ErrGuideOccupied
			}
		}
	}

	for _, p := range s.Products {
		if Occupancy(s, p.ID, uuid.Nil) > p.MaxCapacity {
			return ErrCapacityExceeded
		}
	}
	return nil
}

// Outcome names the result of an allocation attempt for metrics.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var ce *ConflictError
	if errors.As(err, &ce) {
		return string(ce.Reason)
	}
	return "error"
}
