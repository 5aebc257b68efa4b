package allocation

import (
	"canyon-booking/internal/domain/product"

	"github.com/google/uuid"
)

// Admit checks whether people more seats of productID fit in the slot, in order:
// product offered, session open, rotation lock, capacity.
func Admit(s Slot, productID uuid.UUID, people int) (product.Effective, error) {
	return admit(s, productID, people, uuid.Nil)
}

// AdmitMove is Admit for a booking already counted somewhere, possibly in this slot.
func AdmitMove(s Slot, productID uuid.UUID, people int, moving uuid.UUID) (product.Effective, error) {
	return admit(s, productID, people, moving)
}

func admit(s Slot, productID uuid.UUID, people int, exclude uuid.UUID) (product.Effective, error) {
	p, ok := s.Product(productID)
	if !ok {
		return product.Effective{}, product.ErrProductMissingLink
	}
	if !s.Open {
		return product.Effective{}, ErrSessionClosed
	}
	if err := checkLock(s, productID, exclude); err != nil {
		return product.Effective{}, err
	}
	if Occupancy(s, productID, exclude)+people > p.MaxCapacity {
		return product.Effective{}, ErrCapacityExceeded
	}
	return p, nil
}

// ProductAvailability is one product of a slot as shown to a reader.
type ProductAvailability struct {
	Product   product.Effective
	Occupied  int
	Available int
	Locked    bool
	// Blocked is set when another product holds the rotation lock.
	Blocked *ConflictError
}

// Evaluate reports every product of the slot. When a lock is active, products other
// than the locked one report zero availability.
func Evaluate(s Slot) ([]ProductAvailability, error) {
	locked, hasLock := ResolveLock(s)
	if hasLock {
		if _, ok := s.Product(locked); !ok {
			return nil, lockIntegrityError(locked)
		}
	}

	out := make([]ProductAvailability, 0, len(s.Products))
	for _, p := range s.Products {
		pa := ProductAvailability{
			Product:  p,
			Occupied: Occupancy(s, p.ID, uuid.Nil),
		}
		if hasLock && p.ID != locked {
			pa.Blocked = ErrGuideOccupied
		} else {
			pa.Locked = hasLock
			pa.Available = AvailableCapacity(s, p.ID)
		}
		out = append(out, pa)
	}
	return out, nil
}

// Hosts returns the products of the slot able to take headcount more people,
// honoring the rotation lock.
func Hosts(s Slot, headcount int) ([]product.Effective, error) {
	evaluated, err := Evaluate(s)
	if err != nil {
		return nil, err
	}
	var out []product.Effective
	for _, pa := range evaluated {
		if pa.Blocked == nil && pa.Available >= headcount {
			out = append(out, pa.Product)
		}
	}
	return out, nil
}
