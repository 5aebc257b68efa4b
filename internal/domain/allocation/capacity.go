package allocation

import "github.com/google/uuid"

// Occupancy sums the people of active bookings of productID, ignoring the booking
// identified by exclude (uuid.Nil excludes nothing).
func Occupancy(s Slot, productID, exclude uuid.UUID) int {
	total := 0
	for _, o := range s.activeOccupants(exclude) {
		if o.ProductID == productID {
			total += o.People
		}
	}
	return total
}

// AvailableCapacity is max(0, maxCapacity - occupancy) for a product of the slot.
// An unknown product has no capacity.
func AvailableCapacity(s Slot, productID uuid.UUID) int {
	return AvailableCapacityExcluding(s, productID, uuid.Nil)
}

func AvailableCapacityExcluding(s Slot, productID, exclude uuid.UUID) int {
	p, ok := s.Product(productID)
	if !ok {
		return 0
	}
	return max(0, p.MaxCapacity-Occupancy(s, productID, exclude))
}
