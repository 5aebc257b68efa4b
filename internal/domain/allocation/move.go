package allocation

import (
	"canyon-booking/internal/domain/product"

	"github.com/google/uuid"
)

// MoveTarget is the outcome of target product resolution for a move.
type MoveTarget struct {
	ProductID uuid.UUID
	// NeedsSelection is set when the slot is empty, offers several products and the
	// caller did not choose one. Candidates lists the choices; nothing must change.
	NeedsSelection bool
	Candidates     []product.Effective
}

// ResolveMoveTarget picks the product a booking lands on in the target slot:
//  1. the dominant product of the slot's active bookings, mandatory when present
//  2. the caller's choice, which must be offered by the slot
//  3. the only product of the slot
//  4. otherwise a selection is needed
//
// moving is excluded from the slot's bookings so a move within the same session
// does not count itself.
func ResolveMoveTarget(target Slot, moving uuid.UUID, requested *uuid.UUID) (MoveTarget, error) {
	if dominant, ok := DominantProduct(target, moving); ok {
		if _, linked := target.Product(dominant); !linked {
			return MoveTarget{}, lockIntegrityError(dominant)
		}
		return MoveTarget{ProductID: dominant}, nil
	}

	if requested != nil {
		if _, ok := target.Product(*requested); !ok {
			return MoveTarget{}, product.ErrProductMissingLink
		}
		return MoveTarget{ProductID: *requested}, nil
	}

	if len(target.Products) == 1 {
		return MoveTarget{ProductID: target.Products[0].ID}, nil
	}

	return MoveTarget{NeedsSelection: true, Candidates: target.Products}, nil
}

// DominantProduct is the product with the most active bookings. Ties go to the
// product of the earliest-created booking among the tied products.
func DominantProduct(s Slot, exclude uuid.UUID) (uuid.UUID, bool) {
	active := s.activeOccupants(exclude)
	if len(active) == 0 {
		return uuid.Nil, false
	}

	counts := make(map[uuid.UUID]int)
	firstSeen := make(map[uuid.UUID]Occupant)
	for _, o := range active {
		counts[o.ProductID]++
		if prev, ok := firstSeen[o.ProductID]; !ok || createdBefore(o, prev) {
			firstSeen[o.ProductID] = o
		}
	}

	var (
		best      uuid.UUID
		bestCount int
		bestFirst Occupant
	)
	for id, n := range counts {
		first := firstSeen[id]
		if n > bestCount || (n == bestCount && createdBefore(first, bestFirst)) {
			best, bestCount, bestFirst = id, n, first
		}
	}
	return best, true
}
