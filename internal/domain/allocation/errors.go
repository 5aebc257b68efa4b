package allocation

import (
	"fmt"

	"canyon-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

type Reason string

const (
	ReasonGuideOccupied    Reason = "guide_occupied"
	ReasonCapacityExceeded Reason = "capacity_exceeded"
	ReasonSessionClosed    Reason = "session_closed"
	ReasonLockIntegrity    Reason = "lock_integrity"
	ReasonProductInUse     Reason = "product_in_use"
	ReasonNeedsSelection   Reason = "needs_product_selection"
)

// ConflictError is a refusal the caller can branch on.
type ConflictError struct {
	Reason  Reason
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Is(target error) bool {
	if target == errs.ErrConflict {
		return true
	}
	t, ok := target.(*ConflictError)
	return ok && t.Reason == e.Reason
}

var (
	ErrGuideOccupied    = &ConflictError{Reason: ReasonGuideOccupied, Message: "guide occupied with another activity"}
	ErrCapacityExceeded = &ConflictError{Reason: ReasonCapacityExceeded, Message: "capacity exceeded"}
	ErrSessionClosed    = &ConflictError{Reason: ReasonSessionClosed, Message: "session is not open for bookings"}
	ErrLockIntegrity    = &ConflictError{Reason: ReasonLockIntegrity, Message: "locked product is no longer offered by the session"}
	ErrProductInUse     = &ConflictError{Reason: ReasonProductInUse, Message: "product still holds active bookings in this session"}
)

func lockIntegrityError(productID uuid.UUID) error {
	return &ConflictError{
		Reason:  ReasonLockIntegrity,
		Message: fmt.Sprintf("locked product %s is no longer offered by the session", productID),
	}
}
