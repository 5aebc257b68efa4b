package booking

import (
	"strings"
	"time"

	"canyon-booking/internal/domain/money"
	"canyon-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInvalidPaymentAmount = errs.Class("payment amount must be positive", errs.ErrValidation)
	ErrMissingPaymentMethod = errs.Class("payment method is required", errs.ErrValidation)
)

const MethodCheckout = "checkout"

type Payment struct {
	ID        uuid.UUID
	BookingID uuid.UUID
	Amount    money.Money
	Method    string
	Notes     string
	CreatedAt time.Time
}

func NewPayment(bookingID uuid.UUID, amount money.Money, method, notes string, now time.Time) (Payment, error) {
	if amount.IsZero() {
		return Payment{}, ErrInvalidPaymentAmount
	}
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		return Payment{}, ErrMissingPaymentMethod
	}
	return Payment{
		ID:        uuid.New(),
		BookingID: bookingID,
		Amount:    amount,
		Method:    method,
		Notes:     strings.TrimSpace(notes),
		CreatedAt: now,
	}, nil
}

// HistoryEntry is one append-only audit record of a booking.
type HistoryEntry struct {
	ID        uuid.UUID
	BookingID uuid.UUID
	Action    Action
	Details   string
	CreatedAt time.Time
}

func NewHistoryEntry(bookingID uuid.UUID, action Action, details string, now time.Time) HistoryEntry {
	return HistoryEntry{
		ID:        uuid.New(),
		BookingID: bookingID,
		Action:    action,
		Details:   details,
		CreatedAt: now,
	}
}
