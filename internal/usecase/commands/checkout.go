package commands

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"

	"canyon-booking/internal/domain/allocation"
	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/money"
	"canyon-booking/internal/pkg/clock"
	"canyon-booking/internal/pkg/errs"
	"canyon-booking/internal/usecase/events"
	"canyon-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	checkoutProvider  = "checkout"
	checkoutCompleted = "checkout.completed"
)

var (
	ErrInvalidSignature = errs.Class("invalid webhook signature", errs.ErrUnauthenticated)
	ErrMalformedEvent   = errs.Class("malformed webhook event", errs.ErrValidation)
)

// CheckoutEvent is the processor's notification body. Exactly one of BookingID and
// Metadata is expected on a completed checkout.
type CheckoutEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		AmountTotal int64             `json:"amountTotal"`
		BookingID   *uuid.UUID        `json:"bookingId,omitempty"`
		Metadata    *CheckoutMetadata `json:"metadata,omitempty"`
	} `json:"data"`
}

// CheckoutMetadata describes a booking paid before it exists.
type CheckoutMetadata struct {
	SessionID      uuid.UUID  `json:"sessionId"`
	ProductID      uuid.UUID  `json:"productId"`
	ResellerID     *uuid.UUID `json:"resellerId,omitempty"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Nationality    string     `json:"nationality"`
	NumberOfPeople int        `json:"numberOfPeople"`
	TotalPrice     *int64     `json:"totalPrice,omitempty"`
}

type CheckoutOutcome string

const (
	CheckoutBookingCreated CheckoutOutcome = "booking_created"
	CheckoutPaymentApplied CheckoutOutcome = "payment_applied"
	CheckoutDuplicate      CheckoutOutcome = "duplicate"
	CheckoutIgnored        CheckoutOutcome = "ignored"
)

type CheckoutResult struct {
	Outcome CheckoutOutcome
	Booking *booking.Booking
}

type CheckoutCommands interface {
	HandleCheckout(ctx context.Context, payload []byte, signature string) (*CheckoutResult, error)
}

type checkoutUseCaseImpl struct {
	uow       shared.UnitOfWork
	clock     clock.Clock
	publisher events.Publisher
	metrics   AllocationRecorder
	secret    []byte
}

func NewCheckoutUseCase(uow shared.UnitOfWork, clk clock.Clock, publisher events.Publisher, metrics AllocationRecorder, secret string) CheckoutCommands {
	return &checkoutUseCaseImpl{uow: uow, clock: clk, publisher: publisher, metrics: metrics, secret: []byte(secret)}
}

// Sign returns the hex HMAC-SHA256 of payload, as sent in the signature header.
func Sign(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (uc *checkoutUseCaseImpl) verify(payload []byte, signature string) bool {
	if len(uc.secret) == 0 {
		return false
	}
	expected := Sign(uc.secret, payload)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}

// HandleCheckout applies a completed checkout exactly once per event id. A
// metadata checkout goes through the same admission path as an interactive create.
func (uc *checkoutUseCaseImpl) HandleCheckout(ctx context.Context, payload []byte, signature string) (*CheckoutResult, error) {
	if !uc.verify(payload, signature) {
		return nil, ErrInvalidSignature
	}

	var ev CheckoutEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, errs.Wrap(ErrMalformedEvent, err.Error())
	}
	if ev.ID == "" {
		return nil, ErrMalformedEvent
	}
	if ev.Type != checkoutCompleted {
		slog.InfoContext(ctx, "checkout event ignored", "event_id", ev.ID, "type", ev.Type)
		return &CheckoutResult{Outcome: CheckoutIgnored}, nil
	}

	amount, err := money.FromCents(ev.Data.AmountTotal)
	if err != nil {
		return nil, err
	}

	switch {
	case ev.Data.BookingID != nil:
		return uc.applyPayment(ctx, ev.ID, *ev.Data.BookingID, amount)
	case ev.Data.Metadata != nil:
		in, err := ev.Data.Metadata.toInput(amount)
		if err != nil {
			return nil, err
		}
		return uc.createBooking(ctx, ev.ID, in)
	default:
		return nil, errs.Wrap(ErrMalformedEvent, "neither bookingId nor metadata")
	}
}

func (m CheckoutMetadata) toInput(amount money.Money) (CreateBookingInput, error) {
	client, err := booking.NewClient(m.FirstName, m.LastName, m.Email, m.Phone, m.Nationality)
	if err != nil {
		return CreateBookingInput{}, err
	}
	in := CreateBookingInput{
		SessionID:      m.SessionID,
		ProductID:      m.ProductID,
		ResellerID:     m.ResellerID,
		Client:         client,
		NumberOfPeople: m.NumberOfPeople,
		InitialAmount:  amount,
		PaymentMethod:  booking.MethodCheckout,
	}
	if m.TotalPrice != nil {
		total, err := money.FromCents(*m.TotalPrice)
		if err != nil {
			return CreateBookingInput{}, err
		}
		in.TotalPrice = &total
	}
	return in, nil
}

func (uc *checkoutUseCaseImpl) createBooking(ctx context.Context, eventID string, in CreateBookingInput) (*CheckoutResult, error) {
	var result *CheckoutResult
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		fresh, err := tx.WebhookEvents().MarkProcessed(ctx, tx.DB(), checkoutProvider, eventID, uc.clock.Now())
		if err != nil {
			return err
		}
		if !fresh {
			result = &CheckoutResult{Outcome: CheckoutDuplicate}
			return nil
		}
		b, err := createBooking(ctx, tx, in, uc.clock.Now())
		if err != nil {
			return err
		}
		result = &CheckoutResult{Outcome: CheckoutBookingCreated, Booking: b}
		return nil
	})
	uc.metrics.RecordAllocation(opCheckout, allocation.Outcome(err))
	if err != nil {
		return nil, err
	}

	if result.Booking != nil {
		uc.publisher.Publish(ctx, createdEvents(result.Booking, in.InitialAmount, uc.clock.Now())...)
	}
	return result, nil
}

func (uc *checkoutUseCaseImpl) applyPayment(ctx context.Context, eventID string, bookingID uuid.UUID, amount money.Money) (*CheckoutResult, error) {
	var result *CheckoutResult
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		fresh, err := tx.WebhookEvents().MarkProcessed(ctx, tx.DB(), checkoutProvider, eventID, uc.clock.Now())
		if err != nil {
			return err
		}
		if !fresh {
			result = &CheckoutResult{Outcome: CheckoutDuplicate}
			return nil
		}
		b, err := payBooking(ctx, tx, bookingID, PaymentInput{Amount: amount, Method: booking.MethodCheckout, Notes: "event " + eventID}, uc.clock.Now())
		if err != nil {
			return err
		}
		result = &CheckoutResult{Outcome: CheckoutPaymentApplied, Booking: b}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Booking != nil {
		b := result.Booking
		uc.publisher.Publish(ctx, events.New(events.PaymentReceived, b.SessionID(), uc.clock.Now()).
			WithBooking(b.ID(), b.Client().Email).
			WithAmount(amount.Cents()))
	}
	return result, nil
}
