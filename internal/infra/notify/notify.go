// Package notify turns consumed booking events into client emails and staff
// notifications.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"canyon-booking/internal/pkg/errs"
	"canyon-booking/internal/usecase/events"
	"canyon-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

// Sender is the email and real-time notification collaborator. Each call gets a
// fully hydrated booking.
type Sender interface {
	SendBookingConfirmation(ctx context.Context, b *queries.BookingDetailView) error
	SendPaymentConfirmation(ctx context.Context, b *queries.BookingDetailView, amountCents int64) error
	NotifyAdmins(ctx context.Context, ev events.Event) error
}

// LogSender writes what would be sent. It stands in until a mail provider is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendBookingConfirmation(ctx context.Context, b *queries.BookingDetailView) error {
	s.logger.InfoContext(ctx, "booking confirmation",
		"booking_id", b.ID, "to", b.Email, "product", b.Product.Name,
		"date", b.Session.Date, "start_time", b.Session.StartTime, "people", b.NumberOfPeople)
	return nil
}

func (s *LogSender) SendPaymentConfirmation(ctx context.Context, b *queries.BookingDetailView, amountCents int64) error {
	s.logger.InfoContext(ctx, "payment confirmation",
		"booking_id", b.ID, "to", b.Email, "amount_cents", amountCents, "paid_cents", b.AmountPaid, "total_cents", b.TotalPrice)
	return nil
}

func (s *LogSender) NotifyAdmins(ctx context.Context, ev events.Event) error {
	s.logger.InfoContext(ctx, "admin notification", "type", ev.Type.String(), "session_id", ev.SessionID, "event_id", ev.ID)
	return nil
}

// Notifier routes events to the sender. Events about bookings that no longer
// exist are dropped.
type Notifier struct {
	bookings queries.BookingQueries
	sender   Sender
}

func NewNotifier(bookings queries.BookingQueries, sender Sender) *Notifier {
	return &Notifier{bookings: bookings, sender: sender}
}

func (n *Notifier) Handle(ctx context.Context, ev events.Event) error {
	if err := n.sender.NotifyAdmins(ctx, ev); err != nil {
		return err
	}
	if ev.BookingID == nil {
		return nil
	}

	switch ev.Type {
	case events.BookingCreated, events.BookingMoved:
		b, err := n.booking(ctx, *ev.BookingID)
		if err != nil || b == nil {
			return err
		}
		return n.sender.SendBookingConfirmation(ctx, b)
	case events.PaymentReceived:
		b, err := n.booking(ctx, *ev.BookingID)
		if err != nil || b == nil {
			return err
		}
		var amount int64
		if ev.AmountCents != nil {
			amount = *ev.AmountCents
		}
		return n.sender.SendPaymentConfirmation(ctx, b, amount)
	default:
		return nil
	}
}

func (n *Notifier) booking(ctx context.Context, id uuid.UUID) (*queries.BookingDetailView, error) {
	b, err := n.bookings.Get(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	return b, err
}
