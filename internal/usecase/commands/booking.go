package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"canyon-booking/internal/domain/allocation"
	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/money"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/domain/user"
	"canyon-booking/internal/pkg/clock"
	"canyon-booking/internal/pkg/errs"
	"canyon-booking/internal/usecase/events"
	"canyon-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrHardDeleteForbidden = errs.Class("only administrators may delete bookings", errs.ErrForbidden)

type CreateBookingInput struct {
	SessionID      uuid.UUID
	ProductID      uuid.UUID
	ResellerID     *uuid.UUID
	Client         booking.Client
	NumberOfPeople int
	// TotalPrice defaults to the effective unit price times the headcount.
	TotalPrice    *money.Money
	InitialAmount money.Money
	PaymentMethod string
	PaymentNotes  string
}

type MoveBookingInput struct {
	TargetSessionID uuid.UUID
	ProductID       *uuid.UUID
}

// MoveResult carries either the moved booking or, when the target session cannot
// pick a product on its own, the candidates to choose from.
type MoveResult struct {
	Booking        *booking.Booking
	NeedsSelection bool
	Candidates     []product.Effective
}

type PaymentInput struct {
	Amount money.Money
	Method string
	Notes  string
}

type ParticipantInput struct {
	Name       string
	Age        *int
	HeightCm   *int
	WeightKg   *int
	ShoeRental bool
	ShoeSize   *string
}

type BookingCommands interface {
	Create(ctx context.Context, in CreateBookingInput) (*booking.Booking, error)
	Move(ctx context.Context, bookingID uuid.UUID, in MoveBookingInput) (*MoveResult, error)
	ApplyPayment(ctx context.Context, bookingID uuid.UUID, in PaymentInput) (*booking.Booking, error)
	Cancel(ctx context.Context, bookingID uuid.UUID) (*booking.Booking, error)
	ReplaceParticipants(ctx context.Context, bookingID uuid.UUID, in []ParticipantInput) (*booking.Booking, error)
	Delete(ctx context.Context, principal user.Principal, bookingID uuid.UUID) error
}

type bookingUseCaseImpl struct {
	uow       shared.UnitOfWork
	clock     clock.Clock
	publisher events.Publisher
	metrics   AllocationRecorder
}

func NewBookingUseCase(uow shared.UnitOfWork, clk clock.Clock, publisher events.Publisher, metrics AllocationRecorder) BookingCommands {
	return &bookingUseCaseImpl{uow: uow, clock: clk, publisher: publisher, metrics: metrics}
}

func (uc *bookingUseCaseImpl) Create(ctx context.Context, in CreateBookingInput) (*booking.Booking, error) {
	var created *booking.Booking
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := createBooking(ctx, tx, in, uc.clock.Now())
		if err != nil {
			return err
		}
		created = b
		return nil
	})
	uc.metrics.RecordAllocation(opCreate, allocation.Outcome(err))
	if err != nil {
		return nil, err
	}

	uc.publisher.Publish(ctx, createdEvents(created, in.InitialAmount, uc.clock.Now())...)
	return created, nil
}

// createBooking runs the full admission path inside tx: lock the session, re-read
// its occupancy, admit, then write the booking with its history and optional
// initial payment.
func createBooking(ctx context.Context, tx shared.Tx, in CreateBookingInput, now time.Time) (*booking.Booking, error) {
	s, err := tx.Sessions().LockByID(ctx, tx.DB(), in.SessionID)
	if err != nil {
		return nil, err
	}
	slot, err := loadSlot(ctx, tx, s)
	if err != nil {
		return nil, err
	}
	p, err := allocation.Admit(slot, in.ProductID, in.NumberOfPeople)
	if err != nil {
		return nil, err
	}

	total := p.PriceIndividual.Times(in.NumberOfPeople)
	if in.TotalPrice != nil {
		total = *in.TotalPrice
	}
	b, err := booking.NewBooking(booking.Params{
		SessionID:      s.ID(),
		ProductID:      p.ID,
		ResellerID:     in.ResellerID,
		Client:         in.Client,
		NumberOfPeople: in.NumberOfPeople,
		TotalPrice:     total,
	}, now)
	if err != nil {
		return nil, err
	}

	var payment *booking.Payment
	if !in.InitialAmount.IsZero() {
		pay, err := booking.NewPayment(b.ID(), in.InitialAmount, in.PaymentMethod, in.PaymentNotes, now)
		if err != nil {
			return nil, err
		}
		if err := b.ApplyPayment(pay, now); err != nil {
			return nil, err
		}
		payment = &pay
	}

	if err := tx.Bookings().Create(ctx, tx.DB(), b); err != nil {
		return nil, err
	}
	created := booking.NewHistoryEntry(b.ID(), booking.ActionCreated,
		fmt.Sprintf("%d people on %s, total %s", b.NumberOfPeople(), p.Name, b.TotalPrice()), now)
	if err := tx.Bookings().AddHistory(ctx, tx.DB(), created); err != nil {
		return nil, err
	}
	if payment != nil {
		if err := recordPayment(ctx, tx, *payment); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func recordPayment(ctx context.Context, tx shared.Tx, p booking.Payment) error {
	if err := tx.Bookings().AddPayment(ctx, tx.DB(), p); err != nil {
		return err
	}
	details := fmt.Sprintf("payment of %s via %s", p.Amount, p.Method)
	return tx.Bookings().AddHistory(ctx, tx.DB(), booking.NewHistoryEntry(p.BookingID, booking.ActionPayment, details, p.CreatedAt))
}

func createdEvents(b *booking.Booking, initial money.Money, now time.Time) []events.Event {
	out := []events.Event{events.New(events.BookingCreated, b.SessionID(), now).WithBooking(b.ID(), b.Client().Email)}
	if !initial.IsZero() {
		out = append(out, events.New(events.PaymentReceived, b.SessionID(), now).
			WithBooking(b.ID(), b.Client().Email).
			WithAmount(initial.Cents()))
	}
	return out
}

func (uc *bookingUseCaseImpl) Move(ctx context.Context, bookingID uuid.UUID, in MoveBookingInput) (*MoveResult, error) {
	var (
		result *MoveResult
		from   uuid.UUID
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().LockByID(ctx, tx.DB(), bookingID)
		if err != nil {
			return err
		}
		from = b.SessionID()
		result, err = moveBooking(ctx, tx, b, in, uc.clock.Now())
		return err
	})

	switch {
	case err != nil:
		uc.metrics.RecordAllocation(opMove, allocation.Outcome(err))
		return nil, err
	case result.NeedsSelection:
		uc.metrics.RecordAllocation(opMove, string(allocation.ReasonNeedsSelection))
		return result, nil
	}
	uc.metrics.RecordAllocation(opMove, allocation.Outcome(nil))

	moved := result.Booking
	uc.publisher.Publish(ctx, events.New(events.BookingMoved, moved.SessionID(), uc.clock.Now()).
		WithBooking(moved.ID(), moved.Client().Email).
		MovedFrom(from))
	return result, nil
}

// moveBooking relocates an already locked booking. Nothing is written when the
// target needs a product selection.
func moveBooking(ctx context.Context, tx shared.Tx, b *booking.Booking, in MoveBookingInput, now time.Time) (*MoveResult, error) {
	if !b.IsActive() {
		return nil, booking.ErrBookingCancelled
	}
	target, err := tx.Sessions().LockByID(ctx, tx.DB(), in.TargetSessionID)
	if err != nil {
		return nil, err
	}
	slot, err := loadSlot(ctx, tx, target)
	if err != nil {
		return nil, err
	}

	resolved, err := allocation.ResolveMoveTarget(slot, b.ID(), in.ProductID)
	if err != nil {
		return nil, err
	}
	if resolved.NeedsSelection {
		return &MoveResult{NeedsSelection: true, Candidates: resolved.Candidates}, nil
	}

	p, err := allocation.AdmitMove(slot, resolved.ProductID, b.NumberOfPeople(), b.ID())
	if err != nil {
		return nil, err
	}
	details, err := b.MoveTo(booking.Relocation{
		SessionID: target.ID(),
		ProductID: p.ID,
		UnitPrice: p.PriceIndividual,
	}, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Bookings().Update(ctx, tx.DB(), b); err != nil {
		return nil, err
	}
	if err := tx.Bookings().AddHistory(ctx, tx.DB(), booking.NewHistoryEntry(b.ID(), booking.ActionModified, details, now)); err != nil {
		return nil, err
	}
	return &MoveResult{Booking: b}, nil
}

func (uc *bookingUseCaseImpl) ApplyPayment(ctx context.Context, bookingID uuid.UUID, in PaymentInput) (*booking.Booking, error) {
	var paid *booking.Booking
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := payBooking(ctx, tx, bookingID, in, uc.clock.Now())
		if err != nil {
			return err
		}
		paid = b
		return nil
	})
	uc.metrics.RecordAllocation(opPayment, allocation.Outcome(err))
	if err != nil {
		return nil, err
	}

	uc.publisher.Publish(ctx, events.New(events.PaymentReceived, paid.SessionID(), uc.clock.Now()).
		WithBooking(paid.ID(), paid.Client().Email).
		WithAmount(in.Amount.Cents()))
	return paid, nil
}

func payBooking(ctx context.Context, tx shared.Tx, bookingID uuid.UUID, in PaymentInput, now time.Time) (*booking.Booking, error) {
	b, err := tx.Bookings().LockByID(ctx, tx.DB(), bookingID)
	if err != nil {
		return nil, err
	}
	p, err := booking.NewPayment(b.ID(), in.Amount, in.Method, in.Notes, now)
	if err != nil {
		return nil, err
	}
	if err := b.ApplyPayment(p, now); err != nil {
		return nil, err
	}
	if err := tx.Bookings().Update(ctx, tx.DB(), b); err != nil {
		return nil, err
	}
	if err := recordPayment(ctx, tx, p); err != nil {
		return nil, err
	}
	return b, nil
}

// Cancel is idempotent: a cancelled booking is returned unchanged and no history
// entry or event is produced.
func (uc *bookingUseCaseImpl) Cancel(ctx context.Context, bookingID uuid.UUID) (*booking.Booking, error) {
	var (
		b       *booking.Booking
		changed bool
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		b, err = tx.Bookings().LockByID(ctx, tx.DB(), bookingID)
		if err != nil {
			return err
		}
		now := uc.clock.Now()
		if changed = b.Cancel(now); !changed {
			return nil
		}
		if err := tx.Bookings().Update(ctx, tx.DB(), b); err != nil {
			return err
		}
		return tx.Bookings().AddHistory(ctx, tx.DB(), booking.NewHistoryEntry(b.ID(), booking.ActionCancelled, "booking cancelled", now))
	})
	uc.metrics.RecordAllocation(opCancel, allocation.Outcome(err))
	if err != nil {
		return nil, err
	}

	if changed {
		uc.publisher.Publish(ctx, events.New(events.BookingCancelled, b.SessionID(), uc.clock.Now()).WithBooking(b.ID(), b.Client().Email))
	} else {
		slog.DebugContext(ctx, "booking already cancelled", "booking_id", b.ID())
	}
	return b, nil
}

func (uc *bookingUseCaseImpl) ReplaceParticipants(ctx context.Context, bookingID uuid.UUID, in []ParticipantInput) (*booking.Booking, error) {
	var b *booking.Booking
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		b, err = tx.Bookings().LockByID(ctx, tx.DB(), bookingID)
		if err != nil {
			return err
		}

		roster := make([]booking.Participant, len(in))
		for i, p := range in {
			roster[i] = booking.NewParticipant(b.ID(), p.Name, p.Age, p.HeightCm, p.WeightKg, p.ShoeRental, p.ShoeSize)
		}
		complete, err := b.ValidateRoster(roster)
		if err != nil {
			return err
		}

		now := uc.clock.Now()
		b.MarkParticipantsCompleted(complete, now)
		if err := tx.Bookings().ReplaceParticipants(ctx, tx.DB(), b.ID(), roster); err != nil {
			return err
		}
		if err := tx.Bookings().Update(ctx, tx.DB(), b); err != nil {
			return err
		}
		details := fmt.Sprintf("%d participants submitted, complete: %t", len(roster), complete)
		return tx.Bookings().AddHistory(ctx, tx.DB(), booking.NewHistoryEntry(b.ID(), booking.ActionParticipants, details, now))
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (uc *bookingUseCaseImpl) Delete(ctx context.Context, principal user.Principal, bookingID uuid.UUID) error {
	if !principal.Role.CanHardDelete() {
		return ErrHardDeleteForbidden
	}

	var sessionID uuid.UUID
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().LockByID(ctx, tx.DB(), bookingID)
		if err != nil {
			return err
		}
		sessionID = b.SessionID()
		return tx.Bookings().Delete(ctx, tx.DB(), b.ID())
	})
	if err != nil {
		return err
	}

	uc.publisher.Publish(ctx, events.New(events.SessionChanged, sessionID, uc.clock.Now()))
	return nil
}
