package commands

import (
	"context"
	"fmt"
	"strings"

	"canyon-booking/internal/domain/allocation"
	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/session"
	"canyon-booking/internal/domain/user"
	"canyon-booking/internal/pkg/clock"
	"canyon-booking/internal/pkg/errs"
	"canyon-booking/internal/usecase/events"
	"canyon-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrInvalidDeleteAction    = errs.Class("action must be delete or move", errs.ErrValidation)
	ErrMissingTargetSession   = errs.Class("targetSessionId is required to move bookings", errs.ErrValidation)
	ErrTargetIsSameSession    = errs.Class("target session must differ from the deleted session", errs.ErrValidation)
	ErrTargetProductAmbiguous = errs.Class("target session offers several products; targetProductId is required", errs.ErrValidation)
)

// SessionHasBookingsError refuses to delete a populated session without an
// explicit action. It lists the bookings the caller must decide about.
type SessionHasBookingsError struct {
	Bookings []*booking.Booking
}

func (e *SessionHasBookingsError) Error() string {
	return fmt.Sprintf("session has %d active bookings; choose action delete or move", len(e.Bookings))
}

func (e *SessionHasBookingsError) Is(target error) bool {
	return target == errs.ErrConflict
}

type DeleteAction string

const (
	DeleteActionNone   DeleteAction = ""
	DeleteActionDelete DeleteAction = "delete"
	DeleteActionMove   DeleteAction = "move"
)

func ParseDeleteAction(s string) (DeleteAction, error) {
	switch a := DeleteAction(strings.ToLower(strings.TrimSpace(s))); a {
	case DeleteActionNone, DeleteActionDelete, DeleteActionMove:
		return a, nil
	default:
		return "", ErrInvalidDeleteAction
	}
}

type CreateSessionInput struct {
	Params session.Params
	// GuideID lets administrative roles publish on behalf of another guide.
	GuideID *uuid.UUID
}

type DeleteSessionInput struct {
	Action          DeleteAction
	TargetSessionID *uuid.UUID
	TargetProductID *uuid.UUID
}

type DeleteSessionResult struct {
	DeletedBookings int
	MovedBookings   []*booking.Booking
}

type SessionCommands interface {
	Create(ctx context.Context, principal user.Principal, in CreateSessionInput) (*session.Session, error)
	Update(ctx context.Context, principal user.Principal, id uuid.UUID, patch session.Patch) (*session.Session, error)
	Delete(ctx context.Context, principal user.Principal, id uuid.UUID, in DeleteSessionInput) (*DeleteSessionResult, error)
}

type sessionUseCaseImpl struct {
	uow       shared.UnitOfWork
	clock     clock.Clock
	publisher events.Publisher
	metrics   AllocationRecorder
}

func NewSessionUseCase(uow shared.UnitOfWork, clk clock.Clock, publisher events.Publisher, metrics AllocationRecorder) SessionCommands {
	return &sessionUseCaseImpl{uow: uow, clock: clk, publisher: publisher, metrics: metrics}
}

func (uc *sessionUseCaseImpl) Create(ctx context.Context, principal user.Principal, in CreateSessionInput) (*session.Session, error) {
	if !principal.Role.CanCreateSessions() {
		return nil, session.ErrTraineeCannotCreate
	}

	params := in.Params
	params.GuideID = principal.ID
	if in.GuideID != nil && principal.Role.IsAdministrative() {
		params.GuideID = *in.GuideID
	}
	if params.TeamName == nil {
		params.TeamName = principal.TeamName
	}

	s, err := session.NewSession(params, uc.clock.Now())
	if err != nil {
		return nil, err
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := requireProducts(ctx, tx, s.Links()); err != nil {
			return err
		}
		return tx.Sessions().Create(ctx, tx.DB(), s)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Update applies a partial patch. The edited session must still hold every
// active booking: no booked product may disappear and no capacity may drop below
// what is already sold.
func (uc *sessionUseCaseImpl) Update(ctx context.Context, principal user.Principal, id uuid.UUID, patch session.Patch) (*session.Session, error) {
	var updated *session.Session
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		s, err := tx.Sessions().LockByID(ctx, tx.DB(), id)
		if err != nil {
			return err
		}
		if !principal.CanManage(s.GuideID()) {
			return session.ErrSessionNotOwned
		}

		if err := s.Apply(patch, uc.clock.Now()); err != nil {
			return err
		}
		if patch.Links != nil {
			if err := requireProducts(ctx, tx, s.Links()); err != nil {
				return err
			}
		}

		slot, err := loadSlot(ctx, tx, s)
		if err != nil {
			return err
		}
		if err := allocation.Validate(slot); err != nil {
			return err
		}

		if err := tx.Sessions().Update(ctx, tx.DB(), s); err != nil {
			return err
		}
		updated = s
		return nil
	})
	uc.metrics.RecordAllocation(opSessionUpdate, allocation.Outcome(err))
	if err != nil {
		return nil, err
	}

	uc.publisher.Publish(ctx, events.New(events.SessionChanged, id, uc.clock.Now()))
	return updated, nil
}

// Delete removes a session. Active bookings need an explicit action: delete drops
// them with the session, move relocates each one to the target session first.
func (uc *sessionUseCaseImpl) Delete(ctx context.Context, principal user.Principal, id uuid.UUID, in DeleteSessionInput) (*DeleteSessionResult, error) {
	result := &DeleteSessionResult{}
	var target uuid.UUID
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		*result = DeleteSessionResult{}
		s, err := tx.Sessions().LockByID(ctx, tx.DB(), id)
		if err != nil {
			return err
		}
		if !principal.CanManage(s.GuideID()) {
			return session.ErrSessionNotOwned
		}

		all, err := tx.Bookings().ListBySession(ctx, tx.DB(), id)
		if err != nil {
			return err
		}
		active := activeBookings(all)

		if len(active) > 0 {
			switch in.Action {
			case DeleteActionNone:
				return &SessionHasBookingsError{Bookings: active}
			case DeleteActionDelete:
				result.DeletedBookings = len(active)
			case DeleteActionMove:
				if target, err = moveTarget(id, in); err != nil {
					return err
				}
				moved, err := uc.relocateAll(ctx, tx, active, target, in.TargetProductID)
				if err != nil {
					return err
				}
				result.MovedBookings = moved
			default:
				return ErrInvalidDeleteAction
			}
		}

		return tx.Sessions().Delete(ctx, tx.DB(), id)
	})
	uc.metrics.RecordAllocation(opSessionDelete, allocation.Outcome(err))
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	evs := []events.Event{events.New(events.SessionChanged, id, now)}
	for _, b := range result.MovedBookings {
		evs = append(evs, events.New(events.BookingMoved, target, now).WithBooking(b.ID(), b.Client().Email).MovedFrom(id))
	}
	uc.publisher.Publish(ctx, evs...)
	return result, nil
}

func moveTarget(source uuid.UUID, in DeleteSessionInput) (uuid.UUID, error) {
	if in.TargetSessionID == nil {
		return uuid.Nil, ErrMissingTargetSession
	}
	if *in.TargetSessionID == source {
		return uuid.Nil, ErrTargetIsSameSession
	}
	return *in.TargetSessionID, nil
}

// relocateAll moves bookings one by one so each move sees the occupancy left by
// the previous ones.
func (uc *sessionUseCaseImpl) relocateAll(ctx context.Context, tx shared.Tx, bs []*booking.Booking, target uuid.UUID, productID *uuid.UUID) ([]*booking.Booking, error) {
	moved := make([]*booking.Booking, 0, len(bs))
	for _, b := range bs {
		locked, err := tx.Bookings().LockByID(ctx, tx.DB(), b.ID())
		if err != nil {
			return nil, err
		}
		res, err := moveBooking(ctx, tx, locked, MoveBookingInput{TargetSessionID: target, ProductID: productID}, uc.clock.Now())
		if err != nil {
			return nil, errs.Wrapf(err, "move booking %s", b.ID())
		}
		if res.NeedsSelection {
			return nil, ErrTargetProductAmbiguous
		}
		moved = append(moved, res.Booking)
	}
	return moved, nil
}
