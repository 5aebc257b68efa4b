package queries

import (
	"time"

	"canyon-booking/internal/domain/allocation"
	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/domain/session"

	"github.com/google/uuid"
)

// evaluated is a session record run through the allocator, kept alongside its
// view so callers can ask further capacity questions.
type evaluated struct {
	view SessionView
	slot allocation.Slot
}

// evaluate merges overrides, resolves the rotation lock and computes availability
// for every product of the session as of now.
func evaluate(rec SessionRecord, now time.Time, loc *time.Location) (evaluated, error) {
	slot, err := allocation.NewSlot(rec.Session, rec.Products, rec.Bookings)
	if err != nil {
		return evaluated{}, err
	}
	products, err := allocation.Evaluate(slot)
	if err != nil {
		return evaluated{}, err
	}

	s := rec.Session
	startsAt := s.StartsAt(loc)
	view := SessionView{
		ID:                  s.ID(),
		GuideID:             s.GuideID(),
		TeamName:            s.TeamName(),
		Date:                s.Date().Format(session.DateFormat),
		TimeSlot:            s.TimeSlot(),
		StartTime:           s.StartTime().String(),
		StartsAt:            startsAt,
		Status:              s.Status().String(),
		IsMagicRotation:     s.IsMagicRotation(),
		ShoeRentalAvailable: s.ShoeRental().Available,
		ShoeRentalPrice:     s.ShoeRental().Price.Cents(),
		BookedPeople:        slot.Headcount(),
		Products:            make([]SessionProductView, len(products)),
		CreatedAt:           s.CreatedAt(),
		UpdatedAt:           s.UpdatedAt(),
	}
	if locked, ok := allocation.ResolveLock(slot); ok {
		view.LockedProductID = &locked
	}

	for i, pa := range products {
		link, _ := s.Link(pa.Product.ID)
		pv := SessionProductView{
			ProductView:  toProductView(pa.Product),
			Position:     link.Position,
			HasOverrides: link.Overrides != nil && !link.Overrides.IsEmpty(),
			Occupied:     pa.Occupied,
			Available:    pa.Available,
			IsLocked:     pa.Locked,
			IsAutoClosed: autoClosed(pa.Product, startsAt, now),
		}
		if pa.Blocked != nil {
			reason := string(pa.Blocked.Reason)
			pv.BlockedReason = &reason
		}
		view.Products[i] = pv
	}
	return evaluated{view: view, slot: slot}, nil
}

// autoClosed reports whether now is inside the product's closing window before start.
func autoClosed(p product.Effective, startsAt, now time.Time) bool {
	if p.AutoCloseHoursBefore == nil {
		return false
	}
	cutoff := startsAt.Add(-time.Duration(*p.AutoCloseHoursBefore) * time.Hour)
	return !now.Before(cutoff)
}

// offers reports whether the session product can take participants more people.
// Auto-closed products still qualify; they are flagged, not hidden.
func (e evaluated) offers(pv SessionProductView, participants int) bool {
	return e.view.Status == session.StatusOpen.String() && pv.BlockedReason == nil && pv.Available >= participants
}

func (e evaluated) started(now time.Time) bool {
	return !e.view.StartsAt.After(now)
}

func toProductView(p product.Effective) ProductView {
	v := ProductView{
		ID:                   p.ID,
		OwnerID:              p.OwnerID,
		Name:                 p.Name,
		PriceIndividual:      p.PriceIndividual.Cents(),
		DurationMinutes:      p.DurationMinutes,
		MaxCapacity:          p.MaxCapacity,
		ActivityType:         p.ActivityType,
		AutoCloseHoursBefore: p.AutoCloseHoursBefore,
		Color:                p.Color,
		Region:               p.Region,
		ImageURL:             p.ImageURL,
	}
	if p.PriceGroup != nil {
		cents := p.PriceGroup.Cents()
		v.PriceGroup = &cents
	}
	return v
}

func toBookingSummary(b *booking.Booking) BookingSummary {
	c := b.Client()
	return BookingSummary{
		ID:             b.ID(),
		SessionID:      b.SessionID(),
		ProductID:      b.ProductID(),
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Email:          c.Email,
		NumberOfPeople: b.NumberOfPeople(),
		TotalPrice:     b.TotalPrice().Cents(),
		AmountPaid:     b.AmountPaid().Cents(),
		Status:         b.Status().String(),
		CreatedAt:      b.CreatedAt(),
	}
}

func (v SessionView) product(id uuid.UUID) (SessionProductView, bool) {
	for _, p := range v.Products {
		if p.ID == id {
			return p, true
		}
	}
	return SessionProductView{}, false
}
