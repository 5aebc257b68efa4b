package queries

import (
	"context"
	"time"

	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/pkg/clock"

	"github.com/google/uuid"
)

type BookingQueries interface {
	Get(ctx context.Context, id uuid.UUID) (*BookingDetailView, error)
}

type bookingQueriesImpl struct {
	store BookingReadStore
	clock clock.Clock
	loc   *time.Location
}

func NewBookingQueries(store BookingReadStore, clk clock.Clock, loc *time.Location) BookingQueries {
	return &bookingQueriesImpl{store: store, clock: clk, loc: loc}
}

func (q *bookingQueriesImpl) Get(ctx context.Context, id uuid.UUID) (*BookingDetailView, error) {
	rec, err := q.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ev, err := evaluate(rec.Session, q.clock.Now(), q.loc)
	if err != nil {
		return nil, err
	}

	b := rec.Booking
	pv, ok := ev.view.product(b.ProductID())
	if !ok {
		// the product was unlinked after the booking was cancelled
		pv = SessionProductView{ProductView: ProductView{ID: b.ProductID()}}
	}

	view := &BookingDetailView{
		BookingSummary:            toBookingSummary(b),
		Phone:                     b.Client().Phone,
		Nationality:               b.Client().Nationality,
		ResellerID:                b.ResellerID(),
		ParticipantsFormCompleted: b.ParticipantsFormCompleted(),
		ProductDetailsSent:        b.ProductDetailsSent(),
		UpdatedAt:                 b.UpdatedAt(),
		Session:                   ev.view,
		Product:                   pv,
		Payments:                  make([]PaymentView, len(rec.Payments)),
		History:                   make([]HistoryView, len(rec.History)),
		Participants:              make([]ParticipantView, len(rec.Participants)),
	}
	for i, p := range rec.Payments {
		view.Payments[i] = toPaymentView(p)
	}
	for i, h := range rec.History {
		view.History[i] = HistoryView{ID: h.ID, Action: h.Action.String(), Details: h.Details, CreatedAt: h.CreatedAt}
	}
	for i, p := range rec.Participants {
		view.Participants[i] = ParticipantView{
			ID:         p.ID,
			Name:       p.Name,
			Age:        p.Age,
			HeightCm:   p.HeightCm,
			WeightKg:   p.WeightKg,
			ShoeRental: p.ShoeRental,
			ShoeSize:   p.ShoeSize,
			IsComplete: p.IsComplete,
		}
	}
	return view, nil
}

func toPaymentView(p booking.Payment) PaymentView {
	return PaymentView{ID: p.ID, Amount: p.Amount.Cents(), Method: p.Method, Notes: p.Notes, CreatedAt: p.CreatedAt}
}

type ProductQueries interface {
	List(ctx context.Context, ownerID *uuid.UUID) ([]ProductView, error)
}

type productQueriesImpl struct {
	store ProductReadStore
}

func NewProductQueries(store ProductReadStore) ProductQueries {
	return &productQueriesImpl{store: store}
}

func (q *productQueriesImpl) List(ctx context.Context, ownerID *uuid.UUID) ([]ProductView, error) {
	ps, err := q.store.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]ProductView, len(ps))
	for i, p := range ps {
		out[i] = ProductViewOf(p)
	}
	return out, nil
}

func ProductViewOf(p *product.Product) ProductView {
	return toProductView(p.Effective())
}

// EffectiveView presents a product with its session overrides merged.
func EffectiveView(p product.Effective) ProductView {
	return toProductView(p)
}
