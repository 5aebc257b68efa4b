package response

import (
	"time"

	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/usecase/commands"
	"canyon-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingResponse struct {
	ID                        uuid.UUID  `json:"id"`
	SessionID                 uuid.UUID  `json:"sessionId"`
	ProductID                 uuid.UUID  `json:"productId"`
	ResellerID                *uuid.UUID `json:"resellerId"`
	FirstName                 string     `json:"firstName"`
	LastName                  string     `json:"lastName"`
	Email                     string     `json:"email"`
	Phone                     string     `json:"phone"`
	Nationality               string     `json:"nationality"`
	NumberOfPeople            int        `json:"numberOfPeople"`
	TotalPrice                int64      `json:"totalPrice"`
	AmountPaid                int64      `json:"amountPaid"`
	Status                    string     `json:"status"`
	ParticipantsFormCompleted bool       `json:"participantsFormCompleted"`
	ProductDetailsSent        bool       `json:"productDetailsSent"`
	CreatedAt                 time.Time  `json:"createdAt"`
	UpdatedAt                 time.Time  `json:"updatedAt"`
}

func FromBooking(b *booking.Booking) *BookingResponse {
	s := b.Snapshot()
	return &BookingResponse{
		ID:                        s.ID,
		SessionID:                 s.SessionID,
		ProductID:                 s.ProductID,
		ResellerID:                s.ResellerID,
		FirstName:                 s.Client.FirstName,
		LastName:                  s.Client.LastName,
		Email:                     s.Client.Email,
		Phone:                     s.Client.Phone,
		Nationality:               s.Client.Nationality,
		NumberOfPeople:            s.NumberOfPeople,
		TotalPrice:                s.TotalPrice.Cents(),
		AmountPaid:                s.AmountPaid.Cents(),
		Status:                    s.Status.String(),
		ParticipantsFormCompleted: s.ParticipantsFormCompleted,
		ProductDetailsSent:        s.ProductDetailsSent,
		CreatedAt:                 s.CreatedAt,
		UpdatedAt:                 s.UpdatedAt,
	}
}

// MoveResponse answers a move. When the target session cannot decide the
// product, booking is null and candidates lists the choices.
type MoveResponse struct {
	Booking               *BookingResponse  `json:"booking"`
	NeedsProductSelection bool              `json:"needsProductSelection"`
	Candidates            []ProductResponse `json:"candidates,omitempty"`
}

func FromMoveResult(r *commands.MoveResult) MoveResponse {
	if r.NeedsSelection {
		res := MoveResponse{NeedsProductSelection: true, Candidates: make([]ProductResponse, len(r.Candidates))}
		for i, c := range r.Candidates {
			res.Candidates[i] = fromEffective(c)
		}
		return res
	}
	return MoveResponse{Booking: FromBooking(r.Booking)}
}

func fromEffective(p product.Effective) ProductResponse {
	return FromProductView(queries.EffectiveView(p))
}

type PaymentResponse struct {
	ID        uuid.UUID `json:"id"`
	Amount    int64     `json:"amount"`
	Method    string    `json:"method"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

type HistoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}

type ParticipantResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Age        *int      `json:"age"`
	HeightCm   *int      `json:"heightCm"`
	WeightKg   *int      `json:"weightKg"`
	ShoeRental bool      `json:"shoeRental"`
	ShoeSize   *string   `json:"shoeSize"`
	IsComplete bool      `json:"isComplete"`
}

type BookingDetailResponse struct {
	BookingSummaryResponse
	Phone                     string                 `json:"phone"`
	Nationality               string                 `json:"nationality"`
	ResellerID                *uuid.UUID             `json:"resellerId"`
	ParticipantsFormCompleted bool                   `json:"participantsFormCompleted"`
	ProductDetailsSent        bool                   `json:"productDetailsSent"`
	UpdatedAt                 time.Time              `json:"updatedAt"`
	Session                   SessionResponse        `json:"session"`
	Product                   SessionProductResponse `json:"product"`
	Payments                  []PaymentResponse      `json:"payments"`
	History                   []HistoryResponse      `json:"history"`
	Participants              []ParticipantResponse  `json:"participants"`
}

func FromBookingDetail(v *queries.BookingDetailView) BookingDetailResponse {
	var res BookingDetailResponse
	mapInto(&res, v)
	res.Session = FromSessionView(v.Session)
	if res.Payments == nil {
		res.Payments = []PaymentResponse{}
	}
	if res.History == nil {
		res.History = []HistoryResponse{}
	}
	if res.Participants == nil {
		res.Participants = []ParticipantResponse{}
	}
	return res
}

type CheckoutResponse struct {
	Outcome string           `json:"outcome"`
	Booking *BookingResponse `json:"booking,omitempty"`
}

func FromCheckoutResult(r *commands.CheckoutResult) CheckoutResponse {
	res := CheckoutResponse{Outcome: string(r.Outcome)}
	if r.Booking != nil {
		res.Booking = FromBooking(r.Booking)
	}
	return res
}

type DeleteSessionResponse struct {
	DeletedBookings int               `json:"deletedBookings"`
	MovedBookings   []BookingResponse `json:"movedBookings"`
}

func FromDeleteSessionResult(r *commands.DeleteSessionResult) DeleteSessionResponse {
	res := DeleteSessionResponse{DeletedBookings: r.DeletedBookings, MovedBookings: make([]BookingResponse, len(r.MovedBookings))}
	for i, b := range r.MovedBookings {
		res.MovedBookings[i] = *FromBooking(b)
	}
	return res
}

// SessionBookingsConflict is the detail of a refused session delete.
func SessionBookingsConflict(bs []*booking.Booking) []BookingResponse {
	res := make([]BookingResponse, len(bs))
	for i, b := range bs {
		res[i] = *FromBooking(b)
	}
	return res
}
