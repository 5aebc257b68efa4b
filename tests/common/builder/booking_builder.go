//go:build unit || e2e

package builder

import (
	"time"

	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/money"
	reqdto "canyon-booking/internal/handler/dto/request"
	"canyon-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingBuilder struct {
	ID             uuid.UUID
	SessionID      uuid.UUID
	ProductID      uuid.UUID
	ResellerID     *uuid.UUID
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Nationality    string
	NumberOfPeople int
	TotalCents     int64
	PaidCents      int64
	Status         booking.Status
	CreatedAt      time.Time
}

func NewBookingBuilder() *BookingBuilder {
	return &BookingBuilder{
		ID:             uuid.New(),
		SessionID:      uuid.New(),
		ProductID:      uuid.New(),
		FirstName:      "Camille",
		LastName:       "Martin",
		Email:          "camille.martin@example.com",
		Phone:          "+33600000000",
		Nationality:    "FR",
		NumberOfPeople: 2,
		TotalCents:     10000,
		Status:         booking.StatusPending,
		CreatedAt:      time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) Client() booking.Client {
	return booking.Client{
		FirstName:   b.FirstName,
		LastName:    b.LastName,
		Email:       b.Email,
		Phone:       b.Phone,
		Nationality: b.Nationality,
	}
}

// Build methods
func (b *BookingBuilder) BuildDomain() (*booking.Booking, error) {
	return booking.NewBooking(booking.Params{
		SessionID:      b.SessionID,
		ProductID:      b.ProductID,
		ResellerID:     b.ResellerID,
		Client:         b.Client(),
		NumberOfPeople: b.NumberOfPeople,
		TotalPrice:     money.MustFromCents(b.TotalCents),
		AmountPaid:     money.MustFromCents(b.PaidCents),
	}, b.CreatedAt)
}

func (b *BookingBuilder) BuildStored() *booking.Booking {
	return booking.Reconstruct(booking.Snapshot{
		ID:             b.ID,
		SessionID:      b.SessionID,
		ProductID:      b.ProductID,
		ResellerID:     b.ResellerID,
		Client:         b.Client(),
		NumberOfPeople: b.NumberOfPeople,
		TotalPrice:     money.MustFromCents(b.TotalCents),
		AmountPaid:     money.MustFromCents(b.PaidCents),
		Status:         b.Status,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.CreatedAt,
	})
}

// Fluent builder methods
func (b *BookingBuilder) WithSession(id uuid.UUID) *BookingBuilder {
	b.SessionID = id
	return b
}

func (b *BookingBuilder) WithProduct(id uuid.UUID) *BookingBuilder {
	b.ProductID = id
	return b
}

func (b *BookingBuilder) WithPeople(n int) *BookingBuilder {
	b.NumberOfPeople = n
	return b
}

func (b *BookingBuilder) WithTotal(cents int64) *BookingBuilder {
	b.TotalCents = cents
	return b
}

func (b *BookingBuilder) WithPaid(cents int64) *BookingBuilder {
	b.PaidCents = cents
	return b
}

func (b *BookingBuilder) WithStatus(s booking.Status) *BookingBuilder {
	b.Status = s
	return b
}

func (b *BookingBuilder) WithCreatedAt(t time.Time) *BookingBuilder {
	b.CreatedAt = t
	return b
}

func (b *BookingBuilder) AsCancelled() *BookingBuilder {
	b.Status = booking.StatusCancelled
	return b
}

// DTO build methods
func (b *BookingBuilder) BuildCreateRequestDTO() reqdto.CreateBookingRequest {
	return reqdto.CreateBookingRequest{
		SessionID:  b.SessionID,
		ProductID:  b.ProductID,
		ResellerID: b.ResellerID,
		Client: reqdto.ClientRequest{
			FirstName:   b.FirstName,
			LastName:    b.LastName,
			Email:       b.Email,
			Phone:       b.Phone,
			Nationality: b.Nationality,
		},
		NumberOfPeople: b.NumberOfPeople,
		AmountPaid:     b.PaidCents,
		PaymentMethod:  "card",
	}
}

func (b *BookingBuilder) BuildSummary() queries.BookingSummary {
	return queries.BookingSummary{
		ID:             b.ID,
		SessionID:      b.SessionID,
		ProductID:      b.ProductID,
		FirstName:      b.FirstName,
		LastName:       b.LastName,
		Email:          b.Email,
		NumberOfPeople: b.NumberOfPeople,
		TotalPrice:     b.TotalCents,
		AmountPaid:     b.PaidCents,
		Status:         string(b.Status),
		CreatedAt:      b.CreatedAt,
	}
}

func (b *BookingBuilder) BuildDetailView(s *SessionBuilder) *queries.BookingDetailView {
	sv := s.BuildView()
	v := &queries.BookingDetailView{
		BookingSummary: b.BuildSummary(),
		Phone:          b.Phone,
		Nationality:    b.Nationality,
		ResellerID:     b.ResellerID,
		UpdatedAt:      b.CreatedAt,
		Session:        sv,
	}
	for _, p := range sv.Products {
		if p.ID == b.ProductID {
			v.Product = p
		}
	}
	return v
}
