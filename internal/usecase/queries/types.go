package queries

import (
	"context"
	"time"

	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/domain/session"

	"github.com/google/uuid"
)

// SessionRecord is a session with everything needed to evaluate it: its
// canonical products and all of its bookings, cancelled ones included.
type SessionRecord struct {
	Session  *session.Session
	Products []*product.Product
	Bookings []*booking.Booking
}

type BookingRecord struct {
	Booking      *booking.Booking
	Session      SessionRecord
	Payments     []booking.Payment
	History      []booking.HistoryEntry
	Participants []booking.Participant
}

// SessionFilter selects sessions in schedule order. Nil fields do not filter.
type SessionFilter struct {
	From      *time.Time
	To        *time.Time
	GuideID   *uuid.UUID
	TeamName  *string
	ProductID *uuid.UUID
	Status    *session.Status
	After     *ScheduleCursor
	// Limit of zero means no limit.
	Limit int
}

type SessionReadStore interface {
	List(ctx context.Context, f SessionFilter) ([]SessionRecord, error)
	Get(ctx context.Context, id uuid.UUID) (SessionRecord, error)
}

type BookingReadStore interface {
	Get(ctx context.Context, id uuid.UUID) (BookingRecord, error)
}

type ProductReadStore interface {
	List(ctx context.Context, ownerID *uuid.UUID) ([]*product.Product, error)
}

// Read models

type ProductView struct {
	ID                   uuid.UUID
	OwnerID              uuid.UUID
	Name                 string
	PriceIndividual      int64
	PriceGroup           *int64
	DurationMinutes      int
	MaxCapacity          int
	ActivityType         string
	AutoCloseHoursBefore *int
	Color                string
	Region               string
	ImageURL             string
}

// SessionProductView is an effective product inside one session.
type SessionProductView struct {
	ProductView
	Position      int
	HasOverrides  bool
	Occupied      int
	Available     int
	IsLocked      bool
	BlockedReason *string
	IsAutoClosed  bool
}

type SessionView struct {
	ID                  uuid.UUID
	GuideID             uuid.UUID
	TeamName            *string
	Date                string
	TimeSlot            string
	StartTime           string
	StartsAt            time.Time
	Status              string
	IsMagicRotation     bool
	ShoeRentalAvailable bool
	ShoeRentalPrice     int64
	LockedProductID     *uuid.UUID
	BookedPeople        int
	Products            []SessionProductView
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type BookingSummary struct {
	ID             uuid.UUID
	SessionID      uuid.UUID
	ProductID      uuid.UUID
	FirstName      string
	LastName       string
	Email          string
	NumberOfPeople int
	TotalPrice     int64
	AmountPaid     int64
	Status         string
	CreatedAt      time.Time
}

type SessionDetailView struct {
	SessionView
	Bookings []BookingSummary
}

type SessionPage struct {
	Items      []SessionView
	NextCursor *string
}

// AvailableSessionView is one session offering a product to a given party size.
type AvailableSessionView struct {
	SessionID       uuid.UUID
	GuideID         uuid.UUID
	TeamName        *string
	Date            string
	TimeSlot        string
	StartTime       string
	IsMagicRotation bool
	Product         SessionProductView
	Available       int
	IsAutoClosed    bool
}

type ProductAvailabilityView struct {
	Product  ProductView
	Sessions []AvailableSessionView
}

type PaymentView struct {
	ID        uuid.UUID
	Amount    int64
	Method    string
	Notes     string
	CreatedAt time.Time
}

type HistoryView struct {
	ID        uuid.UUID
	Action    string
	Details   string
	CreatedAt time.Time
}

type ParticipantView struct {
	ID         uuid.UUID
	Name       string
	Age        *int
	HeightCm   *int
	WeightKg   *int
	ShoeRental bool
	ShoeSize   *string
	IsComplete bool
}

type BookingDetailView struct {
	BookingSummary
	Phone                     string
	Nationality               string
	ResellerID                *uuid.UUID
	ParticipantsFormCompleted bool
	ProductDetailsSent        bool
	UpdatedAt                 time.Time
	Session                   SessionView
	Product                   SessionProductView
	Payments                  []PaymentView
	History                   []HistoryView
	Participants              []ParticipantView
}
