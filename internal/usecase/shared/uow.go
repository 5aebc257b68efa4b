package shared

import (
	"context"
	"time"

	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/domain/session"
	"canyon-booking/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Products() ProductRepository
	Sessions() SessionRepository
	Bookings() BookingRepository
	WebhookEvents() WebhookEventRepository
	DB() db.DBTX
}

type ProductRepository interface {
	Create(ctx context.Context, tx db.DBTX, p *product.Product) error
	Update(ctx context.Context, tx db.DBTX, p *product.Product) error
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*product.Product, error)
	// FindByIDs returns the products found; missing ids are simply absent.
	FindByIDs(ctx context.Context, tx db.DBTX, ids []uuid.UUID) ([]*product.Product, error)
}

type SessionRepository interface {
	Create(ctx context.Context, tx db.DBTX, s *session.Session) error
	// Update rewrites the session row and replaces its whole link set.
	Update(ctx context.Context, tx db.DBTX, s *session.Session) error
	Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*session.Session, error)
	// LockByID reads the session with SELECT ... FOR UPDATE.
	LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*session.Session, error)
	// LockByProduct locks every session linking productID, in id order.
	LockByProduct(ctx context.Context, tx db.DBTX, productID uuid.UUID) ([]*session.Session, error)
}

type BookingRepository interface {
	Create(ctx context.Context, tx db.DBTX, b *booking.Booking) error
	Update(ctx context.Context, tx db.DBTX, b *booking.Booking) error
	Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*booking.Booking, error)
	LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*booking.Booking, error)
	// ListBySession includes cancelled bookings, oldest first.
	ListBySession(ctx context.Context, tx db.DBTX, sessionID uuid.UUID) ([]*booking.Booking, error)
	AddPayment(ctx context.Context, tx db.DBTX, p booking.Payment) error
	AddHistory(ctx context.Context, tx db.DBTX, h booking.HistoryEntry) error
	ReplaceParticipants(ctx context.Context, tx db.DBTX, bookingID uuid.UUID, ps []booking.Participant) error
}

type WebhookEventRepository interface {
	// MarkProcessed records the event and reports false when it was already recorded.
	MarkProcessed(ctx context.Context, tx db.DBTX, provider, eventID string, at time.Time) (bool, error)
}
