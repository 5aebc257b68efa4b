package repository

import (
	"context"

	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/money"
	"canyon-booking/internal/infra"
	"canyon-booking/internal/infra/db"
	"canyon-booking/internal/pkg/pgconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var bookingColumns = []string{
	"id", "session_id", "product_id", "reseller_id", "client_first_name", "client_last_name",
	"client_email", "client_phone", "client_nationality", "number_of_people", "total_price_cents",
	"amount_paid_cents", "status", "participants_form_completed", "product_details_sent",
	"created_at", "updated_at",
}

type BookingRepository struct{}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{}
}

func (r *BookingRepository) Create(ctx context.Context, tx db.DBTX, b *booking.Booking) error {
	s := b.Snapshot()
	q := db.SQ.Insert("bookings").
		Columns(bookingColumns...).
		Values(
			s.ID, s.SessionID, s.ProductID, pgconv.UUIDPtrToPgtype(s.ResellerID), s.Client.FirstName, s.Client.LastName,
			s.Client.Email, s.Client.Phone, s.Client.Nationality, s.NumberOfPeople, s.TotalPrice.Cents(),
			s.AmountPaid.Cents(), s.Status.String(), s.ParticipantsFormCompleted, s.ProductDetailsSent,
			s.CreatedAt, s.UpdatedAt,
		)
	if _, err := db.Exec(ctx, tx, q); err != nil {
		return infra.WrapRepoErr("failed to create booking", err)
	}
	return nil
}

func (r *BookingRepository) Update(ctx context.Context, tx db.DBTX, b *booking.Booking) error {
	s := b.Snapshot()
	q := db.SQ.Update("bookings").
		SetMap(map[string]any{
			"session_id":                  s.SessionID,
			"product_id":                  s.ProductID,
			"number_of_people":            s.NumberOfPeople,
			"total_price_cents":           s.TotalPrice.Cents(),
			"amount_paid_cents":           s.AmountPaid.Cents(),
			"status":                      s.Status.String(),
			"participants_form_completed": s.ParticipantsFormCompleted,
			"product_details_sent":        s.ProductDetailsSent,
			"updated_at":                  s.UpdatedAt,
		}).
		Where(sq.Eq{"id": s.ID})
	n, err := db.Exec(ctx, tx, q)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking", err)
	}
	if n == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

// Delete is the admin hard delete; payments, participants and history cascade.
func (r *BookingRepository) Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error {
	n, err := db.Exec(ctx, tx, db.SQ.Delete("bookings").Where(sq.Eq{"id": id}))
	if err != nil {
		return infra.WrapRepoErr("failed to delete booking", err)
	}
	if n == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	return r.findOne(ctx, tx, SelectBookings().Where(sq.Eq{"id": id}))
}

func (r *BookingRepository) LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	return r.findOne(ctx, tx, SelectBookings().Where(sq.Eq{"id": id}).Suffix("FOR UPDATE"))
}

func (r *BookingRepository) ListBySession(ctx context.Context, tx db.DBTX, sessionID uuid.UUID) ([]*booking.Booking, error) {
	q := SelectBookings().
		Where(sq.Eq{"session_id": sessionID}).
		OrderBy("created_at", "id")
	return ScanBookings(ctx, tx, q)
}

func (r *BookingRepository) AddPayment(ctx context.Context, tx db.DBTX, p booking.Payment) error {
	q := db.SQ.Insert("payments").
		Columns("id", "booking_id", "amount_cents", "method", "notes", "created_at").
		Values(p.ID, p.BookingID, p.Amount.Cents(), p.Method, p.Notes, p.CreatedAt)
	if _, err := db.Exec(ctx, tx, q); err != nil {
		return infra.WrapRepoErr("failed to insert payment", err)
	}
	return nil
}

func (r *BookingRepository) AddHistory(ctx context.Context, tx db.DBTX, h booking.HistoryEntry) error {
	q := db.SQ.Insert("booking_history").
		Columns("id", "booking_id", "action", "details", "created_at").
		Values(h.ID, h.BookingID, h.Action.String(), h.Details, h.CreatedAt)
	if _, err := db.Exec(ctx, tx, q); err != nil {
		return infra.WrapRepoErr("failed to insert booking history", err)
	}
	return nil
}

func (r *BookingRepository) ReplaceParticipants(ctx context.Context, tx db.DBTX, bookingID uuid.UUID, ps []booking.Participant) error {
	if _, err := db.Exec(ctx, tx, db.SQ.Delete("participants").Where(sq.Eq{"booking_id": bookingID})); err != nil {
		return infra.WrapRepoErr("failed to clear participants", err)
	}
	if len(ps) == 0 {
		return nil
	}
	q := db.SQ.Insert("participants").
		Columns("id", "booking_id", "position", "name", "age", "height_cm", "weight_kg", "shoe_rental", "shoe_size", "is_complete")
	for i, p := range ps {
		q = q.Values(
			p.ID, bookingID, i, p.Name, pgconv.Int32PtrToPgtype(p.Age), pgconv.Int32PtrToPgtype(p.HeightCm),
			pgconv.Int32PtrToPgtype(p.WeightKg), p.ShoeRental, pgconv.StringPtrToPgtype(p.ShoeSize), p.IsComplete,
		)
	}
	if _, err := db.Exec(ctx, tx, q); err != nil {
		return infra.WrapRepoErr("failed to insert participants", err)
	}
	return nil
}

func (r *BookingRepository) findOne(ctx context.Context, tx db.DBTX, q sq.SelectBuilder) (*booking.Booking, error) {
	row, err := db.QueryRow(ctx, tx, q)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build booking query", err)
	}
	b, err := scanBooking(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, infra.WrapRepoErr("failed to find booking", err)
	}
	return b, nil
}

func SelectBookings() sq.SelectBuilder {
	return db.SQ.Select(bookingColumns...).From("bookings")
}

// ScanBookings runs a query built on SelectBookings.
func ScanBookings(ctx context.Context, tx db.DBTX, q sq.Sqlizer) ([]*booking.Booking, error) {
	rows, err := db.Query(ctx, tx, q)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query bookings", err)
	}
	defer rows.Close()

	var out []*booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate bookings", err)
	}
	return out, nil
}

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var (
		s                    booking.Snapshot
		reseller             pgtype.UUID
		total, paid          int64
		status               string
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&s.ID, &s.SessionID, &s.ProductID, &reseller, &s.Client.FirstName, &s.Client.LastName,
		&s.Client.Email, &s.Client.Phone, &s.Client.Nationality, &s.NumberOfPeople, &total,
		&paid, &status, &s.ParticipantsFormCompleted, &s.ProductDetailsSent,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.ResellerID = pgconv.UUIDPtrFromPgtype(reseller)
	s.TotalPrice = money.MustFromCents(total)
	s.AmountPaid = money.MustFromCents(paid)
	s.Status = booking.Status(status)
	s.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	s.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)
	return booking.Reconstruct(s), nil
}
