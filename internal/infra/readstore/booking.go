package readstore

import (
	"context"

	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/money"
	"canyon-booking/internal/infra"
	"canyon-booking/internal/infra/db"
	"canyon-booking/internal/infra/repository"
	"canyon-booking/internal/pkg/pgconv"
	"canyon-booking/internal/usecase/queries"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type BookingReadStore struct {
	db       db.DBTX
	sessions *SessionReadStore
}

func NewBookingReadStore(pool db.DBTX, sessions *SessionReadStore) *BookingReadStore {
	return &BookingReadStore{db: pool, sessions: sessions}
}

func (r *BookingReadStore) Get(ctx context.Context, id uuid.UUID) (queries.BookingRecord, error) {
	b, err := repository.NewBookingRepository().FindByID(ctx, r.db, id)
	if err != nil {
		return queries.BookingRecord{}, err
	}
	s, err := r.sessions.Get(ctx, b.SessionID())
	if err != nil {
		return queries.BookingRecord{}, err
	}

	rec := queries.BookingRecord{Booking: b, Session: s}
	if rec.Payments, err = r.payments(ctx, id); err != nil {
		return queries.BookingRecord{}, err
	}
	if rec.History, err = r.history(ctx, id); err != nil {
		return queries.BookingRecord{}, err
	}
	if rec.Participants, err = r.participants(ctx, id); err != nil {
		return queries.BookingRecord{}, err
	}
	return rec, nil
}

func (r *BookingReadStore) payments(ctx context.Context, bookingID uuid.UUID) ([]booking.Payment, error) {
	rows, err := db.Query(ctx, r.db, db.SQ.
		Select("id", "booking_id", "amount_cents", "method", "notes", "created_at").
		From("payments").
		Where(sq.Eq{"booking_id": bookingID}).
		OrderBy("created_at", "id"))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query payments", err)
	}
	defer rows.Close()

	out := []booking.Payment{}
	for rows.Next() {
		var (
			p         booking.Payment
			cents     int64
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&p.ID, &p.BookingID, &cents, &p.Method, &p.Notes, &createdAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan payment", err)
		}
		p.Amount = money.MustFromCents(cents)
		p.CreatedAt = pgconv.TimeFromPgtype(createdAt)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate payments", err)
	}
	return out, nil
}

func (r *BookingReadStore) history(ctx context.Context, bookingID uuid.UUID) ([]booking.HistoryEntry, error) {
	rows, err := db.Query(ctx, r.db, db.SQ.
		Select("id", "booking_id", "action", "details", "created_at").
		From("booking_history").
		Where(sq.Eq{"booking_id": bookingID}).
		OrderBy("created_at", "id"))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query booking history", err)
	}
	defer rows.Close()

	out := []booking.HistoryEntry{}
	for rows.Next() {
		var (
			h         booking.HistoryEntry
			action    string
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&h.ID, &h.BookingID, &action, &h.Details, &createdAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking history", err)
		}
		h.Action = booking.Action(action)
		h.CreatedAt = pgconv.TimeFromPgtype(createdAt)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking history", err)
	}
	return out, nil
}

func (r *BookingReadStore) participants(ctx context.Context, bookingID uuid.UUID) ([]booking.Participant, error) {
	rows, err := db.Query(ctx, r.db, db.SQ.
		Select("id", "booking_id", "name", "age", "height_cm", "weight_kg", "shoe_rental", "shoe_size", "is_complete").
		From("participants").
		Where(sq.Eq{"booking_id": bookingID}).
		OrderBy("position"))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query participants", err)
	}
	defer rows.Close()

	out := []booking.Participant{}
	for rows.Next() {
		var (
			p                   booking.Participant
			age, height, weight pgtype.Int4
			shoeSize            pgtype.Text
		)
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Name, &age, &height, &weight, &p.ShoeRental, &shoeSize, &p.IsComplete); err != nil {
			return nil, infra.WrapRepoErr("failed to scan participant", err)
		}
		p.Age = pgconv.IntPtrFromPgtype(age)
		p.HeightCm = pgconv.IntPtrFromPgtype(height)
		p.WeightKg = pgconv.IntPtrFromPgtype(weight)
		p.ShoeSize = pgconv.StringPtrFromPgtype(shoeSize)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate participants", err)
	}
	return out, nil
}
