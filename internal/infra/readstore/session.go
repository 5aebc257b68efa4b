package readstore

import (
	"context"

	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/domain/session"
	"canyon-booking/internal/infra/db"
	"canyon-booking/internal/infra/repository"
	"canyon-booking/internal/usecase/queries"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// SessionReadStore assembles session records with a fixed number of queries:
// sessions, their links, the linked products and the bookings.
type SessionReadStore struct {
	db db.DBTX
}

func NewSessionReadStore(pool db.DBTX) *SessionReadStore {
	return &SessionReadStore{db: pool}
}

func (r *SessionReadStore) List(ctx context.Context, f queries.SessionFilter) ([]queries.SessionRecord, error) {
	q := repository.SelectSessions().OrderBy("date", "start_time", "id")
	if f.From != nil {
		q = q.Where(sq.GtOrEq{"date": pgtype.Date{Time: *f.From, Valid: true}})
	}
	if f.To != nil {
		q = q.Where(sq.LtOrEq{"date": pgtype.Date{Time: *f.To, Valid: true}})
	}
	if f.GuideID != nil {
		q = q.Where(sq.Eq{"guide_id": *f.GuideID})
	}
	if f.TeamName != nil {
		q = q.Where(sq.Eq{"team_name": *f.TeamName})
	}
	if f.Status != nil {
		q = q.Where(sq.Eq{"status": f.Status.String()})
	}
	if f.ProductID != nil {
		q = q.Where(sq.Expr(
			"EXISTS (SELECT 1 FROM session_products sp WHERE sp.session_id = sessions.id AND sp.product_id = ?)",
			*f.ProductID,
		))
	}
	if f.After != nil {
		q = q.Where(sq.Expr(
			"(date, start_time, id) > (?, ?, ?)",
			pgtype.Date{Time: f.After.Date, Valid: true}, f.After.StartTime.String(), f.After.ID,
		))
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}

	sessions, err := repository.ScanSessions(ctx, r.db, q)
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, sessions)
}

func (r *SessionReadStore) Get(ctx context.Context, id uuid.UUID) (queries.SessionRecord, error) {
	s, err := repository.NewSessionRepository().FindByID(ctx, r.db, id)
	if err != nil {
		return queries.SessionRecord{}, err
	}
	recs, err := r.hydrate(ctx, []*session.Session{s})
	if err != nil {
		return queries.SessionRecord{}, err
	}
	return recs[0], nil
}

func (r *SessionReadStore) hydrate(ctx context.Context, sessions []*session.Session) ([]queries.SessionRecord, error) {
	if len(sessions) == 0 {
		return []queries.SessionRecord{}, nil
	}

	sessionIDs := make([]uuid.UUID, len(sessions))
	seen := make(map[uuid.UUID]struct{})
	var productIDs []uuid.UUID
	for i, s := range sessions {
		sessionIDs[i] = s.ID()
		for _, id := range s.ProductIDs() {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				productIDs = append(productIDs, id)
			}
		}
	}

	products, err := repository.NewProductRepository().FindByIDs(ctx, r.db, productIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID()] = p
	}

	bookings, err := repository.ScanBookings(ctx, r.db, repository.SelectBookings().
		Where(sq.Eq{"session_id": sessionIDs}).
		OrderBy("created_at", "id"))
	if err != nil {
		return nil, err
	}
	bySession := make(map[uuid.UUID][]*booking.Booking, len(sessions))
	for _, b := range bookings {
		bySession[b.SessionID()] = append(bySession[b.SessionID()], b)
	}

	out := make([]queries.SessionRecord, len(sessions))
	for i, s := range sessions {
		rec := queries.SessionRecord{Session: s, Bookings: bySession[s.ID()]}
		for _, id := range s.ProductIDs() {
			if p, ok := byID[id]; ok {
				rec.Products = append(rec.Products, p)
			}
		}
		out[i] = rec
	}
	return out, nil
}
