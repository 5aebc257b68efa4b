package repository

import (
	"context"
	"encoding/json"
	"time"

	"canyon-booking/internal/domain/money"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/domain/session"
	"canyon-booking/internal/infra"
	"canyon-booking/internal/infra/db"
	"canyon-booking/internal/pkg/pgconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

var sessionColumns = []string{
	"id", "guide_id", "team_name", "date", "time_slot", "start_time", "status", "is_magic_rotation",
	"shoe_rental_available", "shoe_rental_price_cents", "created_at", "updated_at",
}

type SessionRepository struct{}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{}
}

func (r *SessionRepository) Create(ctx context.Context, tx db.DBTX, s *session.Session) error {
	q := db.SQ.Insert("sessions").
		Columns(sessionColumns...).
		Values(
			s.ID(), s.GuideID(), pgconv.StringPtrToPgtype(s.TeamName()), pgtype.Date{Time: s.Date(), Valid: true},
			s.TimeSlot(), s.StartTime().String(), s.Status().String(), s.IsMagicRotation(),
			s.ShoeRental().Available, s.ShoeRental().Price.Cents(), s.CreatedAt(), s.UpdatedAt(),
		)
	if _, err := db.Exec(ctx, tx, q); err != nil {
		return infra.WrapRepoErr("failed to create session", err)
	}
	return insertLinks(ctx, tx, s.ID(), s.Links())
}

func (r *SessionRepository) Update(ctx context.Context, tx db.DBTX, s *session.Session) error {
	q := db.SQ.Update("sessions").
		SetMap(map[string]any{
			"team_name":               pgconv.StringPtrToPgtype(s.TeamName()),
			"date":                    pgtype.Date{Time: s.Date(), Valid: true},
			"time_slot":               s.TimeSlot(),
			"start_time":              s.StartTime().String(),
			"status":                  s.Status().String(),
			"is_magic_rotation":       s.IsMagicRotation(),
			"shoe_rental_available":   s.ShoeRental().Available,
			"shoe_rental_price_cents": s.ShoeRental().Price.Cents(),
			"updated_at":              s.UpdatedAt(),
		}).
		Where(sq.Eq{"id": s.ID()})
	n, err := db.Exec(ctx, tx, q)
	if err != nil {
		return infra.WrapRepoErr("failed to update session", err)
	}
	if n == 0 {
		return session.ErrSessionNotFound
	}

	if _, err := db.Exec(ctx, tx, db.SQ.Delete("session_products").Where(sq.Eq{"session_id": s.ID()})); err != nil {
		return infra.WrapRepoErr("failed to clear session products", err)
	}
	return insertLinks(ctx, tx, s.ID(), s.Links())
}

// Delete relies on ON DELETE CASCADE for links, bookings and their dependents.
func (r *SessionRepository) Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error {
	n, err := db.Exec(ctx, tx, db.SQ.Delete("sessions").Where(sq.Eq{"id": id}))
	if err != nil {
		return infra.WrapRepoErr("failed to delete session", err)
	}
	if n == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*session.Session, error) {
	return r.findOne(ctx, tx, SelectSessions().Where(sq.Eq{"id": id}))
}

func (r *SessionRepository) LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*session.Session, error) {
	return r.findOne(ctx, tx, SelectSessions().Where(sq.Eq{"id": id}).Suffix("FOR UPDATE"))
}

func (r *SessionRepository) LockByProduct(ctx context.Context, tx db.DBTX, productID uuid.UUID) ([]*session.Session, error) {
	q := SelectSessions().
		Where(sq.Expr("id IN (SELECT session_id FROM session_products WHERE product_id = ?)", productID)).
		OrderBy("id").
		Suffix("FOR UPDATE")
	return ScanSessions(ctx, tx, q)
}

func (r *SessionRepository) findOne(ctx context.Context, tx db.DBTX, q sq.SelectBuilder) (*session.Session, error) {
	sessions, err := ScanSessions(ctx, tx, q)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, session.ErrSessionNotFound
	}
	return sessions[0], nil
}

func SelectSessions() sq.SelectBuilder {
	return db.SQ.Select(sessionColumns...).From("sessions")
}

// ScanSessions runs a query built on SelectSessions and loads the links of every
// session found.
func ScanSessions(ctx context.Context, tx db.DBTX, q sq.Sqlizer) ([]*session.Session, error) {
	rows, err := db.Query(ctx, tx, q)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query sessions", err)
	}

	type pending struct {
		id        uuid.UUID
		params    session.Params
		status    session.Status
		createdAt time.Time
		updatedAt time.Time
	}
	var found []pending
	for rows.Next() {
		var (
			p                    pending
			team                 pgtype.Text
			date                 pgtype.Date
			startTime, status    string
			shoePrice            int64
			createdAt, updatedAt pgtype.Timestamptz
		)
		if err := rows.Scan(
			&p.id, &p.params.GuideID, &team, &date, &p.params.TimeSlot, &startTime, &status,
			&p.params.IsMagicRotation, &p.params.ShoeRental.Available, &shoePrice, &createdAt, &updatedAt,
		); err != nil {
			rows.Close()
			return nil, infra.WrapRepoErr("failed to scan session", err)
		}
		st, err := session.ParseStartTime(startTime)
		if err != nil {
			rows.Close()
			return nil, infra.WrapRepoErr("invalid stored start time", err)
		}
		p.params.TeamName = pgconv.StringPtrFromPgtype(team)
		p.params.Date = pgconv.DateFromPgtype(date)
		p.params.StartTime = st
		p.params.ShoeRental.Price = money.MustFromCents(shoePrice)
		p.status = session.Status(status)
		p.createdAt = pgconv.TimeFromPgtype(createdAt)
		p.updatedAt = pgconv.TimeFromPgtype(updatedAt)
		found = append(found, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate sessions", err)
	}
	if len(found) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(found))
	for i, p := range found {
		ids[i] = p.id
	}
	links, err := findLinks(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*session.Session, len(found))
	for i, p := range found {
		p.params.Links = links[p.id]
		out[i] = session.Reconstruct(p.id, p.params, p.status, p.createdAt, p.updatedAt)
	}
	return out, nil
}

func findLinks(ctx context.Context, tx db.DBTX, sessionIDs []uuid.UUID) (map[uuid.UUID][]session.Link, error) {
	q := db.SQ.Select("session_id", "product_id", "position", "product_overrides").
		From("session_products").
		Where(sq.Eq{"session_id": sessionIDs}).
		OrderBy("session_id", "position")
	rows, err := db.Query(ctx, tx, q)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query session products", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]session.Link, len(sessionIDs))
	for rows.Next() {
		var (
			sessionID uuid.UUID
			l         session.Link
			raw       []byte
		)
		if err := rows.Scan(&sessionID, &l.ProductID, &l.Position, &raw); err != nil {
			return nil, infra.WrapRepoErr("failed to scan session product", err)
		}
		if len(raw) > 0 {
			var o product.Overrides
			if err := json.Unmarshal(raw, &o); err != nil {
				return nil, infra.WrapRepoErr("invalid stored product overrides", err)
			}
			if !o.IsEmpty() {
				l.Overrides = &o
			}
		}
		out[sessionID] = append(out[sessionID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate session products", err)
	}
	return out, nil
}

func insertLinks(ctx context.Context, tx db.DBTX, sessionID uuid.UUID, links []session.Link) error {
	if len(links) == 0 {
		return nil
	}
	q := db.SQ.Insert("session_products").Columns("session_id", "product_id", "position", "product_overrides")
	for _, l := range links {
		var raw []byte
		if l.Overrides != nil && !l.Overrides.IsEmpty() {
			b, err := json.Marshal(l.Overrides)
			if err != nil {
				return infra.WrapRepoErr("failed to encode product overrides", err)
			}
			raw = b
		}
		q = q.Values(sessionID, l.ProductID, l.Position, raw)
	}
	if _, err := db.Exec(ctx, tx, q); err != nil {
		return infra.WrapRepoErr("failed to link session products", err)
	}
	return nil
}
