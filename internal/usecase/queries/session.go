package queries

import (
	"context"
	"log/slog"
	"time"

	"canyon-booking/internal/domain/allocation"
	"canyon-booking/internal/pkg/clock"

	"github.com/google/uuid"
)

type SessionListParams struct {
	From     *time.Time
	To       *time.Time
	GuideID  *uuid.UUID
	TeamName *string
	After    string
	Limit    int
}

type SessionQueries interface {
	List(ctx context.Context, p SessionListParams) (*SessionPage, error)
	Get(ctx context.Context, id uuid.UUID) (*SessionDetailView, error)
	// Alternatives lists future sessions of the same guide able to take every
	// active booking of the given session.
	Alternatives(ctx context.Context, id uuid.UUID) ([]SessionView, error)
}

type sessionQueriesImpl struct {
	store SessionReadStore
	clock clock.Clock
	loc   *time.Location
}

func NewSessionQueries(store SessionReadStore, clk clock.Clock, loc *time.Location) SessionQueries {
	return &sessionQueriesImpl{store: store, clock: clk, loc: loc}
}

func (q *sessionQueriesImpl) List(ctx context.Context, p SessionListParams) (*SessionPage, error) {
	limit := ValidateLimit(p.Limit)
	f := SessionFilter{
		From:     p.From,
		To:       p.To,
		GuideID:  p.GuideID,
		TeamName: p.TeamName,
		Limit:    limit + 1,
	}
	if p.After != "" {
		c, err := DecodeScheduleCursor(p.After)
		if err != nil {
			return nil, err
		}
		f.After = &c
	}

	recs, err := q.store.List(ctx, f)
	if err != nil {
		return nil, err
	}

	page := &SessionPage{Items: make([]SessionView, 0, min(len(recs), limit))}
	if len(recs) > limit {
		next := EncodeScheduleCursor(CursorOf(recs[limit-1].Session))
		page.NextCursor = &next
		recs = recs[:limit]
	}

	now := q.clock.Now()
	for _, rec := range recs {
		ev, err := evaluate(rec, now, q.loc)
		if err != nil {
			slog.WarnContext(ctx, "skipping inconsistent session", "session_id", rec.Session.ID(), "error", err.Error())
			continue
		}
		page.Items = append(page.Items, ev.view)
	}
	return page, nil
}

func (q *sessionQueriesImpl) Get(ctx context.Context, id uuid.UUID) (*SessionDetailView, error) {
	rec, err := q.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ev, err := evaluate(rec, q.clock.Now(), q.loc)
	if err != nil {
		return nil, err
	}

	detail := &SessionDetailView{SessionView: ev.view, Bookings: make([]BookingSummary, 0, len(rec.Bookings))}
	for _, b := range rec.Bookings {
		detail.Bookings = append(detail.Bookings, toBookingSummary(b))
	}
	return detail, nil
}

func (q *sessionQueriesImpl) Alternatives(ctx context.Context, id uuid.UUID) ([]SessionView, error) {
	source, err := q.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	slot, err := allocation.NewSlot(source.Session, source.Products, source.Bookings)
	if err != nil {
		return nil, err
	}
	headcount := slot.Headcount()

	now := q.clock.Now()
	today := dateOf(now, q.loc)
	guide := source.Session.GuideID()
	recs, err := q.store.List(ctx, SessionFilter{From: &today, GuideID: &guide})
	if err != nil {
		return nil, err
	}

	out := make([]SessionView, 0, len(recs))
	for _, rec := range recs {
		if rec.Session.ID() == id {
			continue
		}
		ev, err := evaluate(rec, now, q.loc)
		if err != nil {
			slog.WarnContext(ctx, "skipping inconsistent session", "session_id", rec.Session.ID(), "error", err.Error())
			continue
		}
		if ev.started(now) || !ev.slot.Open {
			continue
		}
		hosts, err := allocation.Hosts(ev.slot, headcount)
		if err != nil || len(hosts) == 0 {
			continue
		}
		out = append(out, ev.view)
	}
	return out, nil
}

// dateOf is the calendar date of t in loc, as midnight UTC like stored dates.
func dateOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
