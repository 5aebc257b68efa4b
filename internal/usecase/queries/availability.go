package queries

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"canyon-booking/internal/domain/session"
	"canyon-booking/internal/pkg/clock"
	"canyon-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	MaxSearchDays     = 92
	nextDatesWanted   = 2
	nextDatesPageSize = 50
	nextDatesHorizon  = 365
)

var (
	ErrInvalidRange        = errs.Class("date range is invalid", errs.ErrValidation)
	ErrInvalidParticipants = errs.Class("participants must be at least 1", errs.ErrValidation)
)

type SearchParams struct {
	From         time.Time
	To           time.Time
	GuideID      *uuid.UUID
	TeamName     *string
	ProductID    *uuid.UUID
	Participants int
}

func (p *SearchParams) normalize() error {
	if p.Participants == 0 {
		p.Participants = 1
	}
	if p.Participants < 0 {
		return ErrInvalidParticipants
	}
	if p.To.IsZero() {
		p.To = p.From
	}
	if p.To.Before(p.From) || p.To.Sub(p.From) > MaxSearchDays*24*time.Hour {
		return ErrInvalidRange
	}
	return nil
}

func (p SearchParams) key(op string) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s:%s:%d", op,
		p.From.Format(session.DateFormat), p.To.Format(session.DateFormat),
		optionalID(p.GuideID), optionalString(p.TeamName), optionalID(p.ProductID), p.Participants)
}

type NextDatesParams struct {
	From         time.Time
	ProductID    *uuid.UUID
	GuideID      *uuid.UUID
	TeamName     *string
	Participants int
}

type AvailabilityQueries interface {
	// SearchAvailable groups, per product, the sessions able to take the party.
	SearchAvailable(ctx context.Context, p SearchParams) ([]ProductAvailabilityView, error)
	// ForProduct is SearchAvailable restricted to one product.
	ForProduct(ctx context.Context, productID uuid.UUID, p SearchParams) (*ProductAvailabilityView, error)
	// NextAvailableDates scans forward and stops at the first two dates with room.
	NextAvailableDates(ctx context.Context, p NextDatesParams) ([]string, error)
}

type availabilityQueriesImpl struct {
	store SessionReadStore
	cache Cache
	clock clock.Clock
	loc   *time.Location
}

func NewAvailabilityQueries(store SessionReadStore, cache Cache, clk clock.Clock, loc *time.Location) AvailabilityQueries {
	return &availabilityQueriesImpl{store: store, cache: cache, clock: clk, loc: loc}
}

func (q *availabilityQueriesImpl) SearchAvailable(ctx context.Context, p SearchParams) ([]ProductAvailabilityView, error) {
	if err := p.normalize(); err != nil {
		return nil, err
	}
	return cached(ctx, q.cache, p.key("search"), func() ([]ProductAvailabilityView, error) {
		return q.search(ctx, p)
	})
}

func (q *availabilityQueriesImpl) ForProduct(ctx context.Context, productID uuid.UUID, p SearchParams) (*ProductAvailabilityView, error) {
	p.ProductID = &productID
	if err := p.normalize(); err != nil {
		return nil, err
	}
	views, err := cached(ctx, q.cache, p.key("product"), func() ([]ProductAvailabilityView, error) {
		return q.search(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	for i := range views {
		if views[i].Product.ID == productID {
			return &views[i], nil
		}
	}
	return &ProductAvailabilityView{Product: ProductView{ID: productID}, Sessions: []AvailableSessionView{}}, nil
}

func (q *availabilityQueriesImpl) search(ctx context.Context, p SearchParams) ([]ProductAvailabilityView, error) {
	open := session.StatusOpen
	recs, err := q.store.List(ctx, SessionFilter{
		From:      &p.From,
		To:        &p.To,
		GuideID:   p.GuideID,
		TeamName:  p.TeamName,
		ProductID: p.ProductID,
		Status:    &open,
	})
	if err != nil {
		return nil, err
	}

	now := q.clock.Now()
	byProduct := make(map[uuid.UUID]*ProductAvailabilityView)
	var order []uuid.UUID
	for _, rec := range recs {
		ev, err := evaluate(rec, now, q.loc)
		if err != nil {
			slog.WarnContext(ctx, "skipping inconsistent session", "session_id", rec.Session.ID(), "error", err.Error())
			continue
		}
		if ev.started(now) {
			continue
		}
		for _, pv := range ev.view.Products {
			if p.ProductID != nil && pv.ID != *p.ProductID {
				continue
			}
			if !ev.offers(pv, p.Participants) {
				continue
			}
			entry, ok := byProduct[pv.ID]
			if !ok {
				canonical := canonicalOf(rec, pv.ID)
				entry = &ProductAvailabilityView{Product: canonical}
				byProduct[pv.ID] = entry
				order = append(order, pv.ID)
			}
			entry.Sessions = append(entry.Sessions, AvailableSessionView{
				SessionID:       ev.view.ID,
				GuideID:         ev.view.GuideID,
				TeamName:        ev.view.TeamName,
				Date:            ev.view.Date,
				TimeSlot:        ev.view.TimeSlot,
				StartTime:       ev.view.StartTime,
				IsMagicRotation: ev.view.IsMagicRotation,
				Product:         pv,
				Available:       pv.Available,
				IsAutoClosed:    pv.IsAutoClosed,
			})
		}
	}

	out := make([]ProductAvailabilityView, 0, len(order))
	for _, id := range order {
		entry := byProduct[id]
		sort.SliceStable(entry.Sessions, func(i, j int) bool {
			a, b := entry.Sessions[i], entry.Sessions[j]
			if a.Date != b.Date {
				return a.Date < b.Date
			}
			return a.StartTime < b.StartTime
		})
		out = append(out, *entry)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Product.Name < out[j].Product.Name })
	return out, nil
}

func canonicalOf(rec SessionRecord, id uuid.UUID) ProductView {
	for _, p := range rec.Products {
		if p.ID() == id {
			return toProductView(p.Effective())
		}
	}
	return ProductView{ID: id}
}

// NextAvailableDates pages through upcoming open sessions in schedule order and
// returns as soon as two distinct dates with room for the party are found.
func (q *availabilityQueriesImpl) NextAvailableDates(ctx context.Context, p NextDatesParams) ([]string, error) {
	if p.Participants == 0 {
		p.Participants = 1
	}
	if p.Participants < 0 {
		return nil, ErrInvalidParticipants
	}

	now := q.clock.Now()
	from := p.From
	if today := dateOf(now, q.loc); from.Before(today) {
		from = today
	}
	to := from.AddDate(0, 0, nextDatesHorizon)
	key := SearchParams{From: from, To: to, GuideID: p.GuideID, TeamName: p.TeamName, ProductID: p.ProductID, Participants: p.Participants}.key("next")

	return cached(ctx, q.cache, key, func() ([]string, error) {
		return q.scanNextDates(ctx, p, from, to, now)
	})
}

func (q *availabilityQueriesImpl) scanNextDates(ctx context.Context, p NextDatesParams, from, to, now time.Time) ([]string, error) {
	open := session.StatusOpen
	f := SessionFilter{
		From:      &from,
		To:        &to,
		GuideID:   p.GuideID,
		TeamName:  p.TeamName,
		ProductID: p.ProductID,
		Status:    &open,
		Limit:     nextDatesPageSize,
	}

	dates := make([]string, 0, nextDatesWanted)
	for {
		recs, err := q.store.List(ctx, f)
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			date := rec.Session.Date().Format(session.DateFormat)
			if len(dates) > 0 && dates[len(dates)-1] == date {
				continue
			}
			if q.hasRoom(ctx, rec, p, now) {
				dates = append(dates, date)
				if len(dates) == nextDatesWanted {
					return dates, nil
				}
			}
		}
		if len(recs) < nextDatesPageSize {
			return dates, nil
		}
		last := CursorOf(recs[len(recs)-1].Session)
		f.After = &last
	}
}

func (q *availabilityQueriesImpl) hasRoom(ctx context.Context, rec SessionRecord, p NextDatesParams, now time.Time) bool {
	ev, err := evaluate(rec, now, q.loc)
	if err != nil {
		slog.WarnContext(ctx, "skipping inconsistent session", "session_id", rec.Session.ID(), "error", err.Error())
		return false
	}
	if ev.started(now) {
		return false
	}
	for _, pv := range ev.view.Products {
		if p.ProductID != nil && pv.ID != *p.ProductID {
			continue
		}
		if ev.offers(pv, p.Participants) && !pv.IsAutoClosed {
			return true
		}
	}
	return false
}

func optionalID(id *uuid.UUID) string {
	if id == nil {
		return "-"
	}
	return id.String()
}

func optionalString(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
