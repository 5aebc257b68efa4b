//go:build unit || e2e

package builder

import (
	"time"

	"canyon-booking/internal/domain/money"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/domain/session"
	reqdto "canyon-booking/internal/handler/dto/request"
	"canyon-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type SessionBuilder struct {
	ID              uuid.UUID
	GuideID         uuid.UUID
	TeamName        *string
	Date            string
	TimeSlot        string
	StartTime       string
	Status          session.Status
	IsMagicRotation bool
	ShoeRental      *int64
	ProductIDs      []uuid.UUID
	Overrides       map[int]*product.Overrides
	CreatedAt       time.Time
}

func NewSessionBuilder() *SessionBuilder {
	return &SessionBuilder{
		ID:         uuid.New(),
		GuideID:    uuid.New(),
		Date:       "2026-08-01",
		TimeSlot:   "morning",
		StartTime:  "09:00",
		Status:     session.StatusOpen,
		ProductIDs: []uuid.UUID{uuid.New()},
		Overrides:  map[int]*product.Overrides{},
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *SessionBuilder) With(mutate func(*SessionBuilder)) *SessionBuilder {
	mutate(s)
	return s
}

func (s *SessionBuilder) Params() (session.Params, error) {
	date, err := session.ParseDate(s.Date)
	if err != nil {
		return session.Params{}, err
	}
	start, err := session.ParseStartTime(s.StartTime)
	if err != nil {
		return session.Params{}, err
	}
	links := make([]session.Link, len(s.ProductIDs))
	for i, id := range s.ProductIDs {
		links[i] = session.Link{ProductID: id, Position: i, Overrides: s.Overrides[i]}
	}
	p := session.Params{
		GuideID:         s.GuideID,
		TeamName:        s.TeamName,
		Date:            date,
		TimeSlot:        s.TimeSlot,
		StartTime:       start,
		IsMagicRotation: s.IsMagicRotation,
		Links:           links,
	}
	if s.ShoeRental != nil {
		p.ShoeRental = session.ShoeRental{Available: true, Price: money.MustFromCents(*s.ShoeRental)}
	}
	return p, nil
}

// Build methods
func (s *SessionBuilder) BuildDomain() (*session.Session, error) {
	p, err := s.Params()
	if err != nil {
		return nil, err
	}
	return session.NewSession(p, s.CreatedAt)
}

// BuildStored keeps the builder's id and status, like a row read back from the database.
func (s *SessionBuilder) BuildStored() *session.Session {
	p, err := s.Params()
	if err != nil {
		panic(err)
	}
	return session.Reconstruct(s.ID, p, s.Status, s.CreatedAt, s.CreatedAt)
}

// Fluent builder methods
func (s *SessionBuilder) WithID(id uuid.UUID) *SessionBuilder {
	s.ID = id
	return s
}

func (s *SessionBuilder) WithGuide(guideID uuid.UUID) *SessionBuilder {
	s.GuideID = guideID
	return s
}

func (s *SessionBuilder) WithTeam(team string) *SessionBuilder {
	s.TeamName = &team
	return s
}

func (s *SessionBuilder) WithDate(date string) *SessionBuilder {
	s.Date = date
	return s
}

func (s *SessionBuilder) WithTimeSlot(slot string) *SessionBuilder {
	s.TimeSlot = slot
	return s
}

func (s *SessionBuilder) WithStartTime(start string) *SessionBuilder {
	s.StartTime = start
	return s
}

func (s *SessionBuilder) WithStatus(status session.Status) *SessionBuilder {
	s.Status = status
	return s
}

func (s *SessionBuilder) WithProducts(ids ...uuid.UUID) *SessionBuilder {
	s.ProductIDs = ids
	return s
}

func (s *SessionBuilder) WithShoeRental(cents int64) *SessionBuilder {
	s.ShoeRental = &cents
	return s
}

func (s *SessionBuilder) WithOverride(idx int, o *product.Overrides) *SessionBuilder {
	s.Overrides[idx] = o
	return s
}

func (s *SessionBuilder) AsMagicRotation() *SessionBuilder {
	s.IsMagicRotation = true
	return s
}

// DTO build methods
func (s *SessionBuilder) BuildCreateRequestDTO() reqdto.CreateSessionRequest {
	req := reqdto.CreateSessionRequest{
		Date:            s.Date,
		TimeSlot:        s.TimeSlot,
		StartTime:       s.StartTime,
		IsMagicRotation: s.IsMagicRotation,
		TeamName:        s.TeamName,
		ProductIDs:      append([]uuid.UUID(nil), s.ProductIDs...),
	}
	if s.ShoeRental != nil {
		req.ShoeRentalAvailable = true
		req.ShoeRentalPrice = *s.ShoeRental
	}
	return req
}

func (s *SessionBuilder) BuildView() queries.SessionView {
	startsAt, _ := time.Parse("2006-01-02 15:04", s.Date+" "+s.StartTime)
	products := make([]queries.SessionProductView, len(s.ProductIDs))
	for i, id := range s.ProductIDs {
		pv := NewProductBuilder().WithID(id).BuildView()
		products[i] = queries.SessionProductView{
			ProductView:  pv,
			Position:     i,
			HasOverrides: s.Overrides[i] != nil,
			Available:    pv.MaxCapacity,
		}
	}
	v := queries.SessionView{
		ID:              s.ID,
		GuideID:         s.GuideID,
		TeamName:        s.TeamName,
		Date:            s.Date,
		TimeSlot:        s.TimeSlot,
		StartTime:       s.StartTime,
		StartsAt:        startsAt,
		Status:          string(s.Status),
		IsMagicRotation: s.IsMagicRotation,
		Products:        products,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.CreatedAt,
	}
	if s.ShoeRental != nil {
		v.ShoeRentalAvailable = true
		v.ShoeRentalPrice = *s.ShoeRental
	}
	return v
}

func (s *SessionBuilder) BuildDetailView(bookings ...queries.BookingSummary) *queries.SessionDetailView {
	return &queries.SessionDetailView{SessionView: s.BuildView(), Bookings: bookings}
}
