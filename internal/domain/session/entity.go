package session

import (
	"strings"
	"time"

	"canyon-booking/internal/domain/money"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound      = errs.Class("session not found", errs.ErrNotFound)
	ErrEmptyTimeSlot        = errs.Class("time slot is required", errs.ErrValidation)
	ErrNoProducts           = errs.Class("at least one product is required", errs.ErrValidation)
	ErrDuplicateProduct     = errs.Class("product listed twice", errs.ErrValidation)
	ErrRotationNeedsChoices = errs.Class("magic rotation needs at least two products", errs.ErrValidation)
	ErrShoeRentalPrice      = errs.Class("shoe rental requires a positive price", errs.ErrValidation)
	ErrSessionNotOwned      = errs.Class("session is owned by another guide", errs.ErrForbidden)
	ErrTraineeCannotCreate  = errs.Class("trainees cannot create sessions", errs.ErrForbidden)
)

// Link associates a product with a session, optionally patched for that session only.
type Link struct {
	ProductID uuid.UUID
	Position  int
	Overrides *product.Overrides
}

type ShoeRental struct {
	Available bool
	Price     money.Money
}

func (r ShoeRental) validate() error {
	if r.Available && r.Price.IsZero() {
		return ErrShoeRentalPrice
	}
	return nil
}

type Session struct {
	id              uuid.UUID
	guideID         uuid.UUID
	teamName        *string
	date            time.Time
	timeSlot        string
	startTime       StartTime
	status          Status
	isMagicRotation bool
	shoeRental      ShoeRental
	links           []Link
	createdAt       time.Time
	updatedAt       time.Time
}

type Params struct {
	GuideID         uuid.UUID
	TeamName        *string
	Date            time.Time
	TimeSlot        string
	StartTime       StartTime
	IsMagicRotation bool
	ShoeRental      ShoeRental
	Links           []Link
}

func NewSession(p Params, now time.Time) (*Session, error) {
	p.TimeSlot = strings.TrimSpace(p.TimeSlot)
	if p.TimeSlot == "" {
		return nil, ErrEmptyTimeSlot
	}
	if err := p.ShoeRental.validate(); err != nil {
		return nil, err
	}
	links, err := normalizeLinks(p.Links, p.IsMagicRotation)
	if err != nil {
		return nil, err
	}

	return &Session{
		id:              uuid.New(),
		guideID:         p.GuideID,
		teamName:        p.TeamName,
		date:            p.Date,
		timeSlot:        p.TimeSlot,
		startTime:       p.StartTime,
		status:          StatusOpen,
		isMagicRotation: p.IsMagicRotation,
		shoeRental:      p.ShoeRental,
		links:           links,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

func Reconstruct(id uuid.UUID, p Params, status Status, createdAt, updatedAt time.Time) *Session {
	return &Session{
		id:              id,
		guideID:         p.GuideID,
		teamName:        p.TeamName,
		date:            p.Date,
		timeSlot:        p.TimeSlot,
		startTime:       p.StartTime,
		status:          status,
		isMagicRotation: p.IsMagicRotation,
		shoeRental:      p.ShoeRental,
		links:           p.Links,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (s *Session) ID() uuid.UUID          { return s.id }
func (s *Session) GuideID() uuid.UUID     { return s.guideID }
func (s *Session) TeamName() *string      { return s.teamName }
func (s *Session) Date() time.Time        { return s.date }
func (s *Session) TimeSlot() string       { return s.timeSlot }
func (s *Session) StartTime() StartTime   { return s.startTime }
func (s *Session) Status() Status         { return s.status }
func (s *Session) IsMagicRotation() bool  { return s.isMagicRotation }
func (s *Session) ShoeRental() ShoeRental { return s.shoeRental }
func (s *Session) Links() []Link          { return s.links }
func (s *Session) CreatedAt() time.Time   { return s.createdAt }
func (s *Session) UpdatedAt() time.Time   { return s.updatedAt }

func (s *Session) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(s.links))
	for i, l := range s.links {
		ids[i] = l.ProductID
	}
	return ids
}

func (s *Session) Link(productID uuid.UUID) (Link, bool) {
	for _, l := range s.links {
		if l.ProductID == productID {
			return l, true
		}
	}
	return Link{}, false
}

func (s *Session) StartsAt(loc *time.Location) time.Time {
	return s.startTime.At(s.date, loc)
}

// Patch carries the fields of a partial update; nil means unchanged.
// Links, when non-nil, replaces the whole link set.
type Patch struct {
	Date            *time.Time
	TimeSlot        *string
	StartTime       *StartTime
	Status          *Status
	IsMagicRotation *bool
	ShoeRental      *ShoeRental
	TeamName        *string
	Links           []Link
}

func (s *Session) Apply(p Patch, now time.Time) error {
	next := *s

	if p.Date != nil {
		next.date = *p.Date
	}
	if p.TimeSlot != nil {
		slot := strings.TrimSpace(*p.TimeSlot)
		if slot == "" {
			return ErrEmptyTimeSlot
		}
		next.timeSlot = slot
	}
	if p.StartTime != nil {
		next.startTime = *p.StartTime
	}
	if p.Status != nil {
		if !p.Status.IsValid() {
			return ErrInvalidStatus
		}
		next.status = *p.Status
	}
	if p.IsMagicRotation != nil {
		next.isMagicRotation = *p.IsMagicRotation
	}
	if p.ShoeRental != nil {
		if err := p.ShoeRental.validate(); err != nil {
			return err
		}
		next.shoeRental = *p.ShoeRental
	}
	if p.TeamName != nil {
		next.teamName = p.TeamName
	}
	links := next.links
	if p.Links != nil {
		links = p.Links
	}
	normalized, err := normalizeLinks(links, next.isMagicRotation)
	if err != nil {
		return err
	}
	next.links = normalized
	next.updatedAt = now

	*s = next
	return nil
}

func normalizeLinks(links []Link, magicRotation bool) ([]Link, error) {
	if len(links) == 0 {
		return nil, ErrNoProducts
	}
	if magicRotation && len(links) < 2 {
		return nil, ErrRotationNeedsChoices
	}
	seen := make(map[uuid.UUID]struct{}, len(links))
	out := make([]Link, len(links))
	for i, l := range links {
		if _, dup := seen[l.ProductID]; dup {
			return nil, ErrDuplicateProduct
		}
		seen[l.ProductID] = struct{}{}
		if l.Overrides != nil {
			if err := l.Overrides.Validate(); err != nil {
				return nil, err
			}
		}
		l.Position = i
		out[i] = l
	}
	return out, nil
}
