package product

import (
	"strings"
	"time"

	"canyon-booking/internal/domain/money"
	"canyon-booking/internal/pkg/errs"
	"canyon-booking/internal/pkg/patch"

	"github.com/google/uuid"
)

var (
	ErrEmptyName          = errs.Class("product name is required", errs.ErrValidation)
	ErrInvalidCapacity    = errs.Class("max capacity must be at least 1", errs.ErrValidation)
	ErrInvalidDuration    = errs.Class("duration cannot be negative", errs.ErrValidation)
	ErrInvalidAutoClose   = errs.Class("auto close hours cannot be negative", errs.ErrValidation)
	ErrProductNotFound    = errs.Class("product not found", errs.ErrNotFound)
	ErrProductNotOwned    = errs.Class("product is owned by another guide", errs.ErrForbidden)
	ErrProductMissingLink = errs.Class("product is not offered by this session", errs.ErrNotFound)
)

// Attributes is the mutable attribute set shared by creation, updates and overrides.
type Attributes struct {
	Name                 string
	PriceIndividual      money.Money
	PriceGroup           *money.Money
	DurationMinutes      int
	MaxCapacity          int
	ActivityType         string
	AutoCloseHoursBefore *int
	Color                string
	Region               string
	ImageURL             string
}

func (a Attributes) validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if a.MaxCapacity < 1 {
		return ErrInvalidCapacity
	}
	if a.DurationMinutes < 0 {
		return ErrInvalidDuration
	}
	if a.AutoCloseHoursBefore != nil && *a.AutoCloseHoursBefore < 0 {
		return ErrInvalidAutoClose
	}
	return nil
}

type Product struct {
	id        uuid.UUID
	ownerID   uuid.UUID
	attrs     Attributes
	createdAt time.Time
	updatedAt time.Time
}

func NewProduct(ownerID uuid.UUID, attrs Attributes, now time.Time) (*Product, error) {
	attrs.Name = strings.TrimSpace(attrs.Name)
	if err := attrs.validate(); err != nil {
		return nil, err
	}
	return &Product{
		id:        uuid.New(),
		ownerID:   ownerID,
		attrs:     attrs,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func Reconstruct(id, ownerID uuid.UUID, attrs Attributes, createdAt, updatedAt time.Time) *Product {
	return &Product{id: id, ownerID: ownerID, attrs: attrs, createdAt: createdAt, updatedAt: updatedAt}
}

func (p *Product) ID() uuid.UUID                { return p.id }
func (p *Product) OwnerID() uuid.UUID           { return p.ownerID }
func (p *Product) Attributes() Attributes       { return p.attrs }
func (p *Product) Name() string                 { return p.attrs.Name }
func (p *Product) PriceIndividual() money.Money { return p.attrs.PriceIndividual }
func (p *Product) MaxCapacity() int             { return p.attrs.MaxCapacity }
func (p *Product) CreatedAt() time.Time         { return p.createdAt }
func (p *Product) UpdatedAt() time.Time         { return p.updatedAt }

// Update applies a partial patch; only supplied fields change.
func (p *Product) Update(o Overrides, now time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	next := o.apply(p.attrs)
	next.Name = strings.TrimSpace(next.Name)
	if err := next.validate(); err != nil {
		return err
	}
	p.attrs = next
	p.updatedAt = now
	return nil
}

// Effective is a product as presented for one session, overrides already merged.
type Effective struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	Attributes
}

func (p *Product) Effective() Effective {
	return Effective{ID: p.id, OwnerID: p.ownerID, Attributes: p.attrs}
}

func (o Overrides) apply(a Attributes) Attributes {
	out := a
	out.Name = patch.Coalesce(o.Name, a.Name)
	if o.PriceIndividual != nil {
		out.PriceIndividual = money.MustFromCents(*o.PriceIndividual)
	}
	if o.PriceGroup != nil {
		pg := money.MustFromCents(*o.PriceGroup)
		out.PriceGroup = &pg
	}
	out.DurationMinutes = patch.Coalesce(o.DurationMinutes, a.DurationMinutes)
	out.MaxCapacity = patch.Coalesce(o.MaxCapacity, a.MaxCapacity)
	out.ActivityType = patch.Coalesce(o.ActivityType, a.ActivityType)
	out.AutoCloseHoursBefore = patch.CoalescePtr(o.AutoCloseHoursBefore, a.AutoCloseHoursBefore)
	out.Color = patch.Coalesce(o.Color, a.Color)
	out.Region = patch.Coalesce(o.Region, a.Region)
	out.ImageURL = patch.Coalesce(o.ImageURL, a.ImageURL)
	return out
}
