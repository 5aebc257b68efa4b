//go:build unit || e2e

package builder

import (
	"time"

	"canyon-booking/internal/domain/money"
	"canyon-booking/internal/domain/product"
	reqdto "canyon-booking/internal/handler/dto/request"
	"canyon-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type ProductBuilder struct {
	ID              uuid.UUID
	OwnerID         uuid.UUID
	Name            string
	PriceCents      int64
	PriceGroupCents *int64
	DurationMinutes int
	MaxCapacity     int
	ActivityType    string
	AutoCloseHours  *int
	Color           string
	Region          string
	CreatedAt       time.Time
}

func NewProductBuilder() *ProductBuilder {
	return &ProductBuilder{
		ID:              uuid.New(),
		OwnerID:         uuid.New(),
		Name:            "Canyon du Furon",
		PriceCents:      5000,
		DurationMinutes: 180,
		MaxCapacity:     8,
		ActivityType:    "canyoning",
		Color:           "#2b7bb9",
		Region:          "Vercors",
		CreatedAt:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (p *ProductBuilder) With(mutate func(*ProductBuilder)) *ProductBuilder {
	mutate(p)
	return p
}

func (p *ProductBuilder) Attributes() product.Attributes {
	attrs := product.Attributes{
		Name:                 p.Name,
		PriceIndividual:      money.MustFromCents(p.PriceCents),
		DurationMinutes:      p.DurationMinutes,
		MaxCapacity:          p.MaxCapacity,
		ActivityType:         p.ActivityType,
		AutoCloseHoursBefore: p.AutoCloseHours,
		Color:                p.Color,
		Region:               p.Region,
	}
	if p.PriceGroupCents != nil {
		pg := money.MustFromCents(*p.PriceGroupCents)
		attrs.PriceGroup = &pg
	}
	return attrs
}

// Build methods
func (p *ProductBuilder) BuildDomain() (*product.Product, error) {
	return product.NewProduct(p.OwnerID, p.Attributes(), p.CreatedAt)
}

// BuildStored skips validation, like a row read back from the database.
func (p *ProductBuilder) BuildStored() *product.Product {
	return product.Reconstruct(p.ID, p.OwnerID, p.Attributes(), p.CreatedAt, p.CreatedAt)
}

func (p *ProductBuilder) BuildEffective() product.Effective {
	return p.BuildStored().Effective()
}

// Fluent builder methods
func (p *ProductBuilder) WithID(id uuid.UUID) *ProductBuilder {
	p.ID = id
	return p
}

func (p *ProductBuilder) WithOwner(ownerID uuid.UUID) *ProductBuilder {
	p.OwnerID = ownerID
	return p
}

func (p *ProductBuilder) WithName(name string) *ProductBuilder {
	p.Name = name
	return p
}

func (p *ProductBuilder) WithPrice(cents int64) *ProductBuilder {
	p.PriceCents = cents
	return p
}

func (p *ProductBuilder) WithGroupPrice(cents int64) *ProductBuilder {
	p.PriceGroupCents = &cents
	return p
}

func (p *ProductBuilder) WithMaxCapacity(n int) *ProductBuilder {
	p.MaxCapacity = n
	return p
}

func (p *ProductBuilder) WithAutoCloseHours(h int) *ProductBuilder {
	p.AutoCloseHours = &h
	return p
}

func (p *ProductBuilder) WithActivityType(t string) *ProductBuilder {
	p.ActivityType = t
	return p
}

// DTO build methods
func (p *ProductBuilder) BuildCreateRequestDTO() reqdto.CreateProductRequest {
	return reqdto.CreateProductRequest{
		Name:                 p.Name,
		PriceIndividual:      p.PriceCents,
		PriceGroup:           p.PriceGroupCents,
		DurationMinutes:      p.DurationMinutes,
		MaxCapacity:          p.MaxCapacity,
		ActivityType:         p.ActivityType,
		AutoCloseHoursBefore: p.AutoCloseHours,
		Color:                p.Color,
		Region:               p.Region,
	}
}

func (p *ProductBuilder) BuildView() queries.ProductView {
	return queries.ProductView{
		ID:                   p.ID,
		OwnerID:              p.OwnerID,
		Name:                 p.Name,
		PriceIndividual:      p.PriceCents,
		PriceGroup:           p.PriceGroupCents,
		DurationMinutes:      p.DurationMinutes,
		MaxCapacity:          p.MaxCapacity,
		ActivityType:         p.ActivityType,
		AutoCloseHoursBefore: p.AutoCloseHours,
		Color:                p.Color,
		Region:               p.Region,
	}
}
