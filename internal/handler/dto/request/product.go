package request

import (
	"canyon-booking/internal/domain/money"
	"canyon-booking/internal/domain/product"

	"github.com/jinzhu/copier"
)

type CreateProductRequest struct {
	Name                 string `json:"name" binding:"required,max=200"`
	PriceIndividual      int64  `json:"priceIndividual" binding:"min=0"`
	PriceGroup           *int64 `json:"priceGroup" binding:"omitempty,min=0"`
	DurationMinutes      int    `json:"durationMinutes" binding:"min=0"`
	MaxCapacity          int    `json:"maxCapacity" binding:"required,min=1"`
	ActivityType         string `json:"activityType"`
	AutoCloseHoursBefore *int   `json:"autoCloseHoursBefore" binding:"omitempty,min=0"`
	Color                string `json:"color"`
	Region               string `json:"region"`
	ImageURL             string `json:"imageUrl" binding:"omitempty,url"`
}

func (r *CreateProductRequest) ToAttributes() (product.Attributes, error) {
	price, err := money.FromCents(r.PriceIndividual)
	if err != nil {
		return product.Attributes{}, err
	}
	attrs := product.Attributes{
		Name:                 r.Name,
		PriceIndividual:      price,
		DurationMinutes:      r.DurationMinutes,
		MaxCapacity:          r.MaxCapacity,
		ActivityType:         r.ActivityType,
		AutoCloseHoursBefore: r.AutoCloseHoursBefore,
		Color:                r.Color,
		Region:               r.Region,
		ImageURL:             r.ImageURL,
	}
	if r.PriceGroup != nil {
		group, err := money.FromCents(*r.PriceGroup)
		if err != nil {
			return product.Attributes{}, err
		}
		attrs.PriceGroup = &group
	}
	return attrs, nil
}

// UpdateProductRequest patches the canonical product; absent fields are kept.
type UpdateProductRequest struct {
	Name                 *string `json:"name" binding:"omitempty,min=1,max=200"`
	PriceIndividual      *int64  `json:"priceIndividual" binding:"omitempty,min=0"`
	PriceGroup           *int64  `json:"priceGroup" binding:"omitempty,min=0"`
	DurationMinutes      *int    `json:"durationMinutes" binding:"omitempty,min=0"`
	MaxCapacity          *int    `json:"maxCapacity" binding:"omitempty,min=1"`
	ActivityType         *string `json:"activityType"`
	AutoCloseHoursBefore *int    `json:"autoCloseHoursBefore" binding:"omitempty,min=0"`
	Color                *string `json:"color"`
	Region               *string `json:"region"`
	ImageURL             *string `json:"imageUrl" binding:"omitempty,url"`
}

func (r *UpdateProductRequest) ToPatch() (product.Overrides, error) {
	var patch product.Overrides
	if err := copier.Copy(&patch, r); err != nil {
		return product.Overrides{}, err
	}
	return patch, nil
}
