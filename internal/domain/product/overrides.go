package product

import (
	"canyon-booking/internal/pkg/errs"
)

var ErrInvalidOverride = errs.Class("invalid product override", errs.ErrValidation)

// Overrides is a partial attribute patch. A nil field means "not overridden".
// It doubles as the patch type for product updates.
type Overrides struct {
	Name                 *string `json:"name,omitempty"`
	PriceIndividual      *int64  `json:"priceIndividual,omitempty"`
	PriceGroup           *int64  `json:"priceGroup,omitempty"`
	DurationMinutes      *int    `json:"durationMinutes,omitempty"`
	MaxCapacity          *int    `json:"maxCapacity,omitempty"`
	ActivityType         *string `json:"activityType,omitempty"`
	AutoCloseHoursBefore *int    `json:"autoCloseHoursBefore,omitempty"`
	Color                *string `json:"color,omitempty"`
	Region               *string `json:"region,omitempty"`
	ImageURL             *string `json:"imageUrl,omitempty"`
}

func (o Overrides) IsEmpty() bool {
	return o == Overrides{}
}

func (o Overrides) Validate() error {
	if o.PriceIndividual != nil && *o.PriceIndividual < 0 {
		return errs.Wrap(ErrInvalidOverride, "priceIndividual")
	}
	if o.PriceGroup != nil && *o.PriceGroup < 0 {
		return errs.Wrap(ErrInvalidOverride, "priceGroup")
	}
	if o.MaxCapacity != nil && *o.MaxCapacity < 1 {
		return errs.Wrap(ErrInvalidOverride, "maxCapacity")
	}
	if o.DurationMinutes != nil && *o.DurationMinutes < 0 {
		return errs.Wrap(ErrInvalidOverride, "durationMinutes")
	}
	if o.AutoCloseHoursBefore != nil && *o.AutoCloseHoursBefore < 0 {
		return errs.Wrap(ErrInvalidOverride, "autoCloseHoursBefore")
	}
	return nil
}

// MergeOverrides shallow-merges a session-scoped patch onto the canonical product.
// The canonical product is never modified.
func MergeOverrides(canonical Effective, o *Overrides) Effective {
	if o == nil || o.IsEmpty() {
		return canonical
	}
	return Effective{
		ID:         canonical.ID,
		OwnerID:    canonical.OwnerID,
		Attributes: o.apply(canonical.Attributes),
	}
}
