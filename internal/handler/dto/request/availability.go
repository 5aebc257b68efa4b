package request

import (
	"canyon-booking/internal/pkg/errs"
	"canyon-booking/internal/usecase/queries"
)

var (
	ErrMissingDate    = errs.Class("date or from is required", errs.ErrValidation)
	ErrMissingProduct = errs.Class("productId is required", errs.ErrValidation)
)

// AvailabilityQuery serves both the search and the per-product endpoints.
// date is shorthand for a one-day range.
type AvailabilityQuery struct {
	Date         string `form:"date"`
	From         string `form:"from"`
	To           string `form:"to"`
	GuideID      string `form:"guideId"`
	TeamName     string `form:"teamName"`
	ProductID    string `form:"productId"`
	Participants int    `form:"participants" binding:"omitempty,min=1"`
}

func (q *AvailabilityQuery) ToParams() (queries.SearchParams, error) {
	from := q.From
	if q.Date != "" {
		from = q.Date
	}
	start, err := optionalDate(from)
	if err != nil {
		return queries.SearchParams{}, err
	}
	if start == nil {
		return queries.SearchParams{}, ErrMissingDate
	}
	p := queries.SearchParams{From: *start, Participants: q.Participants}

	if q.Date == "" {
		end, err := optionalDate(q.To)
		if err != nil {
			return queries.SearchParams{}, err
		}
		if end != nil {
			p.To = *end
		}
	}
	if p.GuideID, err = optionalUUID(q.GuideID); err != nil {
		return queries.SearchParams{}, err
	}
	if p.ProductID, err = optionalUUID(q.ProductID); err != nil {
		return queries.SearchParams{}, err
	}
	p.TeamName = optionalString(q.TeamName)
	return p, nil
}

type NextDatesQuery struct {
	From         string `form:"from"`
	ProductID    string `form:"productId"`
	GuideID      string `form:"guideId"`
	TeamName     string `form:"teamName"`
	Participants int    `form:"participants" binding:"omitempty,min=1"`
}

// An absent from scans from today.
func (q *NextDatesQuery) ToParams() (queries.NextDatesParams, error) {
	var p queries.NextDatesParams
	from, err := optionalDate(q.From)
	if err != nil {
		return p, err
	}
	if from != nil {
		p.From = *from
	}
	if p.ProductID, err = optionalUUID(q.ProductID); err != nil {
		return p, err
	}
	if p.GuideID, err = optionalUUID(q.GuideID); err != nil {
		return p, err
	}
	p.TeamName = optionalString(q.TeamName)
	p.Participants = q.Participants
	return p, nil
}
