package request

import (
	"canyon-booking/internal/domain/money"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/domain/session"
	"canyon-booking/internal/pkg/errs"
	"canyon-booking/internal/usecase/commands"
	"canyon-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

var ErrOverrideForUnlinkedProduct = errs.Class("productOverrides names a product missing from productIds", errs.ErrValidation)

type CreateSessionRequest struct {
	Date                string     `json:"date" binding:"required"`
	TimeSlot            string     `json:"timeSlot" binding:"required"`
	StartTime           string     `json:"startTime" binding:"required"`
	IsMagicRotation     bool       `json:"isMagicRotation"`
	ShoeRentalAvailable bool       `json:"shoeRentalAvailable"`
	ShoeRentalPrice     int64      `json:"shoeRentalPrice" binding:"min=0"`
	TeamName            *string    `json:"teamName"`
	GuideID             *uuid.UUID `json:"guideId"`
	// Order of productIds is the display order of the session.
	ProductIDs       []uuid.UUID                     `json:"productIds" binding:"required,min=1"`
	ProductOverrides map[uuid.UUID]product.Overrides `json:"productOverrides"`
}

func (r *CreateSessionRequest) ToInput() (commands.CreateSessionInput, error) {
	date, err := session.ParseDate(r.Date)
	if err != nil {
		return commands.CreateSessionInput{}, err
	}
	start, err := session.ParseStartTime(r.StartTime)
	if err != nil {
		return commands.CreateSessionInput{}, err
	}
	price, err := money.FromCents(r.ShoeRentalPrice)
	if err != nil {
		return commands.CreateSessionInput{}, err
	}
	links, err := toLinks(r.ProductIDs, r.ProductOverrides)
	if err != nil {
		return commands.CreateSessionInput{}, err
	}

	return commands.CreateSessionInput{
		Params: session.Params{
			TeamName:        r.TeamName,
			Date:            date,
			TimeSlot:        r.TimeSlot,
			StartTime:       start,
			IsMagicRotation: r.IsMagicRotation,
			ShoeRental:      session.ShoeRental{Available: r.ShoeRentalAvailable, Price: price},
			Links:           links,
		},
		GuideID: r.GuideID,
	}, nil
}

// UpdateSessionRequest is a partial update. Shoe rental fields travel together:
// sending one of them replaces both.
type UpdateSessionRequest struct {
	Date                *string                         `json:"date"`
	TimeSlot            *string                         `json:"timeSlot"`
	StartTime           *string                         `json:"startTime"`
	Status              *string                         `json:"status"`
	IsMagicRotation     *bool                           `json:"isMagicRotation"`
	ShoeRentalAvailable *bool                           `json:"shoeRentalAvailable"`
	ShoeRentalPrice     *int64                          `json:"shoeRentalPrice" binding:"omitempty,min=0"`
	TeamName            *string                         `json:"teamName"`
	ProductIDs          []uuid.UUID                     `json:"productIds" binding:"omitempty,min=1"`
	ProductOverrides    map[uuid.UUID]product.Overrides `json:"productOverrides"`
}

func (r *UpdateSessionRequest) ToPatch() (session.Patch, error) {
	var p session.Patch
	if r.Date != nil {
		d, err := session.ParseDate(*r.Date)
		if err != nil {
			return session.Patch{}, err
		}
		p.Date = &d
	}
	if r.StartTime != nil {
		st, err := session.ParseStartTime(*r.StartTime)
		if err != nil {
			return session.Patch{}, err
		}
		p.StartTime = &st
	}
	if r.Status != nil {
		status, err := session.NewStatus(*r.Status)
		if err != nil {
			return session.Patch{}, err
		}
		p.Status = &status
	}
	if r.ShoeRentalAvailable != nil || r.ShoeRentalPrice != nil {
		var rental session.ShoeRental
		if r.ShoeRentalAvailable != nil {
			rental.Available = *r.ShoeRentalAvailable
		}
		if r.ShoeRentalPrice != nil {
			price, err := money.FromCents(*r.ShoeRentalPrice)
			if err != nil {
				return session.Patch{}, err
			}
			rental.Price = price
		}
		p.ShoeRental = &rental
	}
	if r.ProductIDs != nil {
		links, err := toLinks(r.ProductIDs, r.ProductOverrides)
		if err != nil {
			return session.Patch{}, err
		}
		p.Links = links
	} else if len(r.ProductOverrides) > 0 {
		return session.Patch{}, ErrOverrideForUnlinkedProduct
	}
	p.TimeSlot = r.TimeSlot
	p.IsMagicRotation = r.IsMagicRotation
	p.TeamName = r.TeamName
	return p, nil
}

func toLinks(ids []uuid.UUID, overrides map[uuid.UUID]product.Overrides) ([]session.Link, error) {
	links := make([]session.Link, len(ids))
	linked := make(map[uuid.UUID]bool, len(ids))
	for i, id := range ids {
		links[i] = session.Link{ProductID: id, Position: i}
		if o, ok := overrides[id]; ok && !o.IsEmpty() {
			links[i].Overrides = &o
		}
		linked[id] = true
	}
	for id := range overrides {
		if !linked[id] {
			return nil, ErrOverrideForUnlinkedProduct
		}
	}
	return links, nil
}

// DeleteSessionRequest is the optional body of a session delete.
type DeleteSessionRequest struct {
	Action          string     `json:"action"`
	TargetSessionID *uuid.UUID `json:"targetSessionId"`
	TargetProductID *uuid.UUID `json:"targetProductId"`
}

func (r *DeleteSessionRequest) ToInput() (commands.DeleteSessionInput, error) {
	action, err := commands.ParseDeleteAction(r.Action)
	if err != nil {
		return commands.DeleteSessionInput{}, err
	}
	return commands.DeleteSessionInput{
		Action:          action,
		TargetSessionID: r.TargetSessionID,
		TargetProductID: r.TargetProductID,
	}, nil
}

// SessionListQuery binds the schedule listing query string.
type SessionListQuery struct {
	From     string `form:"from"`
	To       string `form:"to"`
	GuideID  string `form:"guideId"`
	TeamName string `form:"teamName"`
	Cursor   string `form:"cursor"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

func (q *SessionListQuery) ToParams() (queries.SessionListParams, error) {
	from, err := optionalDate(q.From)
	if err != nil {
		return queries.SessionListParams{}, err
	}
	to, err := optionalDate(q.To)
	if err != nil {
		return queries.SessionListParams{}, err
	}
	guideID, err := optionalUUID(q.GuideID)
	if err != nil {
		return queries.SessionListParams{}, err
	}
	return queries.SessionListParams{
		From:     from,
		To:       to,
		GuideID:  guideID,
		TeamName: optionalString(q.TeamName),
		After:    q.Cursor,
		Limit:    q.Limit,
	}, nil
}
