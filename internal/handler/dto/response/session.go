package response

import (
	"time"

	"canyon-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type ProductResponse struct {
	ID                   uuid.UUID `json:"id"`
	OwnerID              uuid.UUID `json:"ownerId"`
	Name                 string    `json:"name"`
	PriceIndividual      int64     `json:"priceIndividual"`
	PriceGroup           *int64    `json:"priceGroup"`
	DurationMinutes      int       `json:"durationMinutes"`
	MaxCapacity          int       `json:"maxCapacity"`
	ActivityType         string    `json:"activityType"`
	AutoCloseHoursBefore *int      `json:"autoCloseHoursBefore"`
	Color                string    `json:"color"`
	Region               string    `json:"region"`
	ImageURL             string    `json:"imageUrl"`
}

type SessionProductResponse struct {
	ProductResponse
	Position      int     `json:"position"`
	HasOverrides  bool    `json:"hasOverrides"`
	Occupied      int     `json:"occupied"`
	Available     int     `json:"available"`
	IsLocked      bool    `json:"isLocked"`
	BlockedReason *string `json:"blockedReason"`
	IsAutoClosed  bool    `json:"isAutoClosed"`
}

type SessionResponse struct {
	ID                  uuid.UUID                `json:"id"`
	GuideID             uuid.UUID                `json:"guideId"`
	TeamName            *string                  `json:"teamName"`
	Date                string                   `json:"date"`
	TimeSlot            string                   `json:"timeSlot"`
	StartTime           string                   `json:"startTime"`
	StartsAt            time.Time                `json:"startsAt"`
	Status              string                   `json:"status"`
	IsMagicRotation     bool                     `json:"isMagicRotation"`
	ShoeRentalAvailable bool                     `json:"shoeRentalAvailable"`
	ShoeRentalPrice     int64                    `json:"shoeRentalPrice"`
	LockedProductID     *uuid.UUID               `json:"lockedProductId"`
	BookedPeople        int                      `json:"bookedPeople"`
	Products            []SessionProductResponse `json:"products"`
	CreatedAt           time.Time                `json:"createdAt"`
	UpdatedAt           time.Time                `json:"updatedAt"`
}

type BookingSummaryResponse struct {
	ID             uuid.UUID `json:"id"`
	SessionID      uuid.UUID `json:"sessionId"`
	ProductID      uuid.UUID `json:"productId"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	NumberOfPeople int       `json:"numberOfPeople"`
	TotalPrice     int64     `json:"totalPrice"`
	AmountPaid     int64     `json:"amountPaid"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

type SessionDetailResponse struct {
	SessionResponse
	Bookings []BookingSummaryResponse `json:"bookings"`
}

type SessionPageResponse struct {
	Items      []SessionResponse `json:"items"`
	NextCursor *string           `json:"nextCursor"`
}

func FromProductView(v queries.ProductView) ProductResponse {
	var res ProductResponse
	mapInto(&res, &v)
	return res
}

func FromProductViews(vs []queries.ProductView) []ProductResponse {
	res := make([]ProductResponse, len(vs))
	for i, v := range vs {
		res[i] = FromProductView(v)
	}
	return res
}

func FromSessionView(v queries.SessionView) SessionResponse {
	var res SessionResponse
	mapInto(&res, &v)
	if res.Products == nil {
		res.Products = []SessionProductResponse{}
	}
	return res
}

func FromSessionViews(vs []queries.SessionView) []SessionResponse {
	res := make([]SessionResponse, len(vs))
	for i, v := range vs {
		res[i] = FromSessionView(v)
	}
	return res
}

func FromSessionDetail(v *queries.SessionDetailView) SessionDetailResponse {
	res := SessionDetailResponse{
		SessionResponse: FromSessionView(v.SessionView),
		Bookings:        make([]BookingSummaryResponse, len(v.Bookings)),
	}
	for i := range v.Bookings {
		mapInto(&res.Bookings[i], &v.Bookings[i])
	}
	return res
}

func FromSessionPage(p *queries.SessionPage) SessionPageResponse {
	return SessionPageResponse{Items: FromSessionViews(p.Items), NextCursor: p.NextCursor}
}
