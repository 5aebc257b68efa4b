package response

import (
	"canyon-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type AvailableSessionResponse struct {
	SessionID       uuid.UUID              `json:"sessionId"`
	GuideID         uuid.UUID              `json:"guideId"`
	TeamName        *string                `json:"teamName"`
	Date            string                 `json:"date"`
	TimeSlot        string                 `json:"timeSlot"`
	StartTime       string                 `json:"startTime"`
	IsMagicRotation bool                   `json:"isMagicRotation"`
	Product         SessionProductResponse `json:"product"`
	Available       int                    `json:"available"`
	IsAutoClosed    bool                   `json:"isAutoClosed"`
}

type ProductAvailabilityResponse struct {
	Product  ProductResponse            `json:"product"`
	Sessions []AvailableSessionResponse `json:"sessions"`
}

type NextDatesResponse struct {
	Dates []string `json:"dates"`
}

func FromProductAvailability(v queries.ProductAvailabilityView) ProductAvailabilityResponse {
	res := ProductAvailabilityResponse{
		Product:  FromProductView(v.Product),
		Sessions: make([]AvailableSessionResponse, len(v.Sessions)),
	}
	for i := range v.Sessions {
		mapInto(&res.Sessions[i], &v.Sessions[i])
	}
	return res
}

func FromAvailability(vs []queries.ProductAvailabilityView) []ProductAvailabilityResponse {
	res := make([]ProductAvailabilityResponse, len(vs))
	for i, v := range vs {
		res[i] = FromProductAvailability(v)
	}
	return res
}

func FromNextDates(dates []string) NextDatesResponse {
	if dates == nil {
		dates = []string{}
	}
	return NextDatesResponse{Dates: dates}
}
