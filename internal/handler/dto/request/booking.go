package request

import (
	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/money"
	"canyon-booking/internal/usecase/commands"

	"github.com/google/uuid"
)

type ClientRequest struct {
	FirstName   string `json:"firstName" binding:"required,max=100"`
	LastName    string `json:"lastName" binding:"required,max=100"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone" binding:"max=40"`
	Nationality string `json:"nationality" binding:"max=60"`
}

type CreateBookingRequest struct {
	SessionID      uuid.UUID     `json:"sessionId" binding:"required"`
	ProductID      uuid.UUID     `json:"productId" binding:"required"`
	ResellerID     *uuid.UUID    `json:"resellerId"`
	Client         ClientRequest `json:"client" binding:"required"`
	NumberOfPeople int           `json:"numberOfPeople" binding:"required,min=1"`
	// totalPrice defaults to the effective unit price times numberOfPeople.
	TotalPrice    *int64 `json:"totalPrice" binding:"omitempty,min=0"`
	AmountPaid    int64  `json:"amountPaid" binding:"min=0"`
	PaymentMethod string `json:"paymentMethod"`
	PaymentNotes  string `json:"paymentNotes"`
}

func (r *CreateBookingRequest) ToInput() (commands.CreateBookingInput, error) {
	client, err := booking.NewClient(r.Client.FirstName, r.Client.LastName, r.Client.Email, r.Client.Phone, r.Client.Nationality)
	if err != nil {
		return commands.CreateBookingInput{}, err
	}
	initial, err := money.FromCents(r.AmountPaid)
	if err != nil {
		return commands.CreateBookingInput{}, err
	}

	in := commands.CreateBookingInput{
		SessionID:      r.SessionID,
		ProductID:      r.ProductID,
		ResellerID:     r.ResellerID,
		Client:         client,
		NumberOfPeople: r.NumberOfPeople,
		InitialAmount:  initial,
		PaymentMethod:  r.PaymentMethod,
		PaymentNotes:   r.PaymentNotes,
	}
	if r.TotalPrice != nil {
		total, err := money.FromCents(*r.TotalPrice)
		if err != nil {
			return commands.CreateBookingInput{}, err
		}
		in.TotalPrice = &total
	}
	return in, nil
}

type MoveBookingRequest struct {
	TargetSessionID uuid.UUID  `json:"targetSessionId" binding:"required"`
	ProductID       *uuid.UUID `json:"productId"`
}

func (r *MoveBookingRequest) ToInput() commands.MoveBookingInput {
	return commands.MoveBookingInput{TargetSessionID: r.TargetSessionID, ProductID: r.ProductID}
}

type PaymentRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Method string `json:"method" binding:"required"`
	Notes  string `json:"notes" binding:"max=500"`
}

func (r *PaymentRequest) ToInput() (commands.PaymentInput, error) {
	amount, err := money.FromCents(r.Amount)
	if err != nil {
		return commands.PaymentInput{}, err
	}
	return commands.PaymentInput{Amount: amount, Method: r.Method, Notes: r.Notes}, nil
}

type ParticipantRequest struct {
	Name       string  `json:"name" binding:"max=120"`
	Age        *int    `json:"age" binding:"omitempty,min=0,max=120"`
	HeightCm   *int    `json:"heightCm" binding:"omitempty,min=0,max=250"`
	WeightKg   *int    `json:"weightKg" binding:"omitempty,min=0,max=300"`
	ShoeRental bool    `json:"shoeRental"`
	ShoeSize   *string `json:"shoeSize"`
}

type ReplaceParticipantsRequest struct {
	Participants []ParticipantRequest `json:"participants" binding:"required,dive"`
}

func (r *ReplaceParticipantsRequest) ToInput() []commands.ParticipantInput {
	out := make([]commands.ParticipantInput, len(r.Participants))
	for i, p := range r.Participants {
		out[i] = commands.ParticipantInput{
			Name:       p.Name,
			Age:        p.Age,
			HeightCm:   p.HeightCm,
			WeightKg:   p.WeightKg,
			ShoeRental: p.ShoeRental,
			ShoeSize:   p.ShoeSize,
		}
	}
	return out
}
