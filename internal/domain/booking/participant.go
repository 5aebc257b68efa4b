package booking

import (
	"strings"

	"canyon-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrParticipantCount = errs.Class("participant count must match the number of people", errs.ErrValidation)

type Participant struct {
	ID         uuid.UUID
	BookingID  uuid.UUID
	Name       string
	Age        *int
	HeightCm   *int
	WeightKg   *int
	ShoeRental bool
	ShoeSize   *string
	IsComplete bool
}

func NewParticipant(bookingID uuid.UUID, name string, age, heightCm, weightKg *int, shoeRental bool, shoeSize *string) Participant {
	p := Participant{
		ID:         uuid.New(),
		BookingID:  bookingID,
		Name:       strings.TrimSpace(name),
		Age:        age,
		HeightCm:   heightCm,
		WeightKg:   weightKg,
		ShoeRental: shoeRental,
		ShoeSize:   shoeSize,
	}
	p.IsComplete = p.Name != "" && age != nil && heightCm != nil && weightKg != nil &&
		(!shoeRental || (shoeSize != nil && strings.TrimSpace(*shoeSize) != ""))
	return p
}

// ValidateRoster checks a full replacement set against the booking headcount and
// reports whether every participant is complete.
func (b *Booking) ValidateRoster(participants []Participant) (bool, error) {
	if len(participants) != b.numberOfPeople {
		return false, ErrParticipantCount
	}
	for _, p := range participants {
		if !p.IsComplete {
			return false, nil
		}
	}
	return true, nil
}
