package booking

import "canyon-booking/internal/pkg/errs"

var ErrInvalidStatus = errs.Class("invalid booking status", errs.ErrValidation)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	default:
		return false
	}
}

func NewStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

type Action string

const (
	ActionCreated      Action = "created"
	ActionModified     Action = "modified"
	ActionPayment      Action = "payment"
	ActionCancelled    Action = "cancelled"
	ActionParticipants Action = "participants"
)

func (a Action) String() string {
	return string(a)
}
