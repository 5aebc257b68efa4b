package request

import (
	"strings"
	"time"

	"canyon-booking/internal/domain/session"
	"canyon-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrInvalidID = errs.Class("invalid id format", errs.ErrValidation)

// ParseID parses a path or query identifier.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}

func optionalUUID(s string) (*uuid.UUID, error) {
	if s = strings.TrimSpace(s); s == "" {
		return nil, nil
	}
	id, err := ParseID(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func optionalDate(s string) (*time.Time, error) {
	if s = strings.TrimSpace(s); s == "" {
		return nil, nil
	}
	d, err := session.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func optionalString(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
