package queries

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"canyon-booking/internal/domain/session"
	"canyon-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	MaxListLimit     = 200
	DefaultListLimit = 20
	CursorVersionV1  = "v1"
)

var ErrInvalidCursor = errs.Class("invalid cursor", errs.ErrValidation)

// ScheduleCursor is the keyset position of a session in (date, start time, id) order.
type ScheduleCursor struct {
	Date      time.Time
	StartTime session.StartTime
	ID        uuid.UUID
}

func EncodeScheduleCursor(c ScheduleCursor) string {
	raw := fmt.Sprintf("%s:%s|%s|%s", CursorVersionV1, c.Date.Format(session.DateFormat), c.StartTime, c.ID)
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

func DecodeScheduleCursor(cursor string) (ScheduleCursor, error) {
	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return ScheduleCursor{}, errs.Wrap(ErrInvalidCursor, "not base64url")
	}
	payload, ok := strings.CutPrefix(string(decoded), CursorVersionV1+":")
	if !ok {
		return ScheduleCursor{}, errs.Wrap(ErrInvalidCursor, "unknown version")
	}

	parts := strings.Split(payload, "|")
	if len(parts) != 3 {
		return ScheduleCursor{}, errs.Wrap(ErrInvalidCursor, "expected '<date>|<start>|<uuid>'")
	}
	date, err := session.ParseDate(parts[0])
	if err != nil {
		return ScheduleCursor{}, errs.Wrap(ErrInvalidCursor, "date")
	}
	start, err := session.ParseStartTime(parts[1])
	if err != nil {
		return ScheduleCursor{}, errs.Wrap(ErrInvalidCursor, "start time")
	}
	id, err := uuid.Parse(parts[2])
	if err != nil {
		return ScheduleCursor{}, errs.Wrap(ErrInvalidCursor, "id")
	}
	return ScheduleCursor{Date: date, StartTime: start, ID: id}, nil
}

func CursorOf(s *session.Session) ScheduleCursor {
	return ScheduleCursor{Date: s.Date(), StartTime: s.StartTime(), ID: s.ID()}
}

func ValidateLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
