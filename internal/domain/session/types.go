package session

import (
	"time"

	"canyon-booking/internal/pkg/errs"
)

const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04"
)

var (
	ErrInvalidDate      = errs.Class("date must use YYYY-MM-DD", errs.ErrValidation)
	ErrInvalidStartTime = errs.Class("start time must use HH:MM", errs.ErrValidation)
	ErrInvalidStatus    = errs.Class("invalid session status", errs.ErrValidation)
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
	StatusFull   Status = "full"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusFull:
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

// ParseDate parses a calendar date; the result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

type StartTime struct {
	hour   int
	minute int
}

func ParseStartTime(s string) (StartTime, error) {
	t, err := time.Parse(TimeFormat, s)
	if err != nil || len(s) != len(TimeFormat) {
		return StartTime{}, ErrInvalidStartTime
	}
	return StartTime{hour: t.Hour(), minute: t.Minute()}, nil
}

func (t StartTime) String() string {
	return time.Date(0, 1, 1, t.hour, t.minute, 0, 0, time.UTC).Format(TimeFormat)
}

func (t StartTime) Minutes() int {
	return t.hour*60 + t.minute
}

// At combines a calendar date with the start time in the business location.
func (t StartTime) At(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.hour, t.minute, 0, 0, loc)
}
