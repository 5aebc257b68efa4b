package booking

import (
	"regexp"
	"strings"

	"canyon-booking/internal/pkg/errs"
)

var (
	ErrMissingClientName = errs.Class("client first and last name are required", errs.ErrValidation)
	ErrInvalidEmail      = errs.Class("invalid email format", errs.ErrValidation)
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type Client struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Nationality string
}

func NewClient(firstName, lastName, email, phone, nationality string) (Client, error) {
	c := Client{
		FirstName:   strings.TrimSpace(firstName),
		LastName:    strings.TrimSpace(lastName),
		Email:       strings.ToLower(strings.TrimSpace(email)),
		Phone:       strings.TrimSpace(phone),
		Nationality: strings.TrimSpace(nationality),
	}
	if c.FirstName == "" || c.LastName == "" {
		return Client{}, ErrMissingClientName
	}
	if !emailRegex.MatchString(c.Email) {
		return Client{}, ErrInvalidEmail
	}
	return c, nil
}

func (c Client) FullName() string {
	return c.FirstName + " " + c.LastName
}
