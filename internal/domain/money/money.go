// Package money holds amounts as integer cents so that repeated payments never drift.
package money

import (
	"fmt"

	"canyon-booking/internal/pkg/errs"
)

var ErrNegativeAmount = errs.Class("amount cannot be negative", errs.ErrValidation)

type Money struct {
	cents int64
}

func Zero() Money {
	return Money{}
}

func FromCents(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativeAmount
	}
	return Money{cents: cents}, nil
}

// MustFromCents is for values already validated by the store.
func MustFromCents(cents int64) Money {
	m, err := FromCents(cents)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Cents() int64 { return m.cents }

func (m Money) IsZero() bool { return m.cents == 0 }

func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

func (m Money) Times(n int) Money {
	return Money{cents: m.cents * int64(n)}
}

func (m Money) GreaterOrEqual(other Money) bool {
	return m.cents >= other.cents
}

func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", m.cents/100, m.cents%100)
}
