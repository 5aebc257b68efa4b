//go:build unit

package money_test

import (
	"testing"

	"canyon-booking/internal/domain/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromCents(t *testing.T) {
	m, err := money.FromCents(4250)
	require.NoError(t, err)
	assert.Equal(t, int64(4250), m.Cents())
	assert.Equal(t, "42.50", m.String())

	_, err = money.FromCents(-1)
	assert.ErrorIs(t, err, money.ErrNegativeAmount)
}

func TestArithmetic(t *testing.T) {
	price := money.MustFromCents(5000)

	assert.Equal(t, int64(10000), price.Times(2).Cents())
	assert.Equal(t, int64(5001), price.Add(money.MustFromCents(1)).Cents())
	assert.True(t, price.GreaterOrEqual(money.MustFromCents(5000)))
	assert.False(t, price.GreaterOrEqual(money.MustFromCents(5001)))
	assert.True(t, money.Zero().IsZero())
}

func TestRepeatedPaymentsDoNotDrift(t *testing.T) {
	total := money.Zero()
	for range 1000 {
		total = total.Add(money.MustFromCents(10))
	}
	assert.Equal(t, int64(10000), total.Cents())
	assert.Equal(t, "100.00", total.String())
}
