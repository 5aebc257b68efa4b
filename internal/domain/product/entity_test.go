//go:build unit

package product_test

import (
	"testing"
	"time"

	"canyon-booking/internal/domain/money"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/pkg/ptr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAttributes() product.Attributes {
	return product.Attributes{
		Name:            "Canyon du Furon",
		PriceIndividual: money.MustFromCents(5500),
		DurationMinutes: 180,
		MaxCapacity:     8,
		ActivityType:    "canyoning",
	}
}

func TestNewProduct(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	owner := uuid.New()

	t.Run("valid product", func(t *testing.T) {
		p, err := product.NewProduct(owner, validAttributes(), now)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, p.ID())
		assert.Equal(t, owner, p.OwnerID())
		assert.Equal(t, now, p.CreatedAt())
		assert.Equal(t, 8, p.MaxCapacity())
	})

	tests := []struct {
		name   string
		mutate func(*product.Attributes)
		errIs  error
	}{
		{"blank name", func(a *product.Attributes) { a.Name = "   " }, product.ErrEmptyName},
		{"zero capacity", func(a *product.Attributes) { a.MaxCapacity = 0 }, product.ErrInvalidCapacity},
		{"negative duration", func(a *product.Attributes) { a.DurationMinutes = -5 }, product.ErrInvalidDuration},
		{"negative auto close", func(a *product.Attributes) { a.AutoCloseHoursBefore = ptr.To(-2) }, product.ErrInvalidAutoClose},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := validAttributes()
			tt.mutate(&attrs)
			_, err := product.NewProduct(owner, attrs, now)
			assert.ErrorIs(t, err, tt.errIs)
		})
	}
}

func TestProduct_Update(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	p, err := product.NewProduct(uuid.New(), validAttributes(), now)
	require.NoError(t, err)

	later := now.Add(time.Hour)
	require.NoError(t, p.Update(product.Overrides{PriceIndividual: ptr.To(int64(6000))}, later))

	assert.Equal(t, int64(6000), p.PriceIndividual().Cents())
	assert.Equal(t, "Canyon du Furon", p.Name(), "untouched fields are preserved")
	assert.Equal(t, later, p.UpdatedAt())

	err = p.Update(product.Overrides{Name: ptr.To(" ")}, later)
	assert.ErrorIs(t, err, product.ErrEmptyName)
	assert.Equal(t, "Canyon du Furon", p.Name(), "failed update leaves product unchanged")
}
