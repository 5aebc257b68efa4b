//go:build unit

package jwt_test

import (
	"testing"
	"time"

	"canyon-booking/internal/domain/user"
	"canyon-booking/internal/pkg/errs"
	"canyon-booking/internal/pkg/jwt"
	"canyon-booking/internal/pkg/ptr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_RoundTrip(t *testing.T) {
	svc := jwt.NewService("secret", "canyon-booking", time.Hour)
	p := user.NewPrincipal(uuid.New(), user.RoleGuide, ptr.To("north"))

	token, err := svc.GenerateToken(p)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, p.ID, claims.UserID)
	assert.Equal(t, "guide", claims.Role)
	require.NotNil(t, claims.TeamName)
	assert.Equal(t, "north", *claims.TeamName)
}

func TestService_Rejects(t *testing.T) {
	svc := jwt.NewService("secret", "canyon-booking", time.Hour)
	token, err := svc.GenerateToken(user.NewPrincipal(uuid.New(), user.RoleAdmin, nil))
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := jwt.NewService("other", "canyon-booking", time.Hour).ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
		assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := jwt.NewService("secret", "someone-else", time.Hour).ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired, err := jwt.NewService("secret", "canyon-booking", -time.Minute).
			GenerateToken(user.NewPrincipal(uuid.New(), user.RoleGuide, nil))
		require.NoError(t, err)
		_, err = svc.ValidateToken(expired)
		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})
}
