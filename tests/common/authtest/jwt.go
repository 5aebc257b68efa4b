//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"canyon-booking/internal/domain/user"
	"canyon-booking/internal/pkg/config"
	"canyon-booking/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// JWTHelper mints tokens the way the identity provider does, so tests can act
// as any staff member.
type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) Token(t *testing.T, p user.Principal) string {
	t.Helper()
	duration, err := time.ParseDuration(h.cfg.Duration)
	require.NoError(t, err)
	token, err := jwt.NewService(h.cfg.Secret, h.cfg.Issuer, duration).GenerateToken(p)
	require.NoError(t, err)
	return token
}

// As returns a token for a fresh principal with role, plus that principal.
func (h *JWTHelper) As(t *testing.T, role user.Role, team *string) (string, user.Principal) {
	t.Helper()
	p := user.NewPrincipal(uuid.New(), role, team)
	return h.Token(t, p), p
}

func (h *JWTHelper) ExpiredToken(t *testing.T, p user.Principal) string {
	t.Helper()
	token, err := jwt.NewService(h.cfg.Secret, h.cfg.Issuer, time.Millisecond).GenerateToken(p)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	return token
}
