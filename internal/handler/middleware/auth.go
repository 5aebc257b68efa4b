package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"canyon-booking/internal/domain/user"
	"canyon-booking/internal/handler/httperr"
	"canyon-booking/internal/pkg/errs"
	"canyon-booking/internal/usecase"

	"github.com/gin-gonic/gin"
)

var (
	errMissingToken      = errs.Class("access token required", errs.ErrUnauthenticated)
	errInsufficientScope = errs.Class("insufficient permissions", errs.ErrForbidden)
)

type AuthMiddleware struct {
	tokenValidator usecase.TokenValidator
}

const ctxPrincipalKey = "principal"

func NewAuthMiddleware(tokenValidator usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			httperr.AbortWithError(c, http.StatusUnauthorized, errMissingToken, "Access token required", nil)
			return
		}

		principal, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid or expired token", nil)
			return
		}

		c.Set(ctxPrincipalKey, principal)
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(allowed func(user.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			httperr.AbortWithError(c, http.StatusUnauthorized, errMissingToken, "Access token required", nil)
			return
		}
		if !allowed(principal.Role) {
			httperr.AbortWithError(c, http.StatusForbidden, errInsufficientScope, "Insufficient permissions", nil)
			return
		}
		c.Next()
	}
}

// OptionalAuth authenticates the request if a token is present, but does not abort on failure.
// Public availability routes use it so that logs still carry the caller.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		principal, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(ctxPrincipalKey, principal)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

func GetPrincipal(c *gin.Context) (user.Principal, bool) {
	v, exists := c.Get(ctxPrincipalKey)
	if !exists {
		return user.Principal{}, false
	}

	p, ok := v.(user.Principal)
	return p, ok
}

// SetPrincipal is used by tests that bypass token parsing.
func SetPrincipal(c *gin.Context, p user.Principal) {
	c.Set(ctxPrincipalKey, p)
}
