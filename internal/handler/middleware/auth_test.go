//go:build unit

package middleware_test

import (
	"net/http"
	"testing"
	"time"

	"canyon-booking/internal/domain/user"
	"canyon-booking/internal/handler/middleware"
	"canyon-booking/internal/pkg/jwt"
	"canyon-booking/internal/usecase"
	"canyon-booking/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type AuthMiddlewareTestSuite struct {
	suite.Suite
	router *gin.Engine
	jwt    *jwt.Service
}

func (s *AuthMiddlewareTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.jwt = jwt.NewService("test-secret", "canyon-booking", time.Hour)
	auth := middleware.NewAuthMiddleware(usecase.NewTokenValidator(s.jwt))

	whoami := func(c *gin.Context) {
		p, ok := middleware.GetPrincipal(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": p.ID.String(), "role": p.Role.String()})
	}

	s.router = gin.New()
	s.router.GET("/private", auth.RequireAuth(), whoami)
	s.router.DELETE("/admin", auth.RequireAuth(), auth.RequireRole(user.Role.CanHardDelete), whoami)
	s.router.GET("/public", auth.OptionalAuth(), whoami)
	s.router.GET("/role-only", auth.RequireRole(user.Role.CanHardDelete), whoami)
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareTestSuite))
}

func (s *AuthMiddlewareTestSuite) token(role user.Role) (string, user.Principal) {
	p := user.NewPrincipal(uuid.New(), role, nil)
	tok, err := s.jwt.GenerateToken(p)
	s.Require().NoError(err)
	return tok, p
}

func (s *AuthMiddlewareTestSuite) TestRequireAuth() {
	s.Run("error: missing token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/private", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Access token required")
	})

	s.Run("error: garbage token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/private", nil, "not.a.jwt")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Invalid or expired token")
	})

	s.Run("error: token signed with another key", func() {
		other := jwt.NewService("other-secret", "canyon-booking", time.Hour)
		tok, err := other.GenerateToken(user.NewPrincipal(uuid.New(), user.RoleAdmin, nil))
		s.Require().NoError(err)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/private", nil, tok)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Invalid or expired token")
	})

	s.Run("success: principal is exposed to handlers", func() {
		tok, p := s.token(user.RoleGuide)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/private", nil, tok)
		var body map[string]string
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(p.ID.String(), body["id"])
		s.Equal("guide", body["role"])
	})
}

func (s *AuthMiddlewareTestSuite) TestRequireRole() {
	s.Run("error: guide cannot hard delete", func() {
		tok, _ := s.token(user.RoleGuide)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/admin", nil, tok)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "Insufficient permissions")
	})

	s.Run("success: admin passes", func() {
		tok, _ := s.token(user.RoleAdmin)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/admin", nil, tok)
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: unauthenticated when mounted without RequireAuth", func() {
		tok, _ := s.token(user.RoleAdmin)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/role-only", nil, tok)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Access token required")
	})
}

func (s *AuthMiddlewareTestSuite) TestOptionalAuth() {
	s.Run("no token stays anonymous", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/public", nil, "")
		var body map[string]bool
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.True(body["anonymous"])
	})

	s.Run("invalid token stays anonymous", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/public", nil, "broken")
		var body map[string]bool
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.True(body["anonymous"])
	})

	s.Run("valid token identifies the caller", func() {
		tok, p := s.token(user.RoleLeader)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/public", nil, tok)
		var body map[string]string
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(p.ID.String(), body["id"])
	})
}
