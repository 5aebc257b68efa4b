//go:build unit

package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	nethttptest "net/http/httptest"
	"strings"
	"testing"

	"canyon-booking/internal/domain/allocation"
	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/session"
	"canyon-booking/internal/domain/user"
	"canyon-booking/internal/handler/api"
	"canyon-booking/internal/handler/middleware"
	resdto "canyon-booking/internal/handler/dto/response"
	"canyon-booking/internal/usecase/commands"
	"canyon-booking/internal/usecase/queries"
	"canyon-booking/tests/common/builder"
	"canyon-booking/tests/common/httptest"
	"canyon-booking/tests/common/testutil"
	commandsmock "canyon-booking/tests/mock/commands"
	queriesmock "canyon-booking/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// mockAuth stands in for the token middleware: any Authorization header
// authenticates as the given principal.
func mockAuth(p user.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		middleware.SetPrincipal(c, p)
		c.Next()
	}
}

type SessionHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockSessionCommands
	mockQueries  *queriesmock.MockSessionQueries
	handler      *api.SessionHandler
	guide        user.Principal
}

func (s *SessionHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockSessionCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockSessionQueries(s.mockCtrl)
	s.handler = api.NewSessionHandler(s.mockCommands, s.mockQueries)
	s.guide = user.Principal{ID: uuid.New(), Role: user.RoleGuide}

	auth := mockAuth(s.guide)
	s.router.GET("/sessions", auth, s.handler.List)
	s.router.POST("/sessions", auth, s.handler.Create)
	s.router.GET("/sessions/:id", auth, s.handler.Get)
	s.router.PUT("/sessions/:id", auth, s.handler.Update)
	s.router.DELETE("/sessions/:id", auth, s.handler.Delete)
	s.router.GET("/sessions/:id/alternatives", auth, s.handler.Alternatives)
}

func (s *SessionHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestSessionHandlerSuite(t *testing.T) {
	suite.Run(t, new(SessionHandlerTestSuite))
}

type testCaseSession struct {
	name       string
	mutate     func(m map[string]any)
	expectCode int
}

// ================================================================================
// TestCreate
// ================================================================================

func (s *SessionHandlerTestSuite) TestCreate() {
	url := "/sessions"

	sb := builder.NewSessionBuilder().WithGuide(s.guide.ID)
	reqBody := sb.BuildCreateRequestDTO()
	created := sb.BuildStored()
	view := sb.BuildDetailView()

	validation := []testCaseSession{
		{name: "missing field: date", mutate: testutil.Field("date", nil), expectCode: http.StatusBadRequest},
		{name: "missing field: timeSlot", mutate: testutil.Field("timeSlot", nil), expectCode: http.StatusBadRequest},
		{name: "missing field: productIds", mutate: testutil.Field("productIds", nil), expectCode: http.StatusBadRequest},
		{name: "empty productIds", mutate: testutil.Field("productIds", []string{}), expectCode: http.StatusBadRequest},
		{name: "malformed date", mutate: testutil.Field("date", "01/08/2026"), expectCode: http.StatusBadRequest},
		{name: "malformed startTime", mutate: testutil.Field("startTime", "9h"), expectCode: http.StatusBadRequest},
		{name: "negative shoe rental price", mutate: testutil.Field("shoeRentalPrice", -1), expectCode: http.StatusBadRequest},
		{name: "override for unlinked product", mutate: testutil.Field("productOverrides", map[string]any{
			uuid.NewString(): map[string]any{"maxCapacity": 4},
		}), expectCode: http.StatusBadRequest},
	}

	s.Run("success: returns 201 with the session detail", func() {
		s.mockCommands.EXPECT().
			Create(gomock.Any(), s.guide, gomock.Any()).
			DoAndReturn(func(_ any, _ user.Principal, in commands.CreateSessionInput) (*session.Session, error) {
				s.Equal(sb.ProductIDs[0], in.Params.Links[0].ProductID)
				s.Equal("morning", in.Params.TimeSlot)
				return created, nil
			})
		s.mockQueries.EXPECT().Get(gomock.Any(), created.ID()).Return(view, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		var body resdto.SessionDetailResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(created.ID(), body.ID)
		s.Len(body.Products, 1)
		httptest.AssertHeaders(s.T(), rec, map[string]string{"Location": "/api/sessions/" + created.ID().String()})
	})

	s.Run("error: 400 on invalid payloads", func() {
		for _, tc := range validation {
			s.Run(tc.name, func() {
				requestMap := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, "")
			})
		}
	})

	s.Run("error: 403 when the role cannot create sessions", func() {
		s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, session.ErrTraineeCannotCreate)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "trainees cannot create sessions")
	})

	s.Run("error: 401 without a token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "")
	})
}

// ================================================================================
// TestList
// ================================================================================

func (s *SessionHandlerTestSuite) TestList() {
	s.Run("success: forwards filters and returns the page", func() {
		next := "next-cursor"
		page := &queries.SessionPage{
			Items:      []queries.SessionView{builder.NewSessionBuilder().BuildView()},
			NextCursor: &next,
		}
		s.mockQueries.EXPECT().
			List(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, p queries.SessionListParams) (*queries.SessionPage, error) {
				s.Require().NotNil(p.From)
				s.Equal("2026-08-01", p.From.Format("2006-01-02"))
				s.Equal(25, p.Limit)
				s.Equal("abc", p.After)
				return page, nil
			})

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/sessions?from=2026-08-01&limit=25&cursor=abc", nil, "bearer-token")

		var body resdto.SessionPageResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body.Items, 1)
		s.Require().NotNil(body.NextCursor)
		s.Equal(next, *body.NextCursor)
	})

	s.Run("error: 400 on a malformed date", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/sessions?from=tomorrow", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})

	s.Run("error: 400 when limit exceeds the maximum", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/sessions?limit=500", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}

// ================================================================================
// TestGet
// ================================================================================

func (s *SessionHandlerTestSuite) TestGet() {
	s.Run("success", func() {
		sb := builder.NewSessionBuilder()
		summary := builder.NewBookingBuilder().WithSession(sb.ID).BuildSummary()
		s.mockQueries.EXPECT().Get(gomock.Any(), sb.ID).Return(sb.BuildDetailView(summary), nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/sessions/"+sb.ID.String(), nil, "bearer-token")

		var body resdto.SessionDetailResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Require().Len(body.Bookings, 1)
		s.Equal(summary.ID, body.Bookings[0].ID)
	})

	s.Run("error: 400 on malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/sessions/not-a-uuid", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "invalid id format")
	})

	s.Run("error: 404 when missing", func() {
		id := uuid.New()
		s.mockQueries.EXPECT().Get(gomock.Any(), id).Return(nil, session.ErrSessionNotFound)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/sessions/"+id.String(), nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "session not found")
	})
}

// ================================================================================
// TestUpdate
// ================================================================================

func (s *SessionHandlerTestSuite) TestUpdate() {
	sb := builder.NewSessionBuilder().WithGuide(s.guide.ID)
	url := "/sessions/" + sb.ID.String()

	s.Run("success: shoe rental fields travel together", func() {
		s.mockCommands.EXPECT().
			Update(gomock.Any(), s.guide, sb.ID, gomock.Any()).
			DoAndReturn(func(_ any, _ user.Principal, _ uuid.UUID, p session.Patch) (*session.Session, error) {
				s.Require().NotNil(p.ShoeRental)
				s.False(p.ShoeRental.Available)
				s.Equal(int64(1500), p.ShoeRental.Price.Cents())
				s.Nil(p.Links)
				return sb.BuildStored(), nil
			})
		s.mockQueries.EXPECT().Get(gomock.Any(), sb.ID).Return(sb.BuildDetailView(), nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{"shoeRentalPrice": 1500}, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 409 with reason when a product still holds bookings", func() {
		s.mockCommands.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, allocation.ErrProductInUse)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url,
			map[string]any{"productIds": []string{uuid.NewString()}}, "bearer-token")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "product still holds active bookings")
		var body map[string]any
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Equal("product_in_use", body["error"].(map[string]any)["reason"])
	})

	s.Run("error: 400 on an unknown status", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{"status": "paused"}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "invalid session status")
	})

	s.Run("error: 403 for another guide's session", func() {
		s.mockCommands.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, session.ErrSessionNotOwned)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{"timeSlot": "afternoon"}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "owned by another guide")
	})
}

// ================================================================================
// TestDelete
// ================================================================================

func (s *SessionHandlerTestSuite) TestDelete() {
	id := uuid.New()
	url := "/sessions/" + id.String()

	s.Run("success: empty body deletes an empty session", func() {
		s.mockCommands.EXPECT().
			Delete(gomock.Any(), s.guide, id, commands.DeleteSessionInput{}).
			Return(&commands.DeleteSessionResult{}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil, "bearer-token")

		var body resdto.DeleteSessionResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(0, body.DeletedBookings)
	})

	s.Run("success: move relocates bookings", func() {
		target := uuid.New()
		moved := builder.NewBookingBuilder().WithSession(target).BuildStored()
		s.mockCommands.EXPECT().
			Delete(gomock.Any(), s.guide, id, commands.DeleteSessionInput{Action: commands.DeleteActionMove, TargetSessionID: &target}).
			Return(&commands.DeleteSessionResult{MovedBookings: []*booking.Booking{moved}}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url,
			map[string]any{"action": "move", "targetSessionId": target.String()}, "bearer-token")

		var body resdto.DeleteSessionResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Require().Len(body.MovedBookings, 1)
		s.Equal(target, body.MovedBookings[0].SessionID)
	})

	s.Run("error: 409 lists the bookings still attached", func() {
		held := builder.NewBookingBuilder().WithSession(id).BuildStored()
		s.mockCommands.EXPECT().Delete(gomock.Any(), gomock.Any(), id, gomock.Any()).
			Return(nil, &commands.SessionHasBookingsError{Bookings: []*booking.Booking{held}})

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil, "bearer-token")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "choose action delete or move")
		var body struct {
			Detail struct {
				Bookings []resdto.BookingResponse `json:"bookings"`
			} `json:"detail"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Require().Len(body.Detail.Bookings, 1)
		s.Equal(held.ID(), body.Detail.Bookings[0].ID)
	})

	s.Run("success: a chunked body without a length is still read", func() {
		target := uuid.New()
		s.mockCommands.EXPECT().
			Delete(gomock.Any(), s.guide, id, commands.DeleteSessionInput{Action: commands.DeleteActionMove, TargetSessionID: &target}).
			Return(&commands.DeleteSessionResult{}, nil)

		body := io.MultiReader(strings.NewReader(`{"action":"move","targetSessionId":"` + target.String() + `"}`))
		req := nethttptest.NewRequest(http.MethodDelete, url, body)
		s.Require().EqualValues(-1, req.ContentLength)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer bearer-token")
		rec := nethttptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 on a malformed body", func() {
		rec := httptest.PerformRawRequest(s.T(), s.router, http.MethodDelete, url, []byte(`{"action":`),
			map[string]string{"Authorization": "Bearer bearer-token"})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})

	s.Run("error: 400 on unknown action", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, map[string]any{"action": "archive"}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "action must be delete or move")
	})
}

// ================================================================================
// TestAlternatives
// ================================================================================

func (s *SessionHandlerTestSuite) TestAlternatives() {
	id := uuid.New()
	alt := builder.NewSessionBuilder().WithGuide(s.guide.ID).BuildView()
	s.mockQueries.EXPECT().Alternatives(gomock.Any(), id).Return([]queries.SessionView{alt}, nil)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/sessions/"+id.String()+"/alternatives", nil, "bearer-token")

	var body []resdto.SessionResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
	s.Require().Len(body, 1)
	s.Equal(alt.ID, body[0].ID)
}
