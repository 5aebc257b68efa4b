//go:build unit

package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"canyon-booking/internal/domain/allocation"
	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/domain/user"
	"canyon-booking/internal/handler/api"
	resdto "canyon-booking/internal/handler/dto/response"
	"canyon-booking/internal/usecase/commands"
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

type BookingHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockBookingCommands
	mockQueries  *queriesmock.MockBookingQueries
	handler      *api.BookingHandler
	admin        user.Principal
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockBookingCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockBookingQueries(s.mockCtrl)
	s.handler = api.NewBookingHandler(s.mockCommands, s.mockQueries)
	s.admin = user.Principal{ID: uuid.New(), Role: user.RoleAdmin}

	auth := mockAuth(s.admin)
	s.router.POST("/bookings", auth, s.handler.Create)
	s.router.GET("/bookings/:id", auth, s.handler.Get)
	s.router.POST("/bookings/:id/move", auth, s.handler.Move)
	s.router.POST("/bookings/:id/payment", auth, s.handler.ApplyPayment)
	s.router.POST("/bookings/:id/cancel", auth, s.handler.Cancel)
	s.router.PUT("/bookings/:id/participants", auth, s.handler.ReplaceParticipants)
	s.router.DELETE("/bookings/:id", auth, s.handler.Delete)
}

func (s *BookingHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

type testCaseBooking struct {
	name       string
	mutate     func(m map[string]any)
	expectCode int
}

func errorReason(s *suite.Suite, body []byte) string {
	var res map[string]any
	s.Require().NoError(json.Unmarshal(body, &res))
	reason, _ := res["error"].(map[string]any)["reason"].(string)
	return reason
}

// ================================================================================
// TestCreate
// ================================================================================

func (s *BookingHandlerTestSuite) TestCreate() {
	url := "/bookings"

	bb := builder.NewBookingBuilder().WithPaid(2000)
	reqBody := bb.BuildCreateRequestDTO()
	created := bb.BuildStored()

	bound := []testCaseBooking{
		{name: "numberOfPeople boundary OK (1)", mutate: testutil.Field("numberOfPeople", 1), expectCode: http.StatusCreated},
		{name: "numberOfPeople invalid (0)", mutate: testutil.Field("numberOfPeople", 0), expectCode: http.StatusBadRequest},
		{name: "negative amountPaid", mutate: testutil.Field("amountPaid", -5), expectCode: http.StatusBadRequest},
		{name: "negative totalPrice", mutate: testutil.Field("totalPrice", -1), expectCode: http.StatusBadRequest},
	}

	missing := []testCaseBooking{
		{name: "missing field: sessionId", mutate: testutil.Field("sessionId", nil), expectCode: http.StatusBadRequest},
		{name: "missing field: productId", mutate: testutil.Field("productId", nil), expectCode: http.StatusBadRequest},
		{name: "missing field: client", mutate: testutil.Field("client", nil), expectCode: http.StatusBadRequest},
		{name: "invalid client email", mutate: testutil.Field("client", map[string]any{
			"firstName": "Camille", "lastName": "Martin", "email": "not-an-email",
		}), expectCode: http.StatusBadRequest},
	}

	s.Run("success: returns 201 and forwards the initial payment", func() {
		s.mockCommands.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, in commands.CreateBookingInput) (*booking.Booking, error) {
				s.Equal(bb.SessionID, in.SessionID)
				s.Equal(int64(2000), in.InitialAmount.Cents())
				s.Nil(in.TotalPrice)
				s.Equal("card", in.PaymentMethod)
				return created, nil
			})

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		var body resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(created.ID(), body.ID)
		s.Equal("pending", body.Status)
		httptest.AssertHeaders(s.T(), rec, map[string]string{"Location": "/api/bookings/" + created.ID().String()})
	})

	s.Run("validation", func() {
		for _, group := range [][]testCaseBooking{bound, missing} {
			for _, tc := range group {
				s.Run(tc.name, func() {
					if tc.expectCode == http.StatusCreated {
						s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any()).Return(created, nil)
					}
					requestMap := testutil.DtoMap(s.T(), reqBody, tc.mutate)
					rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, "bearer-token")
					s.Equal(tc.expectCode, rec.Code, rec.Body.String())
				})
			}
		}
	})

	conflicts := []struct {
		name   string
		err    error
		reason string
	}{
		{"guide occupied", allocation.ErrGuideOccupied, "guide_occupied"},
		{"capacity exceeded", allocation.ErrCapacityExceeded, "capacity_exceeded"},
		{"session closed", allocation.ErrSessionClosed, "session_closed"},
	}
	for _, tc := range conflicts {
		s.Run("error: 409 "+tc.name, func() {
			s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, tc.err)

			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

			s.Equal(http.StatusConflict, rec.Code)
			s.Equal(tc.reason, errorReason(&s.Suite, rec.Body.Bytes()))
		})
	}
}

// ================================================================================
// TestGet
// ================================================================================

func (s *BookingHandlerTestSuite) TestGet() {
	sb := builder.NewSessionBuilder()
	bb := builder.NewBookingBuilder().WithSession(sb.ID).WithProduct(sb.ProductIDs[0])

	s.Run("success: detail carries session and effective product", func() {
		s.mockQueries.EXPECT().Get(gomock.Any(), bb.ID).Return(bb.BuildDetailView(sb), nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+bb.ID.String(), nil, "bearer-token")

		var body resdto.BookingDetailResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(sb.ID, body.Session.ID)
		s.Equal(sb.ProductIDs[0], body.Product.ID)
	})

	s.Run("error: 404", func() {
		s.mockQueries.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, booking.ErrBookingNotFound)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+uuid.NewString(), nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "booking not found")
	})
}

// ================================================================================
// TestMove
// ================================================================================

func (s *BookingHandlerTestSuite) TestMove() {
	id := uuid.New()
	target := uuid.New()
	url := "/bookings/" + id.String() + "/move"

	s.Run("success: relocated", func() {
		moved := builder.NewBookingBuilder().WithSession(target).BuildStored()
		s.mockCommands.EXPECT().
			Move(gomock.Any(), id, commands.MoveBookingInput{TargetSessionID: target}).
			Return(&commands.MoveResult{Booking: moved}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"targetSessionId": target.String()}, "bearer-token")

		var body resdto.MoveResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.False(body.NeedsProductSelection)
		s.Require().NotNil(body.Booking)
		s.Equal(target, body.Booking.SessionID)
	})

	s.Run("success: asks for a product when the target cannot choose", func() {
		a := builder.NewProductBuilder().WithName("Furon").BuildEffective()
		b := builder.NewProductBuilder().WithName("Écouges").BuildEffective()
		s.mockCommands.EXPECT().Move(gomock.Any(), id, gomock.Any()).
			Return(&commands.MoveResult{NeedsSelection: true, Candidates: []product.Effective{a, b}}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"targetSessionId": target.String()}, "bearer-token")

		var body resdto.MoveResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.True(body.NeedsProductSelection)
		s.Nil(body.Booking)
		s.Len(body.Candidates, 2)
	})

	s.Run("error: 400 without target", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})

	s.Run("error: 409 when the target is full", func() {
		s.mockCommands.EXPECT().Move(gomock.Any(), id, gomock.Any()).Return(nil, allocation.ErrCapacityExceeded)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"targetSessionId": target.String()}, "bearer-token")
		s.Equal(http.StatusConflict, rec.Code)
		s.Equal("capacity_exceeded", errorReason(&s.Suite, rec.Body.Bytes()))
	})
}

// ================================================================================
// TestApplyPayment
// ================================================================================

func (s *BookingHandlerTestSuite) TestApplyPayment() {
	id := uuid.New()
	url := "/bookings/" + id.String() + "/payment"

	s.Run("success: confirmed once fully paid", func() {
		paid := builder.NewBookingBuilder().WithTotal(10000).WithPaid(10000).WithStatus(booking.StatusConfirmed).BuildStored()
		s.mockCommands.EXPECT().
			ApplyPayment(gomock.Any(), id, gomock.Any()).
			DoAndReturn(func(_ any, _ uuid.UUID, in commands.PaymentInput) (*booking.Booking, error) {
				s.Equal(int64(8000), in.Amount.Cents())
				s.Equal("cash", in.Method)
				return paid, nil
			})

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"amount": 8000, "method": "cash"}, "bearer-token")

		var body resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("confirmed", body.Status)
		s.Equal(int64(10000), body.AmountPaid)
	})

	invalid := []testCaseBooking{
		{name: "zero amount", mutate: testutil.Field("amount", 0), expectCode: http.StatusBadRequest},
		{name: "negative amount", mutate: testutil.Field("amount", -100), expectCode: http.StatusBadRequest},
		{name: "missing method", mutate: testutil.Field("method", nil), expectCode: http.StatusBadRequest},
	}
	for _, tc := range invalid {
		s.Run("error: "+tc.name, func() {
			req := testutil.DtoMap(s.T(), map[string]any{"amount": 500, "method": "card"}, tc.mutate)
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, req, "bearer-token")
			httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, "")
		})
	}

	s.Run("error: 409 on a cancelled booking", func() {
		s.mockCommands.EXPECT().ApplyPayment(gomock.Any(), id, gomock.Any()).Return(nil, booking.ErrBookingCancelled)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"amount": 500, "method": "card"}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "booking is cancelled")
	})
}

// ================================================================================
// TestCancel
// ================================================================================

func (s *BookingHandlerTestSuite) TestCancel() {
	cancelled := builder.NewBookingBuilder().AsCancelled().BuildStored()
	s.mockCommands.EXPECT().Cancel(gomock.Any(), cancelled.ID()).Return(cancelled, nil)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+cancelled.ID().String()+"/cancel", nil, "bearer-token")

	var body resdto.BookingResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
	s.Equal("cancelled", body.Status)
}

// ================================================================================
// TestReplaceParticipants
// ================================================================================

func (s *BookingHandlerTestSuite) TestReplaceParticipants() {
	id := uuid.New()
	url := "/bookings/" + id.String() + "/participants"

	s.Run("success", func() {
		s.mockCommands.EXPECT().
			ReplaceParticipants(gomock.Any(), id, gomock.Len(2)).
			Return(builder.NewBookingBuilder().BuildStored(), nil)

		req := map[string]any{"participants": []map[string]any{
			{"name": "Léa", "age": 12, "heightCm": 150, "weightKg": 40},
			{"name": "Hugo"},
		}}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, req, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 when the roster size differs", func() {
		s.mockCommands.EXPECT().ReplaceParticipants(gomock.Any(), id, gomock.Any()).Return(nil, booking.ErrParticipantCount)

		req := map[string]any{"participants": []map[string]any{{"name": "Léa"}}}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, req, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "participant count")
	})

	s.Run("error: 400 on implausible age", func() {
		req := map[string]any{"participants": []map[string]any{{"name": "Léa", "age": 300}}}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, req, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}

// ================================================================================
// TestDelete
// ================================================================================

func (s *BookingHandlerTestSuite) TestDelete() {
	id := uuid.New()

	s.Run("success: 204", func() {
		s.mockCommands.EXPECT().Delete(gomock.Any(), s.admin, id).Return(nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/bookings/"+id.String(), nil, "bearer-token")
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("error: 403 from the command", func() {
		s.mockCommands.EXPECT().Delete(gomock.Any(), s.admin, id).Return(commands.ErrHardDeleteForbidden)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/bookings/"+id.String(), nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "only administrators")
	})
}
