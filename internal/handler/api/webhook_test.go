//go:build unit

package api_test

import (
	"bytes"
	"net/http"
	nethttptest "net/http/httptest"
	"testing"

	"canyon-booking/internal/handler/api"
	resdto "canyon-booking/internal/handler/dto/response"
	"canyon-booking/internal/usecase/commands"
	"canyon-booking/tests/common/builder"
	"canyon-booking/tests/common/httptest"
	commandsmock "canyon-booking/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type WebhookHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockCheckoutCommands
}

func (s *WebhookHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockCheckoutCommands(s.mockCtrl)
	s.router.POST("/webhooks/checkout", api.NewWebhookHandler(s.mockCommands).Checkout)
}

func (s *WebhookHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestWebhookHandlerSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}

func (s *WebhookHandlerTestSuite) post(payload []byte, signature string) *nethttptest.ResponseRecorder {
	req := nethttptest.NewRequest(http.MethodPost, "/webhooks/checkout", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(api.SignatureHeader, signature)
	}
	rec := nethttptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *WebhookHandlerTestSuite) TestCheckout() {
	payload := []byte(`{"id":"evt_1","type":"checkout.completed","data":{"amount":5000}}`)
	signature := commands.Sign([]byte("secret"), payload)

	s.Run("success: raw body and signature reach the command", func() {
		created := builder.NewBookingBuilder().BuildStored()
		s.mockCommands.EXPECT().
			HandleCheckout(gomock.Any(), payload, signature).
			Return(&commands.CheckoutResult{Outcome: commands.CheckoutBookingCreated, Booking: created}, nil)

		rec := s.post(payload, signature)

		var body resdto.CheckoutResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("booking_created", body.Outcome)
		s.Require().NotNil(body.Booking)
		s.Equal(created.ID(), body.Booking.ID)
	})

	s.Run("success: redelivery is acknowledged", func() {
		s.mockCommands.EXPECT().HandleCheckout(gomock.Any(), payload, signature).
			Return(&commands.CheckoutResult{Outcome: commands.CheckoutDuplicate}, nil)

		rec := s.post(payload, signature)

		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"outcome":"duplicate"}`, rec.Body.String())
	})

	s.Run("error: 401 on a bad signature", func() {
		s.mockCommands.EXPECT().HandleCheckout(gomock.Any(), payload, "deadbeef").
			Return(nil, commands.ErrInvalidSignature)

		rec := s.post(payload, "deadbeef")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "invalid webhook signature")
	})

	s.Run("error: 400 on a body over the limit", func() {
		rec := s.post(bytes.Repeat([]byte("a"), 1<<20+1), signature)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request body")
	})
}
