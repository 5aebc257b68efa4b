package api

import (
	"io"
	"net/http"

	resdto "canyon-booking/internal/handler/dto/response"
	"canyon-booking/internal/handler/httperr"
	"canyon-booking/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

const (
	SignatureHeader = "X-Checkout-Signature"
	maxWebhookBody  = 1 << 20
)

type WebhookHandler struct {
	cmds commands.CheckoutCommands
}

func NewWebhookHandler(cmds commands.CheckoutCommands) *WebhookHandler {
	return &WebhookHandler{cmds: cmds}
}

// @Summary Payment processor webhook
// @Description Signed checkout notification. Redelivered events are acknowledged without effect.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param X-Checkout-Signature header string true "hex HMAC-SHA256 of the raw body"
// @Success 200 {object} resdto.CheckoutResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/webhooks/checkout [post]
func (h *WebhookHandler) Checkout(c *gin.Context) {
	// The signature covers the raw bytes, so the body is read before any decoding.
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request body", nil)
		return
	}
	result, err := h.cmds.HandleCheckout(c.Request.Context(), payload, c.GetHeader(SignatureHeader))
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCheckoutResult(result))
}
