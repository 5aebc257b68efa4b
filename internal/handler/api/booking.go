package api

import (
	"net/http"

	reqdto "canyon-booking/internal/handler/dto/request"
	resdto "canyon-booking/internal/handler/dto/response"
	"canyon-booking/internal/handler/httperr"
	"canyon-booking/internal/handler/middleware"
	"canyon-booking/internal/usecase/commands"
	"canyon-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	cmds commands.BookingCommands
	q    queries.BookingQueries
}

func NewBookingHandler(cmds commands.BookingCommands, q queries.BookingQueries) *BookingHandler {
	return &BookingHandler{cmds: cmds, q: q}
}

// @Summary Create booking
// @Description Reserve places on one product of a session, with an optional initial payment
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateBookingRequest true "Booking"
// @Success 201 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response "reason: guide_occupied, capacity_exceeded, session_closed"
// @Router /api/bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	in, err := req.ToInput()
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	b, err := h.cmds.Create(c.Request.Context(), in)
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	c.Header("Location", "/api/bookings/"+b.ID().String())
	c.JSON(http.StatusCreated, resdto.FromBooking(b))
}

// @Summary Get booking
// @Description Booking with its session, effective product, payments, history and participants
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingDetailResponse
// @Failure 404 {object} httperr.Response
// @Router /api/bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, err := reqdto.ParseID(c.Param("id"))
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	view, err := h.q.Get(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingDetail(view))
}

// @Summary Move booking
// @Description Relocate a booking to another session. When the target cannot pick the
// @Description product on its own the answer lists candidates and nothing changes.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.MoveBookingRequest true "Target"
// @Success 200 {object} resdto.MoveResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/bookings/{id}/move [post]
func (h *BookingHandler) Move(c *gin.Context) {
	id, err := reqdto.ParseID(c.Param("id"))
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	var req reqdto.MoveBookingRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}
	result, err := h.cmds.Move(c.Request.Context(), id, req.ToInput())
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromMoveResult(result))
}

// @Summary Record payment
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.PaymentRequest true "Payment"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/bookings/{id}/payment [post]
func (h *BookingHandler) ApplyPayment(c *gin.Context) {
	id, err := reqdto.ParseID(c.Param("id"))
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	var req reqdto.PaymentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}
	in, err := req.ToInput()
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	b, err := h.cmds.ApplyPayment(c.Request.Context(), id, in)
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBooking(b))
}

// @Summary Cancel booking
// @Description Cancelling twice is a no-op
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 404 {object} httperr.Response
// @Router /api/bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, err := reqdto.ParseID(c.Param("id"))
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	b, err := h.cmds.Cancel(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBooking(b))
}

// @Summary Replace participants
// @Description Replaces the whole roster; its size must equal numberOfPeople
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.ReplaceParticipantsRequest true "Roster"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/bookings/{id}/participants [put]
func (h *BookingHandler) ReplaceParticipants(c *gin.Context) {
	id, err := reqdto.ParseID(c.Param("id"))
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	var req reqdto.ReplaceParticipantsRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}
	b, err := h.cmds.ReplaceParticipants(c.Request.Context(), id, req.ToInput())
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBooking(b))
}

// @Summary Delete booking
// @Description Hard delete with payments, history and participants. Administrators only.
// @Tags bookings
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/bookings/{id} [delete]
func (h *BookingHandler) Delete(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		httperr.Abort(c, errMissingPrincipal, nil)
		return
	}
	id, err := reqdto.ParseID(c.Param("id"))
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	if err := h.cmds.Delete(c.Request.Context(), principal, id); err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}
