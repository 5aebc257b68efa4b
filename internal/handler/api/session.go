package api

import (
	"errors"
	"io"
	"net/http"

	reqdto "canyon-booking/internal/handler/dto/request"
	resdto "canyon-booking/internal/handler/dto/response"
	"canyon-booking/internal/handler/httperr"
	"canyon-booking/internal/handler/middleware"
	"canyon-booking/internal/pkg/errs"
	"canyon-booking/internal/usecase/commands"
	"canyon-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

var errMissingPrincipal = errs.Class("authentication required", errs.ErrUnauthenticated)

type SessionHandler struct {
	cmds commands.SessionCommands
	q    queries.SessionQueries
}

func NewSessionHandler(cmds commands.SessionCommands, q queries.SessionQueries) *SessionHandler {
	return &SessionHandler{cmds: cmds, q: q}
}

// @Summary List sessions
// @Description Sessions in schedule order with per-product occupancy, paged by cursor
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param from query string false "First date (YYYY-MM-DD)"
// @Param to query string false "Last date (YYYY-MM-DD)"
// @Param guideId query string false "Guide filter"
// @Param teamName query string false "Team filter"
// @Param cursor query string false "Opaque cursor from a previous page"
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} resdto.SessionPageResponse
// @Failure 400 {object} httperr.Response
// @Router /api/sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	var q reqdto.SessionListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	params, err := q.ToParams()
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	page, err := h.q.List(c.Request.Context(), params)
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSessionPage(page))
}

// @Summary Get session
// @Description Session with effective products, lock state and bookings
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} resdto.SessionDetailResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
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
	c.JSON(http.StatusOK, resdto.FromSessionDetail(view))
}

// @Summary Create session
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateSessionRequest true "Session"
// @Success 201 {object} resdto.SessionDetailResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		httperr.Abort(c, errMissingPrincipal, nil)
		return
	}
	var req reqdto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	in, err := req.ToInput()
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	s, err := h.cmds.Create(c.Request.Context(), principal, in)
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	view, err := h.q.Get(c.Request.Context(), s.ID())
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	c.Header("Location", "/api/sessions/"+s.ID().String())
	c.JSON(http.StatusCreated, resdto.FromSessionDetail(view))
}

// @Summary Update session
// @Description Partial update; productIds replaces the whole product set
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body reqdto.UpdateSessionRequest true "Fields to change"
// @Success 200 {object} resdto.SessionDetailResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/sessions/{id} [put]
func (h *SessionHandler) Update(c *gin.Context) {
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
	var req reqdto.UpdateSessionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	if _, err = h.cmds.Update(c.Request.Context(), principal, id, patch); err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	view, err := h.q.Get(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSessionDetail(view))
}

// @Summary Delete session
// @Description A session holding active bookings needs action=delete or action=move
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body reqdto.DeleteSessionRequest false "What to do with active bookings"
// @Success 200 {object} resdto.DeleteSessionResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response "Lists the bookings still attached"
// @Router /api/sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
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
	// The body is optional; its length is unknown when sent chunked.
	var req reqdto.DeleteSessionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil && !errors.Is(bindErr, io.EOF) {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}
	in, err := req.ToInput()
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}

	result, err := h.cmds.Delete(c.Request.Context(), principal, id, in)
	if err != nil {
		var populated *commands.SessionHasBookingsError
		if errors.As(err, &populated) {
			httperr.Abort(c, err, gin.H{"bookings": resdto.SessionBookingsConflict(populated.Bookings)})
			return
		}
		httperr.Abort(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromDeleteSessionResult(result))
}

// @Summary Alternative sessions
// @Description Future sessions of the same guide able to take every active booking of this one
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {array} resdto.SessionResponse
// @Failure 404 {object} httperr.Response
// @Router /api/sessions/{id}/alternatives [get]
func (h *SessionHandler) Alternatives(c *gin.Context) {
	id, err := reqdto.ParseID(c.Param("id"))
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	views, err := h.q.Alternatives(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSessionViews(views))
}
