package api

import (
	"net/http"

	reqdto "canyon-booking/internal/handler/dto/request"
	resdto "canyon-booking/internal/handler/dto/response"
	"canyon-booking/internal/handler/httperr"
	"canyon-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	q queries.AvailabilityQueries
}

func NewAvailabilityHandler(q queries.AvailabilityQueries) *AvailabilityHandler {
	return &AvailabilityHandler{q: q}
}

// @Summary Search available sessions
// @Description Per product, the sessions that can take the party, by date then start time
// @Tags availability
// @Produce json
// @Param date query string false "Single date (YYYY-MM-DD)"
// @Param from query string false "Range start, used when date is absent"
// @Param to query string false "Range end"
// @Param guideId query string false "Guide filter"
// @Param teamName query string false "Team filter"
// @Param productId query string false "Product filter"
// @Param participants query int false "Party size, default 1"
// @Success 200 {array} resdto.ProductAvailabilityResponse
// @Failure 400 {object} httperr.Response
// @Router /api/sessions/search/available [get]
func (h *AvailabilityHandler) Search(c *gin.Context) {
	params, ok := bindSearch(c)
	if !ok {
		return
	}
	views, err := h.q.SearchAvailable(c.Request.Context(), params)
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAvailability(views))
}

// @Summary Availability of one product
// @Tags availability
// @Produce json
// @Param productId query string true "Product ID"
// @Param date query string false "Single date (YYYY-MM-DD)"
// @Param from query string false "Range start"
// @Param to query string false "Range end"
// @Param participants query int false "Party size, default 1"
// @Success 200 {object} resdto.ProductAvailabilityResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/availability/product [get]
func (h *AvailabilityHandler) ForProduct(c *gin.Context) {
	params, ok := bindSearch(c)
	if !ok {
		return
	}
	if params.ProductID == nil {
		httperr.Abort(c, reqdto.ErrMissingProduct, nil)
		return
	}
	view, err := h.q.ForProduct(c.Request.Context(), *params.ProductID, params)
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromProductAvailability(*view))
}

// @Summary Next available dates
// @Description The first two upcoming dates with room for the party
// @Tags availability
// @Produce json
// @Param from query string false "Scan start, default today"
// @Param productId query string false "Product filter"
// @Param guideId query string false "Guide filter"
// @Param teamName query string false "Team filter"
// @Param participants query int false "Party size, default 1"
// @Success 200 {object} resdto.NextDatesResponse
// @Failure 400 {object} httperr.Response
// @Router /api/availability/next-dates [get]
func (h *AvailabilityHandler) NextDates(c *gin.Context) {
	var q reqdto.NextDatesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	params, err := q.ToParams()
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	dates, err := h.q.NextAvailableDates(c.Request.Context(), params)
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromNextDates(dates))
}

func bindSearch(c *gin.Context) (queries.SearchParams, bool) {
	var q reqdto.AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return queries.SearchParams{}, false
	}
	params, err := q.ToParams()
	if err != nil {
		httperr.Abort(c, err, nil)
		return queries.SearchParams{}, false
	}
	return params, true
}
