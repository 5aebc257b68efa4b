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
	"github.com/google/uuid"
)

type ProductHandler struct {
	cmds commands.ProductCommands
	q    queries.ProductQueries
}

func NewProductHandler(cmds commands.ProductCommands, q queries.ProductQueries) *ProductHandler {
	return &ProductHandler{cmds: cmds, q: q}
}

// @Summary List products
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param ownerId query string false "Owner filter"
// @Success 200 {array} resdto.ProductResponse
// @Router /api/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter *uuid.UUID
	if ownerID := c.Query("ownerId"); ownerID != "" {
		id, err := reqdto.ParseID(ownerID)
		if err != nil {
			httperr.Abort(c, err, nil)
			return
		}
		filter = &id
	}
	views, err := h.q.List(c.Request.Context(), filter)
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromProductViews(views))
}

// @Summary Create product
// @Description The caller becomes the owner
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateProductRequest true "Product"
// @Success 201 {object} resdto.ProductResponse
// @Failure 400 {object} httperr.Response
// @Router /api/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		httperr.Abort(c, errMissingPrincipal, nil)
		return
	}
	var req reqdto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	attrs, err := req.ToAttributes()
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	p, err := h.cmds.Create(c.Request.Context(), principal, attrs)
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	c.Header("Location", "/api/products/"+p.ID().String())
	c.JSON(http.StatusCreated, resdto.FromProductView(queries.ProductViewOf(p)))
}

// @Summary Update product
// @Description Owner or administrative roles only
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body reqdto.UpdateProductRequest true "Fields to change"
// @Success 200 {object} resdto.ProductResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
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
	var req reqdto.UpdateProductRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	p, err := h.cmds.Update(c.Request.Context(), principal, id, patch)
	if err != nil {
		httperr.Abort(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromProductView(queries.ProductViewOf(p)))
}
