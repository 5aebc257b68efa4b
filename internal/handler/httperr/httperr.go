package httperr

import (
	"errors"
	"net/http"

	"canyon-booking/internal/domain/allocation"
	"canyon-booking/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
		Reason  string `json:"reason,omitempty"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	var conflict *allocation.ConflictError
	if errors.As(err, &conflict) {
		resp.Error.Reason = string(conflict.Reason)
	}

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// StatusOf maps an error to its HTTP status through the errs taxonomy.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Abort answers with the status and message derived from err. Internal errors
// never leak their text.
func Abort(c *gin.Context, err error, detail any) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		AbortWithError(c, status, err, "Internal server error", nil)
		return
	}
	AbortWithError(c, status, err, messageOf(err), detail)
}

func messageOf(err error) string {
	var conflict *allocation.ConflictError
	if errors.As(err, &conflict) {
		return conflict.Message
	}
	if msg, ok := errs.PublicMessage(err); ok {
		return msg
	}
	return err.Error()
}
