package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/pos-restaurante/internal/apperr"
)

// HTTPError is the body of every error response.
// swagger:model HTTPError
type HTTPError struct {
	Error string `json:"error" example:"order not found"`
}

// Status maps an error kind to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Abort ends the request with the status for err. Internal errors are not
// echoed to the client.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	code := Status(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.AbortWithStatusJSON(code, HTTPError{Error: msg})
}

// Fail ends the request with an explicit status and message.
func Fail(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, HTTPError{Error: msg})
}
