package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/stagedocs/internal/docstore"
)

// errorResponse is the JSON envelope for every failure.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case docstore.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, docstore.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, message string, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), errorResponse{Message: message, Error: err.Error()})
}
