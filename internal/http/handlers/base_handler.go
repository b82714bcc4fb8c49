// README: Base handler utilities (JSON envelope, error mapping).
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfare/internal/modules/itinerary"
	"wayfare/internal/modules/plans"
	"wayfare/internal/service"
)

// envelope mirrors the schedule API response: success with data, or an error message.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, envelope{Error: msg})
}

func writeScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBadRequest),
		errors.Is(err, itinerary.ErrNegativeBudget),
		errors.Is(err, itinerary.ErrInvalidWindow):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, plans.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusGatewayTimeout, "planning timed out")
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
