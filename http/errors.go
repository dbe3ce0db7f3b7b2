package http

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"dynamictickets/entities"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
)

// toHTTPError maps domain errors to responses. Anything unknown is left to
// the default error handler, which answers 500.
func toHTTPError(c echo.Context, err error) error {
	var (
		capacityErr   entities.CapacityExceededError
		validationErr entities.ValidationError
		invariantErr  entities.InvariantViolationError
	)

	switch {
	case errors.Is(err, entities.ErrEventNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Event not found")
	case errors.Is(err, entities.ErrBookingNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Booking not found")
	case errors.As(err, &capacityErr):
		return echo.NewHTTPError(http.StatusBadRequest, capacityErr.Error())
	case errors.As(err, &validationErr):
		return echo.NewHTTPError(http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, entities.ErrEventInactive):
		return echo.NewHTTPError(http.StatusBadRequest, entities.ErrEventInactive.Error())
	case errors.Is(err, entities.ErrEventPassed):
		return echo.NewHTTPError(http.StatusBadRequest, entities.ErrEventPassed.Error())
	case entities.IsTransient(err):
		c.Response().Header().Set("Retry-After", "1")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Service temporarily unavailable, please retry")
	case errors.As(err, &invariantErr):
		log.FromContext(c.Request().Context()).WithError(err).Error("Inventory invariant violated")
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
	}

	return err
}

func (h Handler) requireAPIKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Header.Get("X-API-Key")
		if h.apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.apiKey)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or missing API key")
		}
		return next(c)
	}
}
