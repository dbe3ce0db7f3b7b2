package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"dynamictickets/entities"

	"github.com/labstack/echo/v4"
)

type createBookingRequest struct {
	EventID   int64  `json:"eventId"`
	UserEmail string `json:"userEmail"`
	Quantity  int    `json:"quantity"`
}

func (r createBookingRequest) validate() error {
	var errs []error

	if r.EventID <= 0 {
		errs = append(errs, errors.New("eventId must be a positive integer"))
	}
	if !validEmail(r.UserEmail) {
		errs = append(errs, errors.New("userEmail must be a valid email address"))
	}
	if r.Quantity < 1 {
		errs = append(errs, errors.New("quantity must be at least 1"))
	}

	if len(errs) > 0 {
		return entities.ValidationError{Err: errors.Join(errs...)}
	}
	return nil
}

// validEmail accepts a bare address only, without a display name.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email
}

func (h Handler) PostBooking(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	req.UserEmail = strings.TrimSpace(req.UserEmail)

	if err := req.validate(); err != nil {
		return toHTTPError(c, err)
	}

	booking, err := h.bookings.CreateBooking(c.Request().Context(), entities.CreateBookingRequest{
		EventID:   req.EventID,
		UserEmail: req.UserEmail,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return toHTTPError(c, fmt.Errorf("could not create booking: %w", err))
	}

	return c.JSON(http.StatusCreated, newBookingResponse(booking))
}

func (h Handler) GetBookingsByEvent(c echo.Context) error {
	eventID, err := strconv.ParseInt(c.QueryParam("eventId"), 10, 64)
	if err != nil || eventID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "eventId query parameter must be a positive integer")
	}

	bookings, err := h.bookingRepo.ListByEvent(c.Request().Context(), eventID)
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, newBookingsResponse(bookings))
}

func (h Handler) GetBookingsByUser(c echo.Context) error {
	email := c.Param("email")
	if !validEmail(email) {
		return echo.NewHTTPError(http.StatusBadRequest, "email must be a valid email address")
	}

	bookings, err := h.bookingRepo.ListByUser(c.Request().Context(), email)
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, newBookingsResponse(bookings))
}

func (h Handler) GetBooking(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	booking, err := h.bookingRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, newBookingResponse(booking))
}
