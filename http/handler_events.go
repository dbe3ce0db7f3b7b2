package http

import (
	"fmt"
	"net/http"
	"strconv"

	"dynamictickets/entities"
	"dynamictickets/pricing"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func (h Handler) PostEvent(c echo.Context) error {
	var req entities.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		return toHTTPError(c, err)
	}

	event, err := h.eventRepo.Create(
		c.Request().Context(),
		entities.NewEvent(req, pricing.DefaultRules(), h.clock.Now()),
	)
	if err != nil {
		return toHTTPError(c, err)
	}

	log.FromContext(c.Request().Context()).WithFields(logrus.Fields{
		"event_id":      event.ID,
		"total_tickets": event.TotalTickets,
		"current_price": money(event.CurrentPrice),
	}).Info("Event created")

	return c.JSON(http.StatusCreated, newEventResponse(event))
}

func (h Handler) GetEvents(c echo.Context) error {
	events, err := h.eventRepo.List(c.Request().Context())
	if err != nil {
		return toHTTPError(c, err)
	}

	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, newEventResponse(e))
	}

	return c.JSON(http.StatusOK, resp)
}

// GetEvent renders the price the next booking would be charged. Nothing is
// written, the stored currentPrice only moves inside a booking.
func (h Handler) GetEvent(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	event, err := h.eventRepo.GetByID(ctx, id)
	if err != nil {
		return toHTTPError(c, err)
	}

	now := h.clock.Now()
	recent, err := h.bookingRepo.RecentBookings(ctx, event.ID, now.Add(-pricing.DemandWindow))
	if err != nil {
		return toHTTPError(c, fmt.Errorf("could not load recent bookings: %w", err))
	}

	return c.JSON(http.StatusOK, eventDetailResponse{
		eventResponse:    newEventResponse(event),
		PricingBreakdown: newPriceBreakdownResponse(pricing.Compute(event, recent, now)),
	})
}
