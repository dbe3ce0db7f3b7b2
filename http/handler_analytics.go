package http

import (
	"net/http"
	"strconv"

	"dynamictickets/analytics"

	"github.com/labstack/echo/v4"
)

func (h Handler) GetEventAnalytics(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	event, err := h.eventRepo.GetByID(ctx, id)
	if err != nil {
		return toHTTPError(c, err)
	}

	sales, err := h.eventSales.GetByEventID(ctx, id)
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, newEventAnalyticsResponse(analytics.ForEvent(event, sales)))
}

func (h Handler) GetAnalyticsSummary(c echo.Context) error {
	ctx := c.Request().Context()

	events, err := h.eventRepo.List(ctx)
	if err != nil {
		return toHTTPError(c, err)
	}

	sales, err := h.eventSales.GetAll(ctx)
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, newAnalyticsSummaryResponse(analytics.Summarize(events, sales)))
}
