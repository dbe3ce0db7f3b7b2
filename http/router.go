package http

import (
	"net/http"

	"dynamictickets/clock"

	libHttp "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

type Dependencies struct {
	Bookings    BookingService
	BookingRepo BookingRepository
	EventRepo   EventRepository
	EventSales  EventSalesReadModel
	Clock       clock.Clock
	APIKey      string
}

func NewHttpRouter(deps Dependencies) *echo.Echo {
	e := libHttp.NewEcho()

	e.Use(otelecho.Middleware("dynamictickets"))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if deps.Clock == nil {
		deps.Clock = clock.NewSystem()
	}

	handler := Handler{
		bookings:    deps.Bookings,
		bookingRepo: deps.BookingRepo,
		eventRepo:   deps.EventRepo,
		eventSales:  deps.EventSales,
		clock:       deps.Clock,
		apiKey:      deps.APIKey,
	}

	e.POST("/bookings", handler.PostBooking)
	e.GET("/bookings", handler.GetBookingsByEvent)
	e.GET("/bookings/user/:email", handler.GetBookingsByUser)
	e.GET("/bookings/:id", handler.GetBooking)

	e.POST("/events", handler.PostEvent, handler.requireAPIKey)
	e.GET("/events", handler.GetEvents)
	e.GET("/events/:id", handler.GetEvent)

	e.GET("/analytics/events/:id", handler.GetEventAnalytics)
	e.GET("/analytics/summary", handler.GetAnalyticsSummary)

	return e
}
