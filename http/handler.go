package http

import (
	"context"
	"time"

	"dynamictickets/clock"
	"dynamictickets/entities"
)

type Handler struct {
	bookings    BookingService
	bookingRepo BookingRepository
	eventRepo   EventRepository
	eventSales  EventSalesReadModel
	clock       clock.Clock
	apiKey      string
}

type BookingService interface {
	CreateBooking(ctx context.Context, req entities.CreateBookingRequest) (entities.Booking, error)
}

type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (entities.Booking, error)
	ListByEvent(ctx context.Context, eventID int64) ([]entities.Booking, error)
	ListByUser(ctx context.Context, email string) ([]entities.Booking, error)
	RecentBookings(ctx context.Context, eventID int64, since time.Time) ([]entities.RecentBooking, error)
}

type EventRepository interface {
	Create(ctx context.Context, event entities.Event) (entities.Event, error)
	GetByID(ctx context.Context, id int64) (entities.Event, error)
	List(ctx context.Context) ([]entities.Event, error)
}

type EventSalesReadModel interface {
	GetByEventID(ctx context.Context, eventID int64) (entities.EventSales, error)
	GetAll(ctx context.Context) ([]entities.EventSales, error)
}
