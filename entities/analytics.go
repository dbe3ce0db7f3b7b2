package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventAnalytics struct {
	Event     EventOccupancy `json:"event"`
	Analytics BookingStats   `json:"analytics"`
}

type EventOccupancy struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	EventDate        time.Time       `json:"eventDate"`
	Venue            string          `json:"venue"`
	TotalTickets     int             `json:"totalTickets"`
	BookedTickets    int             `json:"bookedTickets"`
	RemainingTickets int             `json:"remainingTickets"`
	OccupancyRate    decimal.Decimal `json:"occupancyRate"`
	BasePrice        decimal.Decimal `json:"basePrice"`
	CurrentPrice     decimal.Decimal `json:"currentPrice"`
	PriceFloor       decimal.Decimal `json:"priceFloor"`
	PriceCeiling     decimal.Decimal `json:"priceCeiling"`
}

type BookingStats struct {
	TotalBookings    int             `json:"total"`
	TotalTicketsSold int             `json:"totalTicketsSold"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	AveragePrice     decimal.Decimal `json:"averagePrice"`
}

type AnalyticsSummary struct {
	Events   CapacityStats `json:"events"`
	Bookings BookingStats  `json:"bookings"`
}

type CapacityStats struct {
	Total             int             `json:"total"`
	Active            int             `json:"active"`
	TotalCapacity     int             `json:"totalCapacity"`
	TotalBooked       int             `json:"totalBooked"`
	RemainingCapacity int             `json:"remainingCapacity"`
	OccupancyRate     decimal.Decimal `json:"occupancyRate"`
}

// EventSales is the per-event read model fed by BookingMade_v1.
type EventSales struct {
	EventID       int64                     `json:"event_id"`
	TicketsSold   int                       `json:"tickets_sold"`
	Revenue       decimal.Decimal           `json:"revenue"`
	CurrentPrice  decimal.Decimal           `json:"current_price"`
	Bookings      map[string]EventSalesLine `json:"bookings"`
	LastBookingAt time.Time                 `json:"last_booking_at"`
	LastUpdate    time.Time                 `json:"last_update"`
}

type EventSalesLine struct {
	Quantity  int             `json:"quantity"`
	PricePaid decimal.Decimal `json:"price_paid"`
	BookedAt  time.Time       `json:"booked_at"`
}
