package http

import (
	"time"

	"dynamictickets/entities"

	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type bookingResponse struct {
	ID               int64     `json:"id"`
	EventID          int64     `json:"eventId"`
	UserEmail        string    `json:"userEmail"`
	Quantity         int       `json:"quantity"`
	UnitPrice        string    `json:"unitPrice"`
	PricePaid        string    `json:"pricePaid"`
	BookingReference string    `json:"bookingReference"`
	CreatedAt        time.Time `json:"createdAt"`
}

func newBookingResponse(b entities.Booking) bookingResponse {
	return bookingResponse{
		ID:               b.ID,
		EventID:          b.EventID,
		UserEmail:        b.UserEmail,
		Quantity:         b.Quantity,
		UnitPrice:        money(b.UnitPrice),
		PricePaid:        money(b.PricePaid),
		BookingReference: b.BookingReference,
		CreatedAt:        b.CreatedAt,
	}
}

func newBookingsResponse(bookings []entities.Booking) []bookingResponse {
	resp := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, newBookingResponse(b))
	}
	return resp
}

type eventResponse struct {
	ID               int64                 `json:"id"`
	Name             string                `json:"name"`
	Description      string                `json:"description"`
	Venue            string                `json:"venue"`
	EventDate        time.Time             `json:"eventDate"`
	TotalTickets     int                   `json:"totalTickets"`
	BookedTickets    int                   `json:"bookedTickets"`
	AvailableTickets int                   `json:"availableTickets"`
	BasePrice        string                `json:"basePrice"`
	CurrentPrice     string                `json:"currentPrice"`
	PriceFloor       string                `json:"priceFloor"`
	PriceCeiling     string                `json:"priceCeiling"`
	PricingRules     entities.PricingRules `json:"pricingRules"`
	IsActive         bool                  `json:"isActive"`
	CreatedAt        time.Time             `json:"createdAt"`
	UpdatedAt        time.Time             `json:"updatedAt"`
}

func newEventResponse(e entities.Event) eventResponse {
	return eventResponse{
		ID:               e.ID,
		Name:             e.Name,
		Description:      e.Description,
		Venue:            e.Venue,
		EventDate:        e.EventDate,
		TotalTickets:     e.TotalTickets,
		BookedTickets:    e.BookedTickets,
		AvailableTickets: e.AvailableTickets(),
		BasePrice:        money(e.BasePrice),
		CurrentPrice:     money(e.CurrentPrice),
		PriceFloor:       money(e.PriceFloor),
		PriceCeiling:     money(e.PriceCeiling),
		PricingRules:     e.PricingRules,
		IsActive:         e.IsActive,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

type eventDetailResponse struct {
	eventResponse
	PricingBreakdown priceBreakdownResponse `json:"pricingBreakdown"`
}

// Adjustments and multipliers are ratios, not money, so they keep their
// precision.
type priceBreakdownResponse struct {
	BasePrice       string                    `json:"basePrice"`
	CurrentPrice    string                    `json:"currentPrice"`
	Adjustments     entities.PriceAdjustments `json:"adjustments"`
	FinalAdjustment decimal.Decimal           `json:"finalAdjustment"`
	RespectsFloor   bool                      `json:"respectsFloor"`
	RespectsCeiling bool                      `json:"respectsCeiling"`
}

func newPriceBreakdownResponse(b entities.PriceBreakdown) priceBreakdownResponse {
	return priceBreakdownResponse{
		BasePrice:       money(b.BasePrice),
		CurrentPrice:    money(b.CurrentPrice),
		Adjustments:     b.Adjustments,
		FinalAdjustment: b.FinalAdjustment,
		RespectsFloor:   b.RespectsFloor,
		RespectsCeiling: b.RespectsCeiling,
	}
}

type bookingStatsResponse struct {
	Total            int    `json:"total"`
	TotalTicketsSold int    `json:"totalTicketsSold"`
	TotalRevenue     string `json:"totalRevenue"`
	AveragePrice     string `json:"averagePrice"`
}

func newBookingStatsResponse(s entities.BookingStats) bookingStatsResponse {
	return bookingStatsResponse{
		Total:            s.TotalBookings,
		TotalTicketsSold: s.TotalTicketsSold,
		TotalRevenue:     money(s.TotalRevenue),
		AveragePrice:     money(s.AveragePrice),
	}
}

type eventAnalyticsResponse struct {
	Event struct {
		ID               int64     `json:"id"`
		Name             string    `json:"name"`
		EventDate        time.Time `json:"eventDate"`
		Venue            string    `json:"venue"`
		TotalTickets     int       `json:"totalTickets"`
		BookedTickets    int       `json:"bookedTickets"`
		RemainingTickets int       `json:"remainingTickets"`
		OccupancyRate    string    `json:"occupancyRate"`
		BasePrice        string    `json:"basePrice"`
		CurrentPrice     string    `json:"currentPrice"`
		PriceFloor       string    `json:"priceFloor"`
		PriceCeiling     string    `json:"priceCeiling"`
	} `json:"event"`
	Analytics bookingStatsResponse `json:"analytics"`
}

func newEventAnalyticsResponse(a entities.EventAnalytics) eventAnalyticsResponse {
	var resp eventAnalyticsResponse
	resp.Event.ID = a.Event.ID
	resp.Event.Name = a.Event.Name
	resp.Event.EventDate = a.Event.EventDate
	resp.Event.Venue = a.Event.Venue
	resp.Event.TotalTickets = a.Event.TotalTickets
	resp.Event.BookedTickets = a.Event.BookedTickets
	resp.Event.RemainingTickets = a.Event.RemainingTickets
	resp.Event.OccupancyRate = money(a.Event.OccupancyRate)
	resp.Event.BasePrice = money(a.Event.BasePrice)
	resp.Event.CurrentPrice = money(a.Event.CurrentPrice)
	resp.Event.PriceFloor = money(a.Event.PriceFloor)
	resp.Event.PriceCeiling = money(a.Event.PriceCeiling)
	resp.Analytics = newBookingStatsResponse(a.Analytics)
	return resp
}

type analyticsSummaryResponse struct {
	Events struct {
		Total             int    `json:"total"`
		Active            int    `json:"active"`
		TotalCapacity     int    `json:"totalCapacity"`
		TotalBooked       int    `json:"totalBooked"`
		RemainingCapacity int    `json:"remainingCapacity"`
		OccupancyRate     string `json:"occupancyRate"`
	} `json:"events"`
	Bookings bookingStatsResponse `json:"bookings"`
}

func newAnalyticsSummaryResponse(s entities.AnalyticsSummary) analyticsSummaryResponse {
	var resp analyticsSummaryResponse
	resp.Events.Total = s.Events.Total
	resp.Events.Active = s.Events.Active
	resp.Events.TotalCapacity = s.Events.TotalCapacity
	resp.Events.TotalBooked = s.Events.TotalBooked
	resp.Events.RemainingCapacity = s.Events.RemainingCapacity
	resp.Events.OccupancyRate = money(s.Events.OccupancyRate)
	resp.Bookings = newBookingStatsResponse(s.Bookings)
	return resp
}
