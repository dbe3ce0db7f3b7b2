// Package analytics rolls events and their sales read model up into
// occupancy and revenue figures.
package analytics

import (
	"dynamictickets/entities"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func ForEvent(event entities.Event, sales entities.EventSales) entities.EventAnalytics {
	return entities.EventAnalytics{
		Event: entities.EventOccupancy{
			ID:               event.ID,
			Name:             event.Name,
			EventDate:        event.EventDate,
			Venue:            event.Venue,
			TotalTickets:     event.TotalTickets,
			BookedTickets:    event.BookedTickets,
			RemainingTickets: event.TotalTickets - event.BookedTickets,
			OccupancyRate:    OccupancyRate(event.TotalTickets, event.BookedTickets),
			BasePrice:        event.BasePrice,
			CurrentPrice:     event.CurrentPrice,
			PriceFloor:       event.PriceFloor,
			PriceCeiling:     event.PriceCeiling,
		},
		Analytics: bookingStats(sales),
	}
}

func Summarize(events []entities.Event, sales []entities.EventSales) entities.AnalyticsSummary {
	var capacity entities.CapacityStats
	for _, e := range events {
		capacity.Total++
		if e.IsActive {
			capacity.Active++
		}
		capacity.TotalCapacity += e.TotalTickets
		capacity.TotalBooked += e.BookedTickets
	}
	capacity.RemainingCapacity = capacity.TotalCapacity - capacity.TotalBooked
	capacity.OccupancyRate = OccupancyRate(capacity.TotalCapacity, capacity.TotalBooked)

	all := entities.EventSales{
		Revenue:  decimal.Zero,
		Bookings: map[string]entities.EventSalesLine{},
	}
	for _, s := range sales {
		all.TicketsSold += s.TicketsSold
		all.Revenue = all.Revenue.Add(s.Revenue)
		for ref, line := range s.Bookings {
			all.Bookings[ref] = line
		}
	}

	return entities.AnalyticsSummary{
		Events:   capacity,
		Bookings: bookingStats(all),
	}
}

// OccupancyRate is the booked share of capacity in percent, rounded to two
// decimals. An event without capacity has a rate of 0.
func OccupancyRate(total, booked int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(booked)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
}

func bookingStats(sales entities.EventSales) entities.BookingStats {
	stats := entities.BookingStats{
		TotalBookings:    len(sales.Bookings),
		TotalTicketsSold: sales.TicketsSold,
		TotalRevenue:     sales.Revenue,
		AveragePrice:     decimal.Zero,
	}
	if stats.TotalBookings > 0 {
		stats.AveragePrice = sales.Revenue.Div(decimal.NewFromInt(int64(stats.TotalBookings))).Round(2)
	}
	return stats
}
