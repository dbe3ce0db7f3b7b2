// Package pricing derives a ticket price from an event snapshot.
//
// Compute is pure: it never reads a clock or the store, so the same
// snapshot, recent bookings and instant always give the same breakdown.
package pricing

import (
	"time"

	"dynamictickets/entities"

	"github.com/shopspring/decimal"
)

const DemandWindow = time.Hour

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

func Compute(event entities.Event, recent []entities.RecentBooking, now time.Time) entities.PriceBreakdown {
	rules := event.PricingRules

	daysUntil := DaysUntil(event.EventDate, now)
	timeAdj := timeAdjustment(rules.TimeBased, daysUntil)

	recentCount := countRecent(event.ID, recent, now)
	demandAdj := demandAdjustment(rules.DemandBased, recentCount)

	remaining := RemainingPercentage(event.TotalTickets, event.BookedTickets)
	inventoryAdj := inventoryAdjustment(rules.InventoryBased, remaining)

	total := decimal.Zero
	if rules.TimeBased.Enabled {
		total = total.Add(timeAdj.Mul(rules.TimeBased.Weight))
	}
	if rules.DemandBased.Enabled {
		total = total.Add(demandAdj.Mul(rules.DemandBased.Weight))
	}
	if rules.InventoryBased.Enabled {
		total = total.Add(inventoryAdj.Mul(rules.InventoryBased.Weight))
	}

	raw := event.BasePrice.Mul(one.Add(total))
	final := event.ClampPrice(raw).Round(2)

	finalAdjustment := decimal.Zero
	if !event.BasePrice.IsZero() {
		finalAdjustment = final.Sub(event.BasePrice).Div(event.BasePrice)
	}

	return entities.PriceBreakdown{
		BasePrice:    event.BasePrice,
		CurrentPrice: final,
		Adjustments: entities.PriceAdjustments{
			TimeBased: entities.TimeAdjustment{
				Enabled:    rules.TimeBased.Enabled,
				Adjustment: timeAdj,
				Multiplier: timeAdj,
				DaysUntil:  daysUntil,
			},
			DemandBased: entities.DemandAdjustment{
				Enabled:        rules.DemandBased.Enabled,
				Adjustment:     demandAdj,
				Multiplier:     demandAdj,
				RecentBookings: recentCount,
			},
			InventoryBased: entities.InventoryAdjustment{
				Enabled:             rules.InventoryBased.Enabled,
				Adjustment:          inventoryAdj,
				Multiplier:          inventoryAdj,
				RemainingPercentage: remaining,
			},
		},
		FinalAdjustment: finalAdjustment,
		RespectsFloor:   raw.GreaterThanOrEqual(event.PriceFloor),
		RespectsCeiling: raw.LessThanOrEqual(event.PriceCeiling),
	}
}

// DaysUntil is the number of started 24h periods between now and eventDate,
// rounded up. It is zero or negative once the event date has been reached.
func DaysUntil(eventDate, now time.Time) int {
	d := eventDate.Sub(now)
	days := d / (24 * time.Hour)
	if d%(24*time.Hour) > 0 {
		days++
	}
	return int(days)
}

// RemainingPercentage is 0 for an event without capacity.
func RemainingPercentage(total, booked int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(total - booked)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(total)))
}

func timeAdjustment(rules entities.TimeBasedRules, daysUntil int) decimal.Decimal {
	if !rules.Enabled {
		return decimal.Zero
	}

	// A matching rule can raise the adjustment but never push it below zero.
	best := decimal.Zero
	for _, rule := range rules.Rules {
		if daysUntil <= rule.DaysBefore && rule.Multiplier.GreaterThan(best) {
			best = rule.Multiplier
		}
	}
	return best
}

func demandAdjustment(rule entities.DemandBasedRule, recentCount int) decimal.Decimal {
	if !rule.Enabled || recentCount < rule.Threshold {
		return decimal.Zero
	}
	return rule.Multiplier
}

func inventoryAdjustment(rule entities.InventoryBasedRule, remaining decimal.Decimal) decimal.Decimal {
	if !rule.Enabled || remaining.GreaterThan(rule.Threshold) {
		return decimal.Zero
	}
	return rule.Multiplier
}

func countRecent(eventID int64, recent []entities.RecentBooking, now time.Time) int {
	since := now.Add(-DemandWindow)

	count := 0
	for _, b := range recent {
		if b.EventID == eventID && !b.CreatedAt.Before(since) {
			count++
		}
	}
	return count
}
