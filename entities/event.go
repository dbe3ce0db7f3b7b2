package entities

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Event struct {
	ID            int64           `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Description   string          `json:"description" db:"description"`
	Venue         string          `json:"venue" db:"venue"`
	EventDate     time.Time       `json:"eventDate" db:"event_date"`
	TotalTickets  int             `json:"totalTickets" db:"total_tickets"`
	BookedTickets int             `json:"bookedTickets" db:"booked_tickets"`
	BasePrice     decimal.Decimal `json:"basePrice" db:"base_price"`
	CurrentPrice  decimal.Decimal `json:"currentPrice" db:"current_price"`
	PriceFloor    decimal.Decimal `json:"priceFloor" db:"price_floor"`
	PriceCeiling  decimal.Decimal `json:"priceCeiling" db:"price_ceiling"`
	PricingRules  PricingRules    `json:"pricingRules" db:"pricing_rules"`
	IsActive      bool            `json:"isActive" db:"is_active"`
	BookingSeq    int64           `json:"-" db:"booking_seq"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// AvailableTickets never goes below zero, even for a row that violates the
// booked <= total invariant.
func (e Event) AvailableTickets() int {
	if e.BookedTickets >= e.TotalTickets {
		return 0
	}
	return e.TotalTickets - e.BookedTickets
}

// ClampPrice bounds price to [PriceFloor, PriceCeiling].
func (e Event) ClampPrice(price decimal.Decimal) decimal.Decimal {
	if price.LessThan(e.PriceFloor) {
		return e.PriceFloor
	}
	if price.GreaterThan(e.PriceCeiling) {
		return e.PriceCeiling
	}
	return price
}

type CreateEventRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Venue        string          `json:"venue"`
	EventDate    time.Time       `json:"eventDate"`
	TotalTickets int             `json:"totalTickets"`
	BasePrice    decimal.Decimal `json:"basePrice"`
	PriceFloor   decimal.Decimal `json:"priceFloor"`
	PriceCeiling decimal.Decimal `json:"priceCeiling"`
	PricingRules *PricingRules   `json:"pricingRules"`
	IsActive     *bool           `json:"isActive"`
}

func (r CreateEventRequest) Validate() error {
	var errs []error

	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if strings.TrimSpace(r.Venue) == "" {
		errs = append(errs, errors.New("venue is required"))
	}
	if r.EventDate.IsZero() {
		errs = append(errs, errors.New("eventDate is required"))
	}
	if r.TotalTickets < 0 {
		errs = append(errs, errors.New("totalTickets must not be negative"))
	}
	if !r.BasePrice.IsPositive() {
		errs = append(errs, errors.New("basePrice must be greater than 0"))
	}
	if r.PriceFloor.IsNegative() {
		errs = append(errs, errors.New("priceFloor must not be negative"))
	}
	if r.PriceFloor.GreaterThan(r.PriceCeiling) {
		errs = append(errs, errors.New("priceFloor must not exceed priceCeiling"))
	}
	if r.PricingRules != nil {
		if err := r.PricingRules.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return ValidationError{Err: errors.Join(errs...)}
	}
	return nil
}

// NewEvent starts with no bookings and the base price clamped into range.
func NewEvent(req CreateEventRequest, rules PricingRules, now time.Time) Event {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	if req.PricingRules != nil {
		rules = *req.PricingRules
	}

	event := Event{
		Name:         req.Name,
		Description:  req.Description,
		Venue:        req.Venue,
		EventDate:    req.EventDate.UTC(),
		TotalTickets: req.TotalTickets,
		BasePrice:    req.BasePrice,
		PriceFloor:   req.PriceFloor,
		PriceCeiling: req.PriceCeiling,
		PricingRules: rules,
		IsActive:     isActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	event.CurrentPrice = event.ClampPrice(req.BasePrice)

	return event
}

// InventoryUpdate is written together with the booking row that caused it.
type InventoryUpdate struct {
	EventID       int64
	BookedTickets int
	CurrentPrice  decimal.Decimal
	BookingSeq    int64
	UpdatedAt     time.Time
}
