package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type Booking struct {
	ID               int64           `json:"id" db:"id"`
	EventID          int64           `json:"eventId" db:"event_id"`
	UserEmail        string          `json:"userEmail" db:"user_email"`
	Quantity         int             `json:"quantity" db:"quantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice" db:"unit_price"`
	PricePaid        decimal.Decimal `json:"pricePaid" db:"price_paid"`
	BookingReference string          `json:"bookingReference" db:"booking_reference"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
}

type CreateBookingRequest struct {
	EventID   int64
	UserEmail string
	Quantity  int
}

// RecentBooking is the slice of a booking the demand rule looks at.
type RecentBooking struct {
	EventID   int64     `db:"event_id"`
	CreatedAt time.Time `db:"created_at"`
}
