package entities

import (
	"time"

	"github.com/google/uuid"
)

type IEvent interface {
	IsInternal() bool
}

type EventHeader struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		ID:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: uuid.NewString(),
	}
}

func NewEventHeaderWithIdempotencyKey(idempotencyKey string) EventHeader {
	return EventHeader{
		ID:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

type BookingMade_v1 struct {
	Header EventHeader `json:"header"`

	BookingID        int64     `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
	EventID          int64     `json:"event_id"`
	UserEmail        string    `json:"user_email"`
	Quantity         int       `json:"quantity"`
	UnitPrice        string    `json:"unit_price"`
	PricePaid        string    `json:"price_paid"`
	BookedTickets    int       `json:"booked_tickets"`
	TotalTickets     int       `json:"total_tickets"`
	BookedAt         time.Time `json:"booked_at"`
}

func (BookingMade_v1) IsInternal() bool {
	return false
}

type EventPriceChanged_v1 struct {
	Header EventHeader `json:"header"`

	EventID       int64     `json:"event_id"`
	PreviousPrice string    `json:"previous_price"`
	CurrentPrice  string    `json:"current_price"`
	ChangedAt     time.Time `json:"changed_at"`
}

func (EventPriceChanged_v1) IsInternal() bool {
	return false
}

// PublishedEvent is a raw copy of a domain event kept in the data lake.
type PublishedEvent struct {
	EventID     string    `db:"event_id"`
	PublishedAt time.Time `db:"published_at"`
	EventName   string    `db:"event_name"`
	Payload     []byte    `db:"event_payload"`
}
