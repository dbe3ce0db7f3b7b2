package booking

import (
	"context"
	"time"

	"dynamictickets/entities"
)

// InventoryStore runs fn while holding the exclusive lock on one event row.
// Everything fn writes through tx commits together when fn returns nil and
// is rolled back otherwise. Locks on different events never block each other.
//
// WithEventLock returns entities.ErrEventNotFound when the row doesn't exist
// and wraps lock timeouts, deadlocks and serialization failures in
// entities.TransientStoreError.
type InventoryStore interface {
	WithEventLock(
		ctx context.Context,
		eventID int64,
		fn func(ctx context.Context, tx InventoryTx, event entities.Event) error,
	) error
}

// InventoryTx is only valid inside the WithEventLock callback.
type InventoryTx interface {
	RecentBookings(ctx context.Context, eventID int64, since time.Time) ([]entities.RecentBooking, error)
	InsertBooking(ctx context.Context, booking entities.Booking) (entities.Booking, error)
	UpdateInventory(ctx context.Context, update entities.InventoryUpdate) error
	Publish(ctx context.Context, events ...entities.IEvent) error
}

type Metrics interface {
	BookingCreated(quantity int)
	BookingRejected(reason string)
	ObserveDuration(d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) BookingCreated(int) {}

func (noopMetrics) BookingRejected(string) {}

func (noopMetrics) ObserveDuration(time.Duration) {}
