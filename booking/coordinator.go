// Package booking creates bookings: one locked, all-or-nothing transaction
// per request that validates the event, prices the tickets, appends the
// booking and moves the inventory.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dynamictickets/clock"
	"dynamictickets/entities"
	"dynamictickets/pricing"
	"dynamictickets/reference"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/cenkalti/backoff/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type State string

const (
	StateReceived      State = "Received"
	StateLockAcquired  State = "LockAcquired"
	StateValidated     State = "Validated"
	StatePriced        State = "Priced"
	StatePersisted     State = "Persisted"
	StateCommitted     State = "Committed"
	StateRejected      State = "Rejected"
	StatePersistFailed State = "PersistFailed"
)

const (
	DefaultMaxRetries      = 3
	DefaultInitialInterval = 50 * time.Millisecond
	DefaultMaxInterval     = time.Second
)

type Coordinator struct {
	store   InventoryStore
	clock   clock.Clock
	metrics Metrics

	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
}

type Option func(*Coordinator)

func WithClock(c clock.Clock) Option {
	return func(co *Coordinator) {
		co.clock = c
	}
}

func WithMetrics(m Metrics) Option {
	return func(co *Coordinator) {
		co.metrics = m
	}
}

// WithRetries sets how many times a booking is retried after a transient
// store failure. Zero disables retries.
func WithRetries(maxRetries uint64, initialInterval, maxInterval time.Duration) Option {
	return func(co *Coordinator) {
		co.maxRetries = maxRetries
		co.initialInterval = initialInterval
		co.maxInterval = maxInterval
	}
}

func NewCoordinator(store InventoryStore, opts ...Option) *Coordinator {
	if store == nil {
		panic("missing inventory store")
	}

	c := &Coordinator{
		store:           store,
		clock:           clock.NewSystem(),
		metrics:         noopMetrics{},
		maxRetries:      DefaultMaxRetries,
		initialInterval: DefaultInitialInterval,
		maxInterval:     DefaultMaxInterval,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Coordinator) CreateBooking(ctx context.Context, req entities.CreateBookingRequest) (entities.Booking, error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveDuration(time.Since(start))
	}()

	logger := log.FromContext(ctx).WithFields(logrus.Fields{
		"event_id":   req.EventID,
		"user_email": req.UserEmail,
		"quantity":   req.Quantity,
	})
	logger.WithField("state", StateReceived).Debug("Booking request received")

	if req.Quantity < 1 {
		err := entities.NewValidationError("quantity must be at least 1")
		c.reject(logger, "validation", err)
		return entities.Booking{}, err
	}

	var (
		created entities.Booking
		attempt int
	)

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.InitialInterval = c.initialInterval
	retryPolicy.MaxInterval = c.maxInterval
	retryPolicy.MaxElapsedTime = 0

	err := backoff.Retry(func() error {
		attempt++

		b, err := c.attempt(ctx, logger.WithField("attempt", attempt), req)
		if err == nil {
			created = b
			return nil
		}
		if entities.IsTransient(err) {
			logger.WithError(err).WithField("attempt", attempt).Warn("Transient store failure, retrying booking")
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(retryPolicy, c.maxRetries), ctx))
	if err != nil {
		c.reject(logger, rejectReason(err), err)
		if entities.IsTransient(err) {
			return entities.Booking{}, fmt.Errorf("booking failed after %d attempts: %w", attempt, err)
		}
		return entities.Booking{}, err
	}

	c.metrics.BookingCreated(created.Quantity)
	logger.WithFields(logrus.Fields{
		"state":             StateCommitted,
		"booking_id":        created.ID,
		"booking_reference": created.BookingReference,
		"unit_price":        created.UnitPrice.StringFixed(2),
		"price_paid":        created.PricePaid.StringFixed(2),
	}).Info("Booking committed")

	return created, nil
}

func (c *Coordinator) attempt(ctx context.Context, logger *logrus.Entry, req entities.CreateBookingRequest) (entities.Booking, error) {
	var created entities.Booking

	err := c.store.WithEventLock(ctx, req.EventID, func(ctx context.Context, tx InventoryTx, event entities.Event) error {
		logger.WithField("state", StateLockAcquired).Debug("Event locked")

		now := c.clock.Now()
		if err := Validate(event, req.Quantity, now); err != nil {
			return err
		}
		logger.WithField("state", StateValidated).Debug("Booking validated")

		recent, err := tx.RecentBookings(ctx, event.ID, now.Add(-pricing.DemandWindow))
		if err != nil {
			return fmt.Errorf("could not load recent bookings: %w", err)
		}

		breakdown := pricing.Compute(event, recent, now)
		unitPrice := breakdown.CurrentPrice
		logger.WithFields(logrus.Fields{
			"state":      StatePriced,
			"unit_price": unitPrice.StringFixed(2),
		}).Debug("Booking priced")

		seq := event.BookingSeq + 1
		booking, err := tx.InsertBooking(ctx, entities.Booking{
			EventID:          event.ID,
			UserEmail:        req.UserEmail,
			Quantity:         req.Quantity,
			UnitPrice:        unitPrice,
			PricePaid:        unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))),
			BookingReference: reference.New(event.ID, seq),
			CreatedAt:        now,
		})
		if err != nil {
			return persistFailed(logger, fmt.Errorf("could not insert booking: %w", err))
		}

		bookedTickets := event.BookedTickets + req.Quantity
		err = tx.UpdateInventory(ctx, entities.InventoryUpdate{
			EventID:       event.ID,
			BookedTickets: bookedTickets,
			CurrentPrice:  unitPrice,
			BookingSeq:    seq,
			UpdatedAt:     now,
		})
		if err != nil {
			return persistFailed(logger, fmt.Errorf("could not update inventory: %w", err))
		}

		events := []entities.IEvent{
			entities.BookingMade_v1{
				Header:           entities.NewEventHeaderWithIdempotencyKey(booking.BookingReference),
				BookingID:        booking.ID,
				BookingReference: booking.BookingReference,
				EventID:          event.ID,
				UserEmail:        booking.UserEmail,
				Quantity:         booking.Quantity,
				UnitPrice:        booking.UnitPrice.StringFixed(2),
				PricePaid:        booking.PricePaid.StringFixed(2),
				BookedTickets:    bookedTickets,
				TotalTickets:     event.TotalTickets,
				BookedAt:         booking.CreatedAt,
			},
		}
		if !unitPrice.Equal(event.CurrentPrice) {
			events = append(events, entities.EventPriceChanged_v1{
				Header:        entities.NewEventHeaderWithIdempotencyKey(fmt.Sprintf("%d-%d", event.ID, seq)),
				EventID:       event.ID,
				PreviousPrice: event.CurrentPrice.StringFixed(2),
				CurrentPrice:  unitPrice.StringFixed(2),
				ChangedAt:     now,
			})
		}
		if err := tx.Publish(ctx, events...); err != nil {
			return persistFailed(logger, fmt.Errorf("could not publish booking events: %w", err))
		}

		logger.WithField("state", StatePersisted).Debug("Booking persisted")
		created = booking
		return nil
	})
	if err != nil {
		return entities.Booking{}, err
	}

	return created, nil
}

// Validate checks a locked event against a booking of quantity tickets.
// The order of the checks decides which error a caller sees.
func Validate(event entities.Event, quantity int, now time.Time) error {
	if !event.IsActive {
		return entities.ErrEventInactive
	}
	if !event.EventDate.After(now) {
		return entities.ErrEventPassed
	}
	if event.BookedTickets < 0 || event.BookedTickets > event.TotalTickets {
		return entities.InvariantViolationError{
			EventID: event.ID,
			Detail:  fmt.Sprintf("booked tickets %d outside [0, %d]", event.BookedTickets, event.TotalTickets),
		}
	}
	if available := event.TotalTickets - event.BookedTickets; available < quantity {
		return entities.CapacityExceededError{Requested: quantity, Available: available}
	}
	return nil
}

func (c *Coordinator) reject(logger *logrus.Entry, reason string, err error) {
	c.metrics.BookingRejected(reason)

	entry := logger.WithError(err).WithFields(logrus.Fields{
		"state":  StateRejected,
		"reason": reason,
	})

	var invariantErr entities.InvariantViolationError
	switch {
	case errors.As(err, &invariantErr):
		entry.Error("Booking rejected: inventory invariant violated")
	case reason == "error" || reason == "transient":
		entry.Warn("Booking rejected")
	default:
		entry.Info("Booking rejected")
	}
}

func persistFailed(logger *logrus.Entry, err error) error {
	logger.WithError(err).WithField("state", StatePersistFailed).Warn("Booking not persisted, rolling back")
	return err
}

func rejectReason(err error) string {
	var (
		capacityErr   entities.CapacityExceededError
		invariantErr  entities.InvariantViolationError
		validationErr entities.ValidationError
	)

	switch {
	case errors.Is(err, entities.ErrEventNotFound):
		return "not_found"
	case errors.Is(err, entities.ErrEventInactive):
		return "inactive"
	case errors.Is(err, entities.ErrEventPassed):
		return "passed"
	case errors.As(err, &capacityErr):
		return "capacity"
	case errors.As(err, &invariantErr):
		return "invariant"
	case errors.As(err, &validationErr):
		return "validation"
	case entities.IsTransient(err):
		return "transient"
	default:
		return "error"
	}
}
