package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dynamictickets/booking"
	"dynamictickets/entities"
	"dynamictickets/message/event"
	"dynamictickets/message/outbox"

	"github.com/jmoiron/sqlx"
)

// InventoryStore serializes bookings per event with SELECT ... FOR UPDATE.
type InventoryStore struct {
	db          *DB
	lockTimeout time.Duration
}

func NewInventoryStore(db *DB, lockTimeout time.Duration) InventoryStore {
	if db == nil {
		panic("db is nil")
	}
	return InventoryStore{
		db:          db,
		lockTimeout: lockTimeout,
	}
}

func (s InventoryStore) WithEventLock(
	ctx context.Context,
	eventID int64,
	fn func(ctx context.Context, tx booking.InventoryTx, event entities.Event) error,
) error {
	err := UpdateInTx(
		ctx,
		s.db.Conn,
		sql.LevelReadCommitted,
		func(ctx context.Context, tx *sqlx.Tx) error {
			if s.lockTimeout > 0 {
				_, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", s.lockTimeout.Milliseconds()))
				if err != nil {
					return fmt.Errorf("could not set lock timeout: %w", err)
				}
			}

			var locked entities.Event
			err := tx.GetContext(ctx, &locked, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, eventID)
			if errors.Is(err, sql.ErrNoRows) {
				return entities.ErrEventNotFound
			}
			if err != nil {
				return fmt.Errorf("could not lock event %d: %w", eventID, err)
			}

			return fn(ctx, inventoryTx{tx: tx}, locked)
		},
	)

	return classifyError(ctx, err)
}

type inventoryTx struct {
	tx *sqlx.Tx
}

func (i inventoryTx) RecentBookings(ctx context.Context, eventID int64, since time.Time) ([]entities.RecentBooking, error) {
	var recent []entities.RecentBooking
	err := i.tx.SelectContext(ctx, &recent, `
		SELECT event_id, created_at
		FROM bookings
		WHERE event_id = $1 AND created_at >= $2
	`, eventID, since)
	if err != nil {
		return nil, fmt.Errorf("could not select recent bookings: %w", err)
	}

	return recent, nil
}

func (i inventoryTx) InsertBooking(ctx context.Context, b entities.Booking) (entities.Booking, error) {
	err := i.tx.GetContext(ctx, &b.ID, `
		INSERT INTO
			bookings (event_id, user_email, quantity, unit_price, price_paid, booking_reference, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, b.EventID, b.UserEmail, b.Quantity, b.UnitPrice, b.PricePaid, b.BookingReference, b.CreatedAt)
	if isErrorUniqueViolation(err) {
		return entities.Booking{}, fmt.Errorf("booking reference %s already used: %w", b.BookingReference, err)
	}
	if err != nil {
		return entities.Booking{}, fmt.Errorf("could not insert booking: %w", err)
	}

	return b, nil
}

func (i inventoryTx) UpdateInventory(ctx context.Context, update entities.InventoryUpdate) error {
	res, err := i.tx.ExecContext(ctx, `
		UPDATE events
		SET booked_tickets = $2, current_price = $3, booking_seq = $4, updated_at = $5
		WHERE id = $1
	`, update.EventID, update.BookedTickets, update.CurrentPrice, update.BookingSeq, update.UpdatedAt)
	if err != nil {
		return fmt.Errorf("could not update event %d inventory: %w", update.EventID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read affected rows: %w", err)
	}
	if affected != 1 {
		return fmt.Errorf("expected to update 1 event row, updated %d", affected)
	}

	return nil
}

func (i inventoryTx) Publish(ctx context.Context, events ...entities.IEvent) error {
	publisher, err := outbox.NewTxPublisher(ctx, i.tx)
	if err != nil {
		return err
	}

	bus, err := event.NewBus(publisher)
	if err != nil {
		return err
	}

	for _, e := range events {
		if err := bus.Publish(ctx, e); err != nil {
			return fmt.Errorf("could not publish %T: %w", e, err)
		}
	}

	return nil
}
