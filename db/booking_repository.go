package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dynamictickets/entities"
)

const bookingColumns = `id, event_id, user_email, quantity, unit_price, price_paid, booking_reference, created_at`

// BookingRepository reads the booking ledger. Rows are only ever written by
// the inventory store, inside the booking transaction.
type BookingRepository struct {
	db *DB
}

func NewBookingRepository(db *DB) BookingRepository {
	if db == nil {
		panic("db is nil")
	}
	return BookingRepository{
		db: db,
	}
}

func (r BookingRepository) GetByID(ctx context.Context, id int64) (entities.Booking, error) {
	var booking entities.Booking
	err := r.db.Conn.GetContext(ctx, &booking, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Booking{}, entities.ErrBookingNotFound
	}
	if err != nil {
		return entities.Booking{}, fmt.Errorf("could not get booking %d: %w", id, err)
	}

	return booking, nil
}

func (r BookingRepository) ListByEvent(ctx context.Context, eventID int64) ([]entities.Booking, error) {
	bookings := []entities.Booking{}
	err := r.db.Conn.SelectContext(ctx, &bookings, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE event_id = $1
		ORDER BY created_at, id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("could not list bookings for event %d: %w", eventID, err)
	}

	return bookings, nil
}

func (r BookingRepository) ListByUser(ctx context.Context, email string) ([]entities.Booking, error) {
	bookings := []entities.Booking{}
	err := r.db.Conn.SelectContext(ctx, &bookings, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE user_email = $1
		ORDER BY created_at, id
	`, email)
	if err != nil {
		return nil, fmt.Errorf("could not list bookings for user: %w", err)
	}

	return bookings, nil
}

// RecentBookings is the read-only twin of the locked query in the inventory
// store, used to render a price breakdown outside a booking.
func (r BookingRepository) RecentBookings(ctx context.Context, eventID int64, since time.Time) ([]entities.RecentBooking, error) {
	recent := []entities.RecentBooking{}
	err := r.db.Conn.SelectContext(ctx, &recent, `
		SELECT event_id, created_at
		FROM bookings
		WHERE event_id = $1 AND created_at >= $2
	`, eventID, since)
	if err != nil {
		return nil, fmt.Errorf("could not get recent bookings for event %d: %w", eventID, err)
	}

	return recent, nil
}
