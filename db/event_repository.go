package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dynamictickets/entities"
)

const eventColumns = `
	id, name, description, venue, event_date, total_tickets, booked_tickets,
	base_price, current_price, price_floor, price_ceiling, pricing_rules,
	is_active, booking_seq, created_at, updated_at`

type EventRepository struct {
	db *DB
}

func NewEventRepository(db *DB) EventRepository {
	if db == nil {
		panic("db is nil")
	}
	return EventRepository{
		db: db,
	}
}

func (r EventRepository) Create(ctx context.Context, event entities.Event) (entities.Event, error) {
	err := r.db.Conn.GetContext(ctx, &event, `
		INSERT INTO
			events (name, description, venue, event_date, total_tickets, booked_tickets,
				base_price, current_price, price_floor, price_ceiling, pricing_rules, is_active)
		VALUES
			($1, $2, $3, $4, $5, 0, $6, $7, $8, $9, $10, $11)
		RETURNING `+eventColumns,
		event.Name,
		event.Description,
		event.Venue,
		event.EventDate,
		event.TotalTickets,
		event.BasePrice,
		event.CurrentPrice,
		event.PriceFloor,
		event.PriceCeiling,
		event.PricingRules,
		event.IsActive,
	)
	if err != nil {
		return entities.Event{}, fmt.Errorf("could not create event: %w", err)
	}

	return event, nil
}

func (r EventRepository) GetByID(ctx context.Context, id int64) (entities.Event, error) {
	var event entities.Event
	err := r.db.Conn.GetContext(ctx, &event, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Event{}, entities.ErrEventNotFound
	}
	if err != nil {
		return entities.Event{}, fmt.Errorf("could not get event %d: %w", id, err)
	}

	return event, nil
}

func (r EventRepository) List(ctx context.Context) ([]entities.Event, error) {
	var events []entities.Event
	err := r.db.Conn.SelectContext(ctx, &events, `SELECT `+eventColumns+` FROM events ORDER BY event_date, id`)
	if err != nil {
		return nil, fmt.Errorf("could not list events: %w", err)
	}

	return events, nil
}
