package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dynamictickets/entities"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// EventSalesReadModel keeps a per-event sales roll-up built from
// BookingMade_v1 events. Bookings are keyed by reference, so a redelivered
// event doesn't count twice.
type EventSalesReadModel struct {
	db *DB
}

func NewEventSalesReadModel(db *DB) EventSalesReadModel {
	if db == nil {
		panic("db is nil")
	}
	return EventSalesReadModel{
		db: db,
	}
}

func (r EventSalesReadModel) OnBookingMade(ctx context.Context, event *entities.BookingMade_v1) error {
	pricePaid, err := decimal.NewFromString(event.PricePaid)
	if err != nil {
		return entities.PermanentError{Err: fmt.Errorf("invalid price paid %q: %w", event.PricePaid, err)}
	}
	unitPrice, err := decimal.NewFromString(event.UnitPrice)
	if err != nil {
		return entities.PermanentError{Err: fmt.Errorf("invalid unit price %q: %w", event.UnitPrice, err)}
	}

	return r.update(ctx, event.EventID, func(rm entities.EventSales) (entities.EventSales, error) {
		if _, ok := rm.Bookings[event.BookingReference]; ok {
			return rm, nil
		}

		rm.Bookings[event.BookingReference] = entities.EventSalesLine{
			Quantity:  event.Quantity,
			PricePaid: pricePaid,
			BookedAt:  event.BookedAt,
		}
		rm.TicketsSold += event.Quantity
		rm.Revenue = rm.Revenue.Add(pricePaid)
		if !event.BookedAt.Before(rm.LastBookingAt) {
			rm.LastBookingAt = event.BookedAt
			rm.CurrentPrice = unitPrice
		}

		return rm, nil
	})
}

func (r EventSalesReadModel) OnEventPriceChanged(ctx context.Context, event *entities.EventPriceChanged_v1) error {
	currentPrice, err := decimal.NewFromString(event.CurrentPrice)
	if err != nil {
		return entities.PermanentError{Err: fmt.Errorf("invalid current price %q: %w", event.CurrentPrice, err)}
	}

	return r.update(ctx, event.EventID, func(rm entities.EventSales) (entities.EventSales, error) {
		if event.ChangedAt.Before(rm.LastBookingAt) {
			return rm, nil
		}
		rm.CurrentPrice = currentPrice
		return rm, nil
	})
}

func (r EventSalesReadModel) GetByEventID(ctx context.Context, eventID int64) (entities.EventSales, error) {
	var payload []byte
	err := r.db.Conn.GetContext(ctx, &payload, `SELECT payload FROM read_model_event_sales WHERE event_id = $1`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return newEventSales(eventID), nil
	}
	if err != nil {
		return entities.EventSales{}, fmt.Errorf("could not get sales of event %d: %w", eventID, err)
	}

	return unmarshalEventSales(eventID, payload)
}

func (r EventSalesReadModel) GetAll(ctx context.Context) ([]entities.EventSales, error) {
	var rows []struct {
		EventID int64  `db:"event_id"`
		Payload []byte `db:"payload"`
	}
	err := r.db.Conn.SelectContext(ctx, &rows, `SELECT event_id, payload FROM read_model_event_sales ORDER BY event_id`)
	if err != nil {
		return nil, fmt.Errorf("could not get event sales: %w", err)
	}

	sales := make([]entities.EventSales, 0, len(rows))
	for _, row := range rows {
		rm, err := unmarshalEventSales(row.EventID, row.Payload)
		if err != nil {
			return nil, err
		}
		sales = append(sales, rm)
	}

	return sales, nil
}

func (r EventSalesReadModel) update(
	ctx context.Context,
	eventID int64,
	updateFunc func(rm entities.EventSales) (entities.EventSales, error),
) error {
	return UpdateInTx(
		ctx,
		r.db.Conn,
		sql.LevelReadCommitted,
		func(ctx context.Context, tx *sqlx.Tx) error {
			// the row may not exist yet, so lock on the event id instead of the row
			if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, eventID); err != nil {
				return fmt.Errorf("could not lock sales of event %d: %w", eventID, err)
			}

			var payload []byte
			rm := newEventSales(eventID)

			err := tx.GetContext(ctx, &payload, `SELECT payload FROM read_model_event_sales WHERE event_id = $1`, eventID)
			switch {
			case errors.Is(err, sql.ErrNoRows):
			case err != nil:
				return fmt.Errorf("could not find sales of event %d: %w", eventID, err)
			default:
				if rm, err = unmarshalEventSales(eventID, payload); err != nil {
					return err
				}
			}

			updated, err := updateFunc(rm)
			if err != nil {
				return err
			}
			updated.LastUpdate = time.Now().UTC()

			payload, err = json.Marshal(updated)
			if err != nil {
				return fmt.Errorf("could not marshal sales of event %d: %w", eventID, err)
			}

			_, err = tx.ExecContext(ctx, `
				INSERT INTO
					read_model_event_sales (event_id, payload)
				VALUES
					($1, $2)
				ON CONFLICT (event_id) DO UPDATE SET payload = excluded.payload
			`, eventID, payload)
			if err != nil {
				return fmt.Errorf("could not update sales of event %d: %w", eventID, err)
			}

			return nil
		},
	)
}

func newEventSales(eventID int64) entities.EventSales {
	return entities.EventSales{
		EventID:  eventID,
		Revenue:  decimal.Zero,
		Bookings: map[string]entities.EventSalesLine{},
	}
}

func unmarshalEventSales(eventID int64, payload []byte) (entities.EventSales, error) {
	rm := newEventSales(eventID)
	if err := json.Unmarshal(payload, &rm); err != nil {
		return entities.EventSales{}, fmt.Errorf("could not unmarshal sales of event %d: %w", eventID, err)
	}
	if rm.Bookings == nil {
		rm.Bookings = map[string]entities.EventSalesLine{}
	}
	return rm, nil
}
