package db

import (
	"context"
	"fmt"

	"dynamictickets/entities"
)

// DataLakeRepository keeps a raw copy of every published domain event.
type DataLakeRepository struct {
	db *DB
}

func NewDataLakeRepository(db *DB) DataLakeRepository {
	if db == nil {
		panic("db is nil")
	}
	return DataLakeRepository{
		db: db,
	}
}

func (r DataLakeRepository) Store(ctx context.Context, event entities.PublishedEvent) error {
	_, err := r.db.Conn.ExecContext(ctx, `
		INSERT INTO
			published_events (event_id, published_at, event_name, event_payload)
		VALUES
			($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING
	`, event.EventID, event.PublishedAt, event.EventName, event.Payload)
	if err != nil {
		return fmt.Errorf("could not store event %s in data lake: %w", event.EventID, err)
	}

	return nil
}

func (r DataLakeRepository) GetAll(ctx context.Context) ([]entities.PublishedEvent, error) {
	var events []entities.PublishedEvent
	err := r.db.Conn.SelectContext(ctx, &events, `
		SELECT event_id, published_at, event_name, event_payload
		FROM published_events
		ORDER BY published_at, event_id
	`)
	if err != nil {
		return nil, fmt.Errorf("could not get events from data lake: %w", err)
	}

	return events, nil
}
