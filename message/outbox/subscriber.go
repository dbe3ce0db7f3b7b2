package outbox

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-sql/v2/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
)

// SubscribeForPGMessages also creates the outbox tables, so it has to run
// before the first booking is published.
func SubscribeForPGMessages(db *sqlx.DB, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	sub, err := sql.NewSubscriber(db, sql.SubscriberConfig{
		SchemaAdapter:  sql.DefaultPostgreSQLSchema{},
		OffsetsAdapter: sql.DefaultPostgreSQLOffsetsAdapter{},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("could not create outbox subscriber: %w", err)
	}

	if err := sub.SubscribeInitialize(topic); err != nil {
		return nil, fmt.Errorf("could not initialize outbox topic: %w", err)
	}

	return sub, nil
}
