package outbox

import (
	"context"
	"fmt"

	observability "dynamictickets/trace"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	watermillSQL "github.com/ThreeDotsLabs/watermill-sql/v2/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
)

// NewTxPublisher writes messages into the outbox table through tx. Nothing
// reaches Redis unless tx commits.
func NewTxPublisher(ctx context.Context, tx *sqlx.Tx) (message.Publisher, error) {
	sqlPub, err := watermillSQL.NewPublisher(tx, watermillSQL.PublisherConfig{
		SchemaAdapter: watermillSQL.DefaultPostgreSQLSchema{},
	}, log.NewWatermill(log.FromContext(ctx)))
	if err != nil {
		return nil, fmt.Errorf("could not create outbox publisher: %w", err)
	}

	return decorate(sqlPub), nil
}

// decorate envelopes every message for the forwarder topic and stamps the
// correlation id and trace context on the envelope.
func decorate(pub message.Publisher) message.Publisher {
	enveloped := forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: topic})

	return observability.TracingPublisherDecorator{
		Publisher: log.CorrelationPublisherDecorator{Publisher: enveloped},
	}
}
