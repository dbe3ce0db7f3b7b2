package message

import (
	"context"
	"encoding/json"
	"fmt"

	"dynamictickets/entities"
	"dynamictickets/message/event"
	"dynamictickets/message/outbox"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const (
	eventsSplitterConsumerGroup = "svc-dynamictickets.events_splitter"
	dataLakeConsumerGroup       = "svc-dynamictickets.store_to_data_lake"
)

type DataLakeStore interface {
	Store(ctx context.Context, event entities.PublishedEvent) error
}

func NewWatermillRouter(
	pgSubscriber message.Subscriber,
	redisClient *redis.Client,
	publisher message.Publisher,
	eventProcessorConfig cqrs.EventProcessorConfig,
	eventHandler event.Handler,
	dataLake DataLakeStore,
	metricsRegisterer prometheus.Registerer,
	watermillLogger watermill.LoggerAdapter,
) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, watermillLogger)
	if err != nil {
		return nil, fmt.Errorf("could not create router: %w", err)
	}

	if err := useMiddlewares(router, publisher, watermillLogger); err != nil {
		return nil, err
	}

	metricsBuilder := metrics.NewPrometheusMetricsBuilder(metricsRegisterer, "dynamictickets", "")
	metricsBuilder.AddPrometheusRouterMetrics(router)

	if _, err := outbox.NewForwarder(pgSubscriber, publisher, watermillLogger, router); err != nil {
		return nil, fmt.Errorf("could not create outbox forwarder: %w", err)
	}

	addEventsSplitter(router, NewRedisSubscriber(redisClient, eventsSplitterConsumerGroup, watermillLogger), publisher)
	addDataLakeHandler(router, NewRedisSubscriber(redisClient, dataLakeConsumerGroup, watermillLogger), dataLake)

	eventProcessor, err := cqrs.NewEventProcessorWithConfig(router, eventProcessorConfig)
	if err != nil {
		return nil, fmt.Errorf("could not create event processor: %w", err)
	}

	err = eventProcessor.AddHandlers(
		cqrs.NewEventHandler(
			"UpdateSalesOnBookingMade",
			eventHandler.UpdateSalesOnBookingMade,
		),
		cqrs.NewEventHandler(
			"UpdateSalesOnPriceChanged",
			eventHandler.UpdateSalesOnPriceChanged,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("could not add event handlers: %w", err)
	}

	return router, nil
}

// addEventsSplitter republishes every external event to a topic of its own,
// so each processor only receives the events it handles.
func addEventsSplitter(router *message.Router, sub message.Subscriber, pub message.Publisher) {
	router.AddNoPublisherHandler(
		"events_splitter",
		event.ExternalTopic,
		sub,
		func(msg *message.Message) error {
			eventName := event.Marshaler.NameFromMessage(msg)
			if eventName == "" {
				return entities.PermanentError{Err: fmt.Errorf("message %s has no event name", msg.UUID)}
			}

			return pub.Publish(event.TopicForEvent(eventName), msg)
		},
	)
}

func addDataLakeHandler(router *message.Router, sub message.Subscriber, dataLake DataLakeStore) {
	router.AddNoPublisherHandler(
		"store_to_data_lake",
		event.ExternalTopic,
		sub,
		func(msg *message.Message) error {
			eventName := event.Marshaler.NameFromMessage(msg)
			if eventName == "" {
				return entities.PermanentError{Err: fmt.Errorf("message %s has no event name", msg.UUID)}
			}

			var payload struct {
				Header entities.EventHeader `json:"header"`
			}
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				return entities.PermanentError{Err: fmt.Errorf("could not unmarshal event header: %w", err)}
			}
			if payload.Header.ID == "" {
				return entities.PermanentError{Err: fmt.Errorf("message %s has no event id", msg.UUID)}
			}

			log.FromContext(msg.Context()).
				WithField("event_name", eventName).
				Debug("Storing event in data lake")

			return dataLake.Store(msg.Context(), entities.PublishedEvent{
				EventID:     payload.Header.ID,
				PublishedAt: payload.Header.PublishedAt,
				EventName:   eventName,
				Payload:     msg.Payload,
			})
		},
	)
}
