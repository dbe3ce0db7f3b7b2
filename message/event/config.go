package event

import (
	"fmt"

	"dynamictickets/entities"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
)

// Marshaler names events by struct name, so BookingMade_v1 travels as
// "BookingMade_v1" in the "name" metadata.
var Marshaler = cqrs.JSONMarshaler{
	GenerateName: cqrs.StructName,
}

const handlerGroupPrefix = "svc-dynamictickets.events."

// ConsumerGroup gives every handler its own group, so each one sees every
// event on its topic regardless of how many replicas run.
func ConsumerGroup(handlerName string) string {
	return handlerGroupPrefix + handlerName
}

// HandlerTopic is the topic a handler for eventName consumes. External events
// arrive there through the splitter, internal ones straight from the bus.
func HandlerTopic(e any, eventName string) (string, error) {
	domainEvent, ok := e.(entities.IEvent)
	if !ok {
		return "", fmt.Errorf("%T is not a domain event", e)
	}

	if domainEvent.IsInternal() {
		return internalTopicPrefix + eventName, nil
	}
	return TopicForEvent(eventName), nil
}

func NewProcessorConfig(redisClient *redis.Client, watermillLogger watermill.LoggerAdapter) cqrs.EventProcessorConfig {
	subscriberFor := func(handlerName string) (message.Subscriber, error) {
		sub, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        redisClient,
			ConsumerGroup: ConsumerGroup(handlerName),
		}, watermillLogger)
		if err != nil {
			return nil, fmt.Errorf("could not subscribe handler %s: %w", handlerName, err)
		}
		return sub, nil
	}

	return cqrs.EventProcessorConfig{
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			return HandlerTopic(params.EventHandler.NewEvent(), params.EventName)
		},
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return subscriberFor(params.HandlerName)
		},
		Marshaler: Marshaler,
		Logger:    watermillLogger,
	}
}
