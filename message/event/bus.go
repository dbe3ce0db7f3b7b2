package event

import (
	"fmt"

	"dynamictickets/entities"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	// ExternalTopic receives every external event. The splitter fans it out
	// to per-event topics and the data lake keeps a copy.
	ExternalTopic = "events"

	internalTopicPrefix = "internal-events.svc-dynamictickets."
	eventTopicPrefix    = "events."
)

func NewBus(pub message.Publisher) (*cqrs.EventBus, error) {
	eventBus, err := cqrs.NewEventBusWithConfig(
		pub,
		cqrs.EventBusConfig{
			GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
				event, ok := params.Event.(entities.IEvent)
				if !ok {
					return "", fmt.Errorf("invalid event type: %T doesn't implement entities.IEvent", params.Event)
				}

				if event.IsInternal() {
					return internalTopicPrefix + params.EventName, nil
				}
				return ExternalTopic, nil
			},
			Marshaler: Marshaler,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("could not create event bus: %w", err)
	}

	return eventBus, nil
}

// TopicForEvent is where the splitter republishes an external event.
func TopicForEvent(eventName string) string {
	return eventTopicPrefix + eventName
}
