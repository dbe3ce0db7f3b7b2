package migrations

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dynamictickets/entities"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"
)

type DataLake interface {
	GetAll(ctx context.Context) ([]entities.PublishedEvent, error)
}

type EventSalesReadModel interface {
	OnBookingMade(ctx context.Context, event *entities.BookingMade_v1) error
	OnEventPriceChanged(ctx context.Context, event *entities.EventPriceChanged_v1) error
}

// RebuildEventSales replays the data lake into the event sales read model.
// Replaying twice is harmless: bookings are keyed by their reference.
func RebuildEventSales(ctx context.Context, dl DataLake, rm EventSalesReadModel) error {
	logger := log.FromContext(ctx)
	logger.Info("Rebuilding event sales read model")

	events, err := dl.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("could not get events from data lake: %w", err)
	}

	logger.WithField("events_count", len(events)).Info("Has events to replay")

	for _, event := range events {
		start := time.Now()

		logger := logger.WithFields(logrus.Fields{
			"event_name": event.EventName,
			"event_id":   event.EventID,
		})

		if err := replayEvent(ctx, event, rm); err != nil {
			return fmt.Errorf("could not replay event %s (%s): %w", event.EventID, event.EventName, err)
		}

		logger.WithField("duration", time.Since(start)).Debug("Event replayed")
	}

	logger.Info("Event sales read model rebuilt")

	return nil
}

func replayEvent(ctx context.Context, event entities.PublishedEvent, rm EventSalesReadModel) error {
	switch event.EventName {
	case "BookingMade_v1":
		bookingMade, err := unmarshalDataLakeEvent[entities.BookingMade_v1](event)
		if err != nil {
			return err
		}
		return rm.OnBookingMade(ctx, bookingMade)
	case "EventPriceChanged_v1":
		priceChanged, err := unmarshalDataLakeEvent[entities.EventPriceChanged_v1](event)
		if err != nil {
			return err
		}
		return rm.OnEventPriceChanged(ctx, priceChanged)
	default:
		log.FromContext(ctx).WithField("event_name", event.EventName).Warn("Skipping event unknown to the sales read model")
		return nil
	}
}

func unmarshalDataLakeEvent[T any](event entities.PublishedEvent) (*T, error) {
	eventInstance := new(T)

	err := json.Unmarshal(event.Payload, eventInstance)
	if err != nil {
		return nil, fmt.Errorf("could not unmarshal event %s: %w", event.EventName, err)
	}

	return eventInstance, nil
}
