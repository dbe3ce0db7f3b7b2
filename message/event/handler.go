package event

import (
	"context"

	"dynamictickets/entities"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"
)

type EventSalesReadModel interface {
	OnBookingMade(ctx context.Context, event *entities.BookingMade_v1) error
	OnEventPriceChanged(ctx context.Context, event *entities.EventPriceChanged_v1) error
}

type Handler struct {
	eventSales EventSalesReadModel
}

func NewHandler(eventSales EventSalesReadModel) Handler {
	if eventSales == nil {
		panic("missing eventSales")
	}
	return Handler{
		eventSales: eventSales,
	}
}

func (h Handler) UpdateSalesOnBookingMade(ctx context.Context, event *entities.BookingMade_v1) error {
	log.FromContext(ctx).WithFields(logrus.Fields{
		"event_id":          event.EventID,
		"booking_reference": event.BookingReference,
	}).Info("Updating event sales")

	return h.eventSales.OnBookingMade(ctx, event)
}

func (h Handler) UpdateSalesOnPriceChanged(ctx context.Context, event *entities.EventPriceChanged_v1) error {
	log.FromContext(ctx).WithFields(logrus.Fields{
		"event_id":      event.EventID,
		"current_price": event.CurrentPrice,
	}).Info("Updating event price in sales")

	return h.eventSales.OnEventPriceChanged(ctx, event)
}
