package message

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const PoisonQueueTopic = "PoisonQueue"

type permanent interface {
	IsPermanent() bool
}

// isPermanent reports errors that won't succeed on redelivery.
func isPermanent(err error) bool {
	var p permanent
	return errors.As(err, &p) && p.IsPermanent()
}

func useMiddlewares(router *message.Router, pub message.Publisher, watermillLogger watermill.LoggerAdapter) error {
	poisonQueue, err := middleware.PoisonQueueWithFilter(pub, PoisonQueueTopic, isPermanent)
	if err != nil {
		return fmt.Errorf("could not create poison queue middleware: %w", err)
	}

	router.AddMiddleware(middleware.Retry{
		MaxRetries:      10,
		InitialInterval: time.Millisecond * 100,
		MaxInterval:     time.Second,
		Multiplier:      2,
		Logger:          watermillLogger,
	}.Middleware)

	router.AddMiddleware(poisonQueue)

	router.AddMiddleware(middleware.Recoverer)

	router.AddMiddleware(correlationIDMiddleware)

	router.AddMiddleware(tracingMiddleware)

	router.AddMiddleware(loggingMiddleware)

	return nil
}

func correlationIDMiddleware(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := msg.Context()

		reqCorrelationID := msg.Metadata.Get("correlation_id")
		if reqCorrelationID == "" {
			reqCorrelationID = shortuuid.New()
		}

		ctx = log.ToContext(ctx, logrus.WithFields(logrus.Fields{"correlation_id": reqCorrelationID}))
		ctx = log.ContextWithCorrelationID(ctx, reqCorrelationID)

		msg.SetContext(ctx)

		return h(msg)
	}
}

func tracingMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := otel.GetTextMapPropagator().Extract(msg.Context(), propagation.MapCarrier(msg.Metadata))

		ctx, span := otel.Tracer("").Start(
			ctx,
			fmt.Sprintf("topic: %s, handler: %s", message.SubscribeTopicFromCtx(ctx), message.HandlerNameFromCtx(ctx)),
			trace.WithSpanKind(trace.SpanKindConsumer),
		)
		defer span.End()

		msg.SetContext(ctx)

		msgs, err := next(msg)
		if err != nil {
			span.RecordError(err)
		}

		return msgs, err
	}
}

func loggingMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		logger := log.FromContext(msg.Context()).WithFields(logrus.Fields{
			"message_id": msg.UUID,
			"payload":    string(msg.Payload),
			"metadata":   msg.Metadata,
			"handler":    message.HandlerNameFromCtx(msg.Context()),
		})

		logger.Info("Handling a message")

		msgs, err := next(msg)
		if err != nil {
			logger.WithError(err).Error("Error while handling a message")
		}

		return msgs, err
	}
}
