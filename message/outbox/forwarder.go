package outbox

import (
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/sirupsen/logrus"
)

// NewForwarder registers a handler on router that drains the outbox topic into
// redisPub. It starts and stops together with the router.
func NewForwarder(
	outboxSub message.Subscriber,
	redisPub message.Publisher,
	logger watermill.LoggerAdapter,
	router *message.Router,
) (*forwarder.Forwarder, error) {
	fwd, err := forwarder.NewForwarder(outboxSub, redisPub, logger, forwarder.Config{
		ForwarderTopic: topic,
		Router:         router,
		Middlewares:    []message.HandlerMiddleware{logForwarded},
	})
	if err != nil {
		return nil, fmt.Errorf("could not forward %s: %w", topic, err)
	}

	return fwd, nil
}

func logForwarded(next message.HandlerFunc) message.HandlerFunc {
	return func(envelope *message.Message) ([]*message.Message, error) {
		logger := log.FromContext(envelope.Context()).WithFields(logrus.Fields{
			"envelope_id":   envelope.UUID,
			"payload_bytes": len(envelope.Payload),
		})

		msgs, err := next(envelope)
		if err != nil {
			logger.WithError(err).Warn("Outbox message not forwarded, will retry")
			return nil, err
		}

		logger.Debug("Outbox message forwarded")
		return msgs, nil
	}
}
