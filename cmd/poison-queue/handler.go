package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

var ErrMessageNotFound = errors.New("message not found")

type Message struct {
	ID            string
	Reason        string
	OriginalTopic string
}

// Handler walks the poison queue once. Every message it doesn't act on is
// published back to the end of the queue, and the walk ends when a message
// comes around again or the queue stays quiet for idleTimeout.
type Handler struct {
	topic       string
	subscriber  message.Subscriber
	publisher   message.Publisher
	idleTimeout time.Duration
}

func NewHandler(topic string, sub message.Subscriber, pub message.Publisher, idleTimeout time.Duration) *Handler {
	return &Handler{
		topic:       topic,
		subscriber:  sub,
		publisher:   pub,
		idleTimeout: idleTimeout,
	}
}

func (h *Handler) Preview(ctx context.Context) ([]Message, error) {
	var messages []Message

	err := h.walk(ctx, func(msg *message.Message) (bool, error) {
		messages = append(messages, Message{
			ID:            msg.UUID,
			Reason:        msg.Metadata.Get(middleware.ReasonForPoisonedKey),
			OriginalTopic: msg.Metadata.Get(middleware.PoisonedTopicKey),
		})
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	return messages, nil
}

func (h *Handler) Remove(ctx context.Context, messageID string) error {
	found := false

	err := h.walk(ctx, func(msg *message.Message) (bool, error) {
		if msg.UUID != messageID {
			return false, nil
		}
		found = true
		return true, nil
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
	}

	return nil
}

func (h *Handler) Requeue(ctx context.Context, messageID string) error {
	found := false

	err := h.walk(ctx, func(msg *message.Message) (bool, error) {
		if msg.UUID != messageID {
			return false, nil
		}

		topic := msg.Metadata.Get(middleware.PoisonedTopicKey)
		if topic == "" {
			return false, fmt.Errorf("message %s has no original topic", msg.UUID)
		}

		if err := h.publisher.Publish(topic, msg); err != nil {
			return false, fmt.Errorf("could not requeue message %s to %s: %w", msg.UUID, topic, err)
		}

		found = true
		return true, nil
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
	}

	return nil
}

// walk calls fn for each message. When fn reports the message as consumed it
// is acked without being put back and the walk stops.
func (h *Handler) walk(ctx context.Context, fn func(msg *message.Message) (consumed bool, err error)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := h.subscriber.Subscribe(ctx, h.topic)
	if err != nil {
		return fmt.Errorf("could not subscribe to %s: %w", h.topic, err)
	}
	defer func() {
		cancel()
		h.drain(messages)
	}()

	seen := map[string]struct{}{}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(h.idleTimeout):
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			if _, ok := seen[msg.UUID]; ok {
				// went all the way around
				return h.putBack(msg)
			}
			seen[msg.UUID] = struct{}{}

			consumed, err := fn(msg)
			if err != nil {
				msg.Nack()
				return err
			}
			if consumed {
				msg.Ack()
				return nil
			}

			if err := h.putBack(msg); err != nil {
				return err
			}
		}
	}
}

func (h *Handler) putBack(msg *message.Message) error {
	if err := h.publisher.Publish(h.topic, msg.Copy()); err != nil {
		msg.Nack()
		return fmt.Errorf("could not put message %s back: %w", msg.UUID, err)
	}
	msg.Ack()
	return nil
}

// drain hands back whatever the subscriber delivered after the walk ended.
func (h *Handler) drain(messages <-chan *message.Message) {
	timeout := time.NewTimer(h.idleTimeout)
	defer timeout.Stop()

	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				return
			}
			msg.Nack()
		case <-timeout.C:
			return
		}
	}
}
