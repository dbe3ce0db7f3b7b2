package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "PoisonQueue"

// queuePubSub is a FIFO broker: a message is handed out again only after it
// was nacked or published anew.
type queuePubSub struct {
	mu        sync.Mutex
	queues    map[string][]*message.Message
	published map[string][]string
}

func newQueuePubSub() *queuePubSub {
	return &queuePubSub{
		queues:    map[string][]*message.Message{},
		published: map[string][]string{},
	}
}

func (q *queuePubSub) Publish(topic string, messages ...*message.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, msg := range messages {
		q.queues[topic] = append(q.queues[topic], msg.Copy())
		q.published[topic] = append(q.published[topic], msg.UUID)
	}
	return nil
}

func (q *queuePubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	out := make(chan *message.Message)

	go func() {
		defer close(out)

		for {
			msg, ok := q.pop(ctx, topic)
			if !ok {
				return
			}

			select {
			case out <- msg:
			case <-ctx.Done():
				q.pushFront(topic, msg)
				return
			}

			select {
			case <-msg.Acked():
			case <-msg.Nacked():
				q.pushFront(topic, msg.Copy())
			case <-ctx.Done():
				q.pushFront(topic, msg.Copy())
				return
			}
		}
	}()

	return out, nil
}

func (q *queuePubSub) Close() error {
	return nil
}

func (q *queuePubSub) pop(ctx context.Context, topic string) (*message.Message, bool) {
	for {
		if ctx.Err() != nil {
			return nil, false
		}

		q.mu.Lock()
		if len(q.queues[topic]) > 0 {
			msg := q.queues[topic][0]
			q.queues[topic] = q.queues[topic][1:]
			q.mu.Unlock()
			return msg, true
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, false
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func (q *queuePubSub) pushFront(topic string, msg *message.Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queues[topic] = append([]*message.Message{msg}, q.queues[topic]...)
}

func (q *queuePubSub) queued(topic string) []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	var ids []string
	for _, msg := range q.queues[topic] {
		ids = append(ids, msg.UUID)
	}
	return ids
}

func (q *queuePubSub) publishedTo(topic string) []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.published[topic]...)
}

func seedPoisonQueue(t *testing.T, q *queuePubSub, n int) []string {
	t.Helper()

	var ids []string
	for i := 0; i < n; i++ {
		msg := message.NewMessage(watermill.NewUUID(), []byte("{}"))
		msg.Metadata.Set(middleware.ReasonForPoisonedKey, "invalid price paid")
		msg.Metadata.Set(middleware.PoisonedTopicKey, "events.BookingMade_v1")
		require.NoError(t, q.Publish(testTopic, msg))
		ids = append(ids, msg.UUID)
	}

	q.mu.Lock()
	q.published = map[string][]string{}
	q.mu.Unlock()

	return ids
}

func newTestHandler(q *queuePubSub) *Handler {
	return NewHandler(testTopic, q, q, 100*time.Millisecond)
}

func TestHandler_Preview(t *testing.T) {
	q := newQueuePubSub()
	ids := seedPoisonQueue(t, q, 3)

	messages, err := newTestHandler(q).Preview(context.Background())
	require.NoError(t, err)

	require.Len(t, messages, 3)
	for i, m := range messages {
		assert.Equal(t, ids[i], m.ID)
		assert.Equal(t, "invalid price paid", m.Reason)
		assert.Equal(t, "events.BookingMade_v1", m.OriginalTopic)
	}

	assert.ElementsMatch(t, ids, q.queued(testTopic), "preview must not drop messages")
}

func TestHandler_Preview_EmptyQueue(t *testing.T) {
	q := newQueuePubSub()

	messages, err := newTestHandler(q).Preview(context.Background())
	require.NoError(t, err)

	assert.Empty(t, messages)
}

func TestHandler_Remove(t *testing.T) {
	q := newQueuePubSub()
	ids := seedPoisonQueue(t, q, 3)

	require.NoError(t, newTestHandler(q).Remove(context.Background(), ids[1]))

	assert.ElementsMatch(t, []string{ids[0], ids[2]}, q.queued(testTopic))
	assert.Empty(t, q.publishedTo("events.BookingMade_v1"))
}

func TestHandler_Requeue(t *testing.T) {
	q := newQueuePubSub()
	ids := seedPoisonQueue(t, q, 3)

	require.NoError(t, newTestHandler(q).Requeue(context.Background(), ids[2]))

	assert.Equal(t, []string{ids[2]}, q.publishedTo("events.BookingMade_v1"))
	assert.ElementsMatch(t, []string{ids[0], ids[1]}, q.queued(testTopic))
}

func TestHandler_UnknownMessage(t *testing.T) {
	q := newQueuePubSub()
	ids := seedPoisonQueue(t, q, 2)

	err := newTestHandler(q).Requeue(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrMessageNotFound)

	err = newTestHandler(q).Remove(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrMessageNotFound)

	assert.ElementsMatch(t, ids, q.queued(testTopic))
}
