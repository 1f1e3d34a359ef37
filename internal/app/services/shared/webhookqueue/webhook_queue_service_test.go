package webhookqueue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"screener-service/internal/app/models"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeChannel is an in-memory broker that confirms every publish unless
// nack is set.
type fakeChannel struct {
	mu       sync.Mutex
	queues   map[string][][]byte
	unacked  map[uint64]fetched
	acked    []uint64
	nextTag  uint64
	nack     bool
	getErr   error
	confirms chan amqp.Confirmation
}

type fetched struct {
	queue string
	body  []byte
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		queues:   map[string][][]byte{},
		unacked:  map[uint64]fetched{},
		confirms: make(chan amqp.Confirmation, 16),
	}
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queues[key] = append(f.queues[key], msg.Body)
	f.confirms <- amqp.Confirmation{Ack: !f.nack}
	return nil
}

func (f *fakeChannel) Get(queue string, _ bool) (amqp.Delivery, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return amqp.Delivery{}, false, f.getErr
	}
	q := f.queues[queue]
	if len(q) == 0 {
		return amqp.Delivery{}, false, nil
	}
	f.queues[queue] = q[1:]
	f.nextTag++
	f.unacked[f.nextTag] = fetched{queue: queue, body: q[0]}
	return amqp.Delivery{DeliveryTag: f.nextTag, Body: q[0]}, true, nil
}

func (f *fakeChannel) Ack(tag uint64, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.unacked, tag)
	f.acked = append(f.acked, tag)
	return nil
}

func (f *fakeChannel) Nack(tag uint64, _, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.unacked[tag]
	if !ok {
		return errors.New("unknown delivery tag")
	}
	delete(f.unacked, tag)
	if requeue {
		f.queues[d.queue] = append([][]byte{d.body}, f.queues[d.queue]...)
	}
	return nil
}

func (f *fakeChannel) Close() error { return nil }

func (f *fakeChannel) depth(queue string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queues[queue])
}

func TestService(t *testing.T) {
	ctx := context.Background()
	newQueue := func() (*Service, *fakeChannel) {
		ch := newFakeChannel()
		return newService(ch, ch.confirms, zap.NewNop(), "screener_submissions"), ch
	}
	message := func(id string) *models.SubmissionMessage {
		return &models.SubmissionMessage{
			ID:        id,
			SessionID: "s-1",
			FormType:  "GLP1_Screening",
			Body:      json.RawMessage(`{"form_type":"GLP1_Screening"}`),
			CreatedAt: time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		}
	}

	t.Run("Publish then FetchN returns messages in order", func(t *testing.T) {
		svc, ch := newQueue()
		require.NoError(t, svc.Publish(ctx, message("m-1")))
		require.NoError(t, svc.Publish(ctx, message("m-2")))

		items, err := svc.FetchN(ctx, 5)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "m-1", items[0].Message.ID)
		assert.Equal(t, "m-2", items[1].Message.ID)
		assert.JSONEq(t, `{"form_type":"GLP1_Screening"}`, string(items[0].Message.Body))

		require.NoError(t, svc.Ack(ctx, items[0].DeliveryTag))
		assert.Equal(t, []uint64{items[0].DeliveryTag}, ch.acked)
	})

	t.Run("FetchN honours the batch size", func(t *testing.T) {
		svc, ch := newQueue()
		for _, id := range []string{"a", "b", "c"} {
			require.NoError(t, svc.Publish(ctx, message(id)))
		}
		items, err := svc.FetchN(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Equal(t, 1, ch.depth("screener_submissions"))
	})

	t.Run("Dead queue sits beside the main queue", func(t *testing.T) {
		svc, ch := newQueue()
		msg := message("m-dead")
		msg.FailedCount = 5
		require.NoError(t, svc.EnqueueToDeadQueue(ctx, msg))

		assert.Equal(t, 1, ch.depth("screener_submissions_dlq"))
		assert.Equal(t, 0, ch.depth("screener_submissions"))
	})

	t.Run("Poison messages are moved to the dead queue and acked", func(t *testing.T) {
		svc, ch := newQueue()
		ch.queues["screener_submissions"] = [][]byte{[]byte("not json")}

		items, err := svc.FetchN(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Equal(t, 1, ch.depth("screener_submissions_dlq"))
		assert.Len(t, ch.acked, 1)
	})

	t.Run("Nacked deliveries return to the head of the queue", func(t *testing.T) {
		svc, ch := newQueue()
		require.NoError(t, svc.Publish(ctx, message("m-1")))
		require.NoError(t, svc.Publish(ctx, message("m-2")))

		items, err := svc.FetchN(ctx, 1)
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.NoError(t, svc.Nack(ctx, items[0].DeliveryTag))
		assert.Equal(t, 2, ch.depth("screener_submissions"))

		items, err = svc.FetchN(ctx, 1)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "m-1", items[0].Message.ID)
	})

	t.Run("Unconfirmed publishes are reported", func(t *testing.T) {
		svc, ch := newQueue()
		ch.nack = true
		assert.Error(t, svc.Reenqueue(ctx, message("m-1")))
	})

	t.Run("Broker failures on get are wrapped", func(t *testing.T) {
		svc, ch := newQueue()
		ch.getErr = errors.New("channel closed")
		_, err := svc.FetchN(ctx, 1)
		assert.Error(t, err)
	})
}
