package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/pos-restaurante/internal/logging"
)

type fakeStore struct {
	mu      sync.Mutex
	pending []Event
	sent    []int64
	failed  map[int64]string
}

func (s *fakeStore) LockBatch(_ context.Context, _ string, n int, _ time.Duration) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > len(s.pending) {
		n = len(s.pending)
	}
	batch := s.pending[:n]
	s.pending = s.pending[n:]
	return batch, nil
}

func (s *fakeStore) MarkSent(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, ids...)
	return nil
}

func (s *fakeStore) MarkFailed(_ context.Context, id int64, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed == nil {
		s.failed = map[int64]string{}
	}
	s.failed[id] = msg
	return nil
}

type fakePublisher struct {
	got    []Event
	failOn int64
}

func (p *fakePublisher) Publish(_ context.Context, e Event) error {
	if e.ID == p.failOn {
		return errors.New("broker down")
	}
	p.got = append(p.got, e)
	return nil
}

func TestRelayFlush(t *testing.T) {
	store := &fakeStore{pending: []Event{
		{ID: 1, Type: "order.created", AggregateID: "a"},
		{ID: 2, Type: "order.items_changed", AggregateID: "a"},
		{ID: 3, Type: "order.status_changed", AggregateID: "b"},
	}}
	pub := &fakePublisher{failOn: 2}
	r := NewRelay(logging.Discard(), store, pub, "test")

	n, err := r.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{1, 3}, store.sent)
	assert.Equal(t, "broker down", store.failed[2])
	require.Len(t, pub.got, 2)
	assert.Equal(t, "order.created", pub.got[0].Type)

	n, err = r.Flush(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRelayRunStopsOnCancel(t *testing.T) {
	store := &fakeStore{pending: []Event{{ID: 7, Type: "order.created"}}}
	r := NewRelay(logging.Discard(), store, &fakePublisher{}, "test")
	r.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.sent) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}

type fakeProducer struct{ msgs []kafka.Message }

func (p *fakeProducer) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func TestKafkaPublisherHeaders(t *testing.T) {
	prod := &fakeProducer{}
	p := NewKafkaPublisher(prod, "pos.orders")

	err := p.Publish(context.Background(), Event{
		AggregateID: "order-1",
		Type:        "order.created",
		Payload:     []byte(`{"order_id":"order-1"}`),
		Headers:     map[string]string{"traceparent": "00-abc-def-01"},
	})
	require.NoError(t, err)
	require.Len(t, prod.msgs, 1)

	msg := prod.msgs[0]
	assert.Equal(t, "pos.orders", msg.Topic)
	assert.Equal(t, "order-1", string(msg.Key))
	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "order.created", headers["event_type"])
	assert.Equal(t, "00-abc-def-01", headers["traceparent"])
}

type fakeChannel struct {
	exchange, key string
	msg           amqp.Publishing
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return nil
}

func TestRabbitPublisherRoutesByType(t *testing.T) {
	ch := &fakeChannel{}
	p := NewRabbitPublisher(ch, "pos.events")

	require.NoError(t, p.Publish(context.Background(), Event{
		AggregateID: "order-1",
		Type:        "order.status_changed",
		Payload:     []byte(`{}`),
	}))
	assert.Equal(t, "pos.events", ch.exchange)
	assert.Equal(t, "order.status_changed", ch.key)
	assert.Equal(t, uint8(amqp.Persistent), ch.msg.DeliveryMode)
	assert.Equal(t, "application/json", ch.msg.ContentType)
}
