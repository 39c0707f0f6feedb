package outbox

import (
	"context"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
)

// Publisher delivers one event to the broker.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Producer is the part of *kafka.Writer the Kafka publisher uses.
type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	producer Producer
	topic    string
}

func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func NewKafkaPublisher(producer Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// Publish keys the message by aggregate id so events of one order stay in
// one partition, in order.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	headers := make([]kafka.Header, 0, len(e.Headers)+1)
	for k, v := range e.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	headers = append(headers, kafka.Header{Key: "event_type", Value: []byte(e.Type)})

	return p.producer.WriteMessages(ctx, kafka.Message{
		Topic:   p.topic,
		Key:     []byte(e.AggregateID),
		Value:   e.Payload,
		Headers: headers,
		Time:    e.CreatedAt,
	})
}

// Channel is the part of *amqp.Channel the RabbitMQ publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitPublisher struct {
	ch       Channel
	exchange string
}

func NewRabbitPublisher(ch Channel, exchange string) *RabbitPublisher {
	return &RabbitPublisher{ch: ch, exchange: exchange}
}

// DialRabbit connects and declares the topic exchange events are routed through.
func DialRabbit(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Dial:      amqp.DefaultDial(10 * time.Second),
	})
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

// Publish routes by event type, e.g. order.status_changed.
func (p *RabbitPublisher) Publish(ctx context.Context, e Event) error {
	headers := amqp.Table{}
	for k, v := range e.Headers {
		headers[k] = v
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(ctx, p.exchange, e.Type, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    e.AggregateID,
		Type:         e.Type,
		Timestamp:    e.CreatedAt,
		Headers:      headers,
		Body:         e.Payload,
	})
}

// LogPublisher only logs events. It drains the outbox when no broker is configured.
type LogPublisher struct{ log *slog.Logger }

func NewLogPublisher(log *slog.Logger) *LogPublisher { return &LogPublisher{log: log} }

func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	p.log.Info("event", "event_id", e.ID, "type", e.Type, "aggregate_id", e.AggregateID, "payload", string(e.Payload))
	return nil
}
