package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"paypalplus/internal/domain/ipn"
	"paypalplus/internal/messaging"
	"paypalplus/pkg/correlation"

	"github.com/segmentio/kafka-go"
)

// Publisher implements messaging.Publisher using Kafka.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a new Kafka publisher for the given topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}

	return &Publisher{writer: writer}
}

// Publish sends an envelope to Kafka, propagating the correlation ID as a
// message header.
func (p *Publisher) Publish(ctx context.Context, env messaging.Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(env.Key),
		Value: value,
	}
	if corrID := correlation.FromContext(ctx); corrID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{
			Key:   correlation.KafkaHeaderName,
			Value: []byte(corrID),
		})
	}

	if err = p.writer.WriteMessages(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish message",
			"topic", p.writer.Topic, "key", env.Key, "error", err)
		return err
	}

	slog.DebugContext(ctx, "message published",
		"topic", p.writer.Topic, "key", env.Key, "event_id", env.EventID)
	return nil
}

// Close closes the Kafka writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// PaymentUpdatePublisher adapts the Kafka publisher to the reconciler's
// event port. Messages are keyed by order id so updates for one order stay
// ordered within a partition.
type PaymentUpdatePublisher struct {
	publisher messaging.Publisher
}

var _ ipn.EventPublisher = (*PaymentUpdatePublisher)(nil)

// NewPaymentUpdatePublisher wraps a messaging publisher.
func NewPaymentUpdatePublisher(publisher messaging.Publisher) *PaymentUpdatePublisher {
	return &PaymentUpdatePublisher{publisher: publisher}
}

// PublishPaymentUpdate wraps the update in an envelope and publishes it.
func (p *PaymentUpdatePublisher) PublishPaymentUpdate(ctx context.Context, update ipn.PaymentUpdate) error {
	env, err := messaging.NewEnvelope(
		strconv.FormatInt(update.OrderID, 10),
		"payment.update."+update.Kind,
		update,
	)
	if err != nil {
		return fmt.Errorf("envelope payment update: %w", err)
	}
	return p.publisher.Publish(ctx, env)
}
