//go:build integration
// +build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"paypalplus/internal/domain/ipn"
	kafka_external "paypalplus/internal/external/kafka"
	"paypalplus/internal/messaging"
	"paypalplus/internal/testinfra"
	"paypalplus/pkg/correlation"

	segmentio "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentUpdateRoundTrip(t *testing.T) {
	ctx := context.Background()

	suite, err := testinfra.NewTestSuite(ctx, testinfra.SuiteOptions{WithKafka: true})
	require.NoError(t, err)
	t.Cleanup(func() { suite.Cleanup(ctx) })

	publisher := kafka_external.NewPublisher(suite.Kafka.Brokers, suite.Kafka.UpdatesTopic)
	t.Cleanup(func() { publisher.Close() })
	events := kafka_external.NewPaymentUpdatePublisher(publisher)

	update := ipn.PaymentUpdate{
		OrderID:       42,
		Kind:          "refunded",
		PaymentStatus: "refunded",
		TransactionID: "TXN-1",
		OccurredAt:    time.Now().UTC(),
	}
	pubCtx := correlation.WithID(ctx, "corr-roundtrip-1")
	require.NoError(t, events.PublishPaymentUpdate(pubCtx, update))

	reader := segmentio.NewReader(segmentio.ReaderConfig{
		Brokers:     suite.Kafka.Brokers,
		Topic:       suite.Kafka.UpdatesTopic,
		GroupID:     "test-roundtrip-consumer",
		StartOffset: segmentio.FirstOffset,
		MaxWait:     time.Second,
	})
	t.Cleanup(func() { reader.Close() })

	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err)

	assert.Equal(t, "42", string(msg.Key))

	var env messaging.Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, "payment.update.refunded", env.Type)
	assert.NotEmpty(t, env.EventID)

	var got ipn.PaymentUpdate
	require.NoError(t, json.Unmarshal(env.Payload, &got))
	assert.Equal(t, update.OrderID, got.OrderID)
	assert.Equal(t, update.Kind, got.Kind)
	assert.Equal(t, update.TransactionID, got.TransactionID)

	var corrID string
	for _, h := range msg.Headers {
		if h.Key == correlation.KafkaHeaderName {
			corrID = string(h.Value)
		}
	}
	assert.Equal(t, "corr-roundtrip-1", corrID)
}
