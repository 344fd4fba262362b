package broker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persol/internal/domain"
	"persol/internal/pkg/broker"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishOrderCreated_KeyedByOrder(t *testing.T) {
	w := &recordingWriter{}
	pub := broker.NewEventPublisher(broker.NewProducerWithWriter(w))

	order := domain.Order{
		ID:         12,
		Code:       "PERSOL_1767225600_AB12CD34",
		CustomerID: 3,
		Total:      decimal.RequireFromString("99.98"),
		Items:      []domain.OrderItem{{ProductID: 1, Quantity: 2}},
	}
	require.NoError(t, pub.PublishOrderCreated(context.Background(), order))

	require.Len(t, w.messages, 1)
	assert.Equal(t, "order-12", string(w.messages[0].Key))

	var event domain.OrderCreatedEvent
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &event))
	assert.Equal(t, domain.EventOrderCreated, event.EventType)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "PERSOL_1767225600_AB12CD34", event.OrderCode)
	assert.True(t, event.Total.Equal(decimal.RequireFromString("99.98")))
	assert.Equal(t, 1, event.ItemCount)
}

func TestPublishStatusChanged_PropagatesWriterError(t *testing.T) {
	w := &recordingWriter{err: errors.New("leader not available")}
	pub := broker.NewEventPublisher(broker.NewProducerWithWriter(w))

	err := pub.PublishStatusChanged(context.Background(), 5, "order_status", "pending", "processing")

	assert.ErrorContains(t, err, "leader not available")
	require.NoError(t, pub.Close())
	assert.True(t, w.closed)
}
