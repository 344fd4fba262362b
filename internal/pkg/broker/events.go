package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"persol/internal/domain"
)

// EventPublisher publica os eventos de domínio dos pedidos.
type EventPublisher struct {
	producer *Producer
	now      func() time.Time
}

// NewEventPublisher cria um publicador sobre o produtor informado.
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer, now: time.Now}
}

func (ep *EventPublisher) base(eventType string) domain.BaseEvent {
	return domain.BaseEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: ep.now().UTC(),
	}
}

func orderKey(orderID int64) string {
	return fmt.Sprintf("order-%d", orderID)
}

// PublishOrderCreated publica order.created.
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	event := domain.OrderCreatedEvent{
		BaseEvent:  ep.base(domain.EventOrderCreated),
		OrderID:    order.ID,
		OrderCode:  order.Code,
		CustomerID: order.CustomerID,
		Total:      order.Total,
		ItemCount:  len(order.Items),
	}
	return ep.producer.PublishEvent(ctx, orderKey(order.ID), event)
}

// PublishStatusChanged publica order.status_changed para status de pedido ou de pagamento.
func (ep *EventPublisher) PublishStatusChanged(ctx context.Context, orderID int64, field, from, to string) error {
	event := domain.OrderStatusChangedEvent{
		BaseEvent: ep.base(domain.EventOrderStatusChanged),
		OrderID:   orderID,
		Field:     field,
		From:      from,
		To:        to,
	}
	return ep.producer.PublishEvent(ctx, orderKey(orderID), event)
}

// Close fecha o produtor.
func (ep *EventPublisher) Close() error {
	return ep.producer.Close()
}

// NopPublisher descarta eventos; usado quando KAFKA_BROKERS está vazio.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(context.Context, domain.Order) error { return nil }
func (NopPublisher) PublishStatusChanged(context.Context, int64, string, string, string) error {
	return nil
}
func (NopPublisher) Close() error { return nil }
