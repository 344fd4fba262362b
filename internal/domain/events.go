package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// BaseEvent contém os campos comuns a todos os eventos publicados.
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent é publicado depois do commit da transação do pedido.
type OrderCreatedEvent struct {
	BaseEvent
	OrderID    int64           `json:"order_id"`
	OrderCode  string          `json:"order_code"`
	CustomerID int64           `json:"customer_id"`
	Total      decimal.Decimal `json:"total_amount"`
	ItemCount  int             `json:"item_count"`
}

// OrderStatusChangedEvent é publicado após uma transição de status aplicada.
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID int64  `json:"order_id"`
	Field   string `json:"field"` // "order_status" ou "payment_status"
	From    string `json:"from"`
	To      string `json:"to"`
}
