package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus é o estado logístico do pedido, controlado pelo administrador.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// orderTransitions lista os destinos legais no modo estrito, a partir de cada estado não terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered, OrderCancelled},
}

// Valid informa se o status pertence ao conjunto conhecido.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Terminal é verdadeiro para delivered e cancelled.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransitionTo valida a transição contra a tabela de estados.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentStatus é o estado de pagamento do pedido.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func (p PaymentStatus) Valid() bool {
	return p == PaymentUnpaid || p == PaymentPaid || p == PaymentRefunded
}

// CanTransitionTo: unpaid -> paid -> refunded.
func (p PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return (p == PaymentUnpaid && next == PaymentPaid) || (p == PaymentPaid && next == PaymentRefunded)
}

// CartLine é uma linha do carrinho enviada pelo cliente. Não existe campo de preço:
// o valor cobrado vem sempre do catálogo.
type CartLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Shipping contém os dados de entrega e pagamento do pedido.
type Shipping struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Payment string `json:"payment"`
	Notes   string `json:"notes"`
}

// PlaceOrderRequest é o payload de criação de pedido.
type PlaceOrderRequest struct {
	Cart     []CartLine `json:"cart"`
	Shipping Shipping   `json:"shipping"`
}

// Validate verifica carrinho e dados de entrega antes de abrir a transação.
func (r PlaceOrderRequest) Validate() error {
	if len(r.Cart) == 0 {
		return ErrEmptyCart
	}
	if strings.TrimSpace(r.Shipping.Name) == "" ||
		strings.TrimSpace(r.Shipping.Phone) == "" ||
		strings.TrimSpace(r.Shipping.Address) == "" {
		return ErrEmptyCart
	}
	for _, line := range r.Cart {
		if line.Quantity <= 0 {
			return &InvalidQuantityError{ProductID: line.ProductID, Quantity: line.Quantity}
		}
	}
	return nil
}

// DistinctProductIDs devolve os IDs do carrinho sem repetição, na ordem de aparição.
func DistinctProductIDs(cart []CartLine) []int64 {
	seen := make(map[int64]struct{}, len(cart))
	ids := make([]int64, 0, len(cart))
	for _, line := range cart {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
}

// PriceCart calcula itens e total a partir dos preços do catálogo.
// Cada linha do carrinho gera exatamente um item.
func PriceCart(cart []CartLine, prices map[int64]decimal.Decimal) ([]OrderItem, decimal.Decimal, error) {
	items := make([]OrderItem, 0, len(cart))
	total := decimal.Zero

	for _, line := range cart {
		if line.Quantity <= 0 {
			return nil, decimal.Zero, &InvalidQuantityError{ProductID: line.ProductID, Quantity: line.Quantity}
		}
		price, ok := prices[line.ProductID]
		if !ok {
			return nil, decimal.Zero, &UnknownProductError{ProductID: line.ProductID}
		}

		subtotal := price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items = append(items, OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: price,
			Subtotal:  subtotal,
		})
		total = total.Add(subtotal)
	}

	return items, total, nil
}

// Order é o cabeçalho persistido do pedido.
type Order struct {
	ID              int64           `json:"id" db:"id"`
	Code            string          `json:"order_code" db:"order_code"`
	CustomerID      int64           `json:"customer_id" db:"customer_id"`
	Total           decimal.Decimal `json:"total_amount" db:"total_amount"`
	ShippingAddress string          `json:"shipping_address" db:"shipping_address"`
	RecipientName   string          `json:"recipient_name" db:"recipient_name"`
	RecipientPhone  string          `json:"recipient_phone" db:"recipient_phone"`
	Notes           string          `json:"notes" db:"notes"`
	PaymentMethod   string          `json:"payment_method" db:"payment_method"`
	Status          OrderStatus     `json:"order_status" db:"order_status"`
	PaymentStatus   PaymentStatus   `json:"payment_status" db:"payment_status"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
	Items           []OrderItem     `json:"items,omitempty" db:"-"`
}

// OrderItem guarda o preço unitário do momento da compra. Imutável após a criação.
type OrderItem struct {
	ID          int64           `json:"id" db:"id"`
	OrderID     int64           `json:"order_id" db:"order_id"`
	ProductID   int64           `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name,omitempty" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal" db:"subtotal"`
}

// OrderSummary é a linha da listagem "meus pedidos".
type OrderSummary struct {
	ID            int64           `json:"id" db:"id"`
	Code          string          `json:"order_code" db:"order_code"`
	Status        OrderStatus     `json:"order_status" db:"order_status"`
	Total         decimal.Decimal `json:"total_amount" db:"total_amount"`
	PaymentStatus PaymentStatus   `json:"payment_status" db:"payment_status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// AdminOrderView é a linha da listagem administrativa, com o nome do cliente.
type AdminOrderView struct {
	Order
	CustomerName string `json:"customer_name" db:"customer_name"`
}

// PlacedOrder é o resultado de uma criação de pedido bem-sucedida.
type PlacedOrder struct {
	OrderID   int64           `json:"order_id"`
	OrderCode string          `json:"order_code"`
	Total     decimal.Decimal `json:"total_amount"`
}

// StatusUpdate é o payload de alteração de status (pedido ou pagamento).
type StatusUpdate struct {
	Status string `json:"status"`
}

var (
	ErrEmptyCart          = errors.New("Carrinho e dados de entrega (nome, telefone, endereço) são obrigatórios.")
	ErrInvalidQuantity    = errors.New("quantidade inválida")
	ErrUnknownProduct     = errors.New("produto desconhecido")
	ErrNoCustomerProfile  = errors.New("Perfil de cliente não encontrado para este usuário.")
	ErrOrderNotFound      = errors.New("Pedido não encontrado.")
	ErrInvalidTransition  = errors.New("transição de status inválida")
	ErrUnknownStatus      = errors.New("Status desconhecido.")
	ErrOrderStatusChanged = errors.New("O pedido foi alterado por outra operação. Tente novamente.")
	ErrOrderCodeExhausted = errors.New("não foi possível gerar um código de pedido único")
)

// InvalidQuantityError identifica a linha com quantidade não positiva.
type InvalidQuantityError struct {
	ProductID int64
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("Quantidade inválida (%d) para o produto %d. A quantidade deve ser positiva.", e.Quantity, e.ProductID)
}

func (e *InvalidQuantityError) Is(target error) bool { return target == ErrInvalidQuantity }

// UnknownProductError identifica o produto do carrinho ausente no catálogo.
type UnknownProductError struct {
	ProductID int64
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("Produto ID %d não encontrado.", e.ProductID)
}

func (e *UnknownProductError) Is(target error) bool { return target == ErrUnknownProduct }

// TransitionError descreve uma transição de status recusada.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("Não é possível alterar o status de '%s' para '%s'.", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }
