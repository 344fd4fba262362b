package orderservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"persol/internal/domain"
	apperror "persol/internal/errors"
	"persol/internal/pkg/logger"
	"persol/internal/pkg/metrics"
)

// maxCodeAttempts limita as tentativas de gerar um order_code livre.
const maxCodeAttempts = 3

const (
	fieldOrderStatus   = "order_status"
	fieldPaymentStatus = "payment_status"
)

var tracer = otel.Tracer("persol/orderservice")

// OrderRepository define o contrato que o Serviço de Pedidos espera da camada de Persistência.
type OrderRepository interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, store domain.OrderStore) error) error
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.OrderSummary, error)
	FindForCustomer(ctx context.Context, orderID, customerID int64) (domain.Order, error)
	FindByID(ctx context.Context, orderID int64) (domain.Order, error)
	ListAll(ctx context.Context) ([]domain.AdminOrderView, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, from, to domain.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, orderID int64, from, to domain.PaymentStatus) error
}

// CustomerFinder resolve o perfil de cliente do usuário autenticado.
type CustomerFinder interface {
	FindCustomerByUserID(ctx context.Context, userID int64) (domain.Customer, error)
}

// EventPublisher recebe os eventos de pedido após o commit.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order domain.Order) error
	PublishStatusChanged(ctx context.Context, orderID int64, field, from, to string) error
}

// Option ajusta dependências opcionais do serviço.
type Option func(*Service)

// WithClock troca o relógio usado no order_code.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCodeSuffix troca o gerador do sufixo aleatório do order_code.
func WithCodeSuffix(suffix func() string) Option {
	return func(s *Service) { s.codeSuffix = suffix }
}

// WithStrictTransitions liga a validação das transições de status pela tabela de estados.
// Desligado, o administrador pode definir qualquer status conhecido a qualquer momento.
func WithStrictTransitions(strict bool) Option {
	return func(s *Service) { s.strictTransitions = strict }
}

// Service implementa a criação de pedidos e as consultas/alterações de pedidos.
type Service struct {
	repo              OrderRepository
	customers         CustomerFinder
	events            EventPublisher
	logger            logger.Logger
	now               func() time.Time
	codeSuffix        func() string
	strictTransitions bool
}

// NewService cria e retorna uma nova instância do Serviço de Pedidos.
func NewService(repo OrderRepository, customers CustomerFinder, events EventPublisher, logger logger.Logger, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		customers:  customers,
		events:     events,
		logger:     logger,
		now:        time.Now,
		codeSuffix: randomSuffix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func randomSuffix() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *Service) orderCode() string {
	return fmt.Sprintf("PERSOL_%d_%s", s.now().Unix(), s.codeSuffix())
}

// PlaceOrder valida o carrinho, calcula o total com os preços do catálogo e grava
// cabeçalho e itens em uma única transação.
func (s *Service) PlaceOrder(ctx context.Context, claims domain.Claims, req domain.PlaceOrderRequest) (domain.PlacedOrder, error) {
	ctx, span := tracer.Start(ctx, "orderservice.PlaceOrder", trace.WithAttributes(
		attribute.Int64("user.id", claims.ID),
		attribute.Int("cart.lines", len(req.Cart)),
	))
	defer span.End()

	start := time.Now()

	order, err := s.placeOrder(ctx, claims, req)
	if err != nil {
		reason := failureReason(err)
		metrics.OrdersFailedTotal.WithLabelValues(reason).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		s.logger.Warn("Pedido recusado.", map[string]interface{}{"user_id": claims.ID, "reason": reason, "error": err.Error()})
		return domain.PlacedOrder{}, err
	}

	metrics.OrdersCreatedTotal.Inc()
	metrics.OrderPlacementDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.String("order.code", order.Code))

	s.logger.Info("Pedido criado com sucesso.", map[string]interface{}{
		"order_id":    order.ID,
		"order_code":  order.Code,
		"customer_id": order.CustomerID,
		"total":       order.Total.StringFixed(2),
		"items":       len(order.Items),
	})

	// O pedido já está gravado; falha na publicação só é registrada.
	if err := s.events.PublishOrderCreated(ctx, order); err != nil {
		s.logger.Warn("Falha ao publicar evento order.created.", map[string]interface{}{"order_id": order.ID, "error": err.Error()})
	}

	return domain.PlacedOrder{OrderID: order.ID, OrderCode: order.Code, Total: order.Total}, nil
}

func (s *Service) placeOrder(ctx context.Context, claims domain.Claims, req domain.PlaceOrderRequest) (domain.Order, error) {
	// 1. Perfil de cliente
	customer, err := s.customers.FindCustomerByUserID(ctx, claims.ID)
	if err != nil {
		return domain.Order{}, err
	}

	// 2. Carrinho e dados de entrega
	if err := req.Validate(); err != nil {
		return domain.Order{}, apperror.WrapValidation(err)
	}

	var order domain.Order

	// 3..8. Transação
	err = s.repo.WithinTx(ctx, func(ctx context.Context, store domain.OrderStore) error {
		prices, err := store.LookupPrices(ctx, domain.DistinctProductIDs(req.Cart))
		if err != nil {
			return err
		}

		items, total, err := domain.PriceCart(req.Cart, prices)
		if err != nil {
			return apperror.WrapValidation(err)
		}

		order = domain.Order{
			CustomerID:      customer.ID,
			Total:           total,
			ShippingAddress: strings.TrimSpace(req.Shipping.Address),
			RecipientName:   strings.TrimSpace(req.Shipping.Name),
			RecipientPhone:  strings.TrimSpace(req.Shipping.Phone),
			Notes:           strings.TrimSpace(req.Shipping.Notes),
			PaymentMethod:   strings.TrimSpace(req.Shipping.Payment),
			Status:          domain.OrderPending,
			PaymentStatus:   domain.PaymentUnpaid,
		}

		inserted := false
		for attempt := 0; attempt < maxCodeAttempts && !inserted; attempt++ {
			order.Code = s.orderCode()
			if inserted, err = store.InsertOrder(ctx, &order); err != nil {
				return err
			}
		}
		if !inserted {
			return apperror.NewInternalError("Falha ao gerar código do pedido.", domain.ErrOrderCodeExhausted)
		}

		if err := store.InsertItems(ctx, order.ID, items); err != nil {
			return err
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

// failureReason gera o rótulo de métrica de uma falha de criação de pedido.
func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoCustomerProfile):
		return "no_customer_profile"
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, domain.ErrUnknownProduct):
		return "unknown_product"
	default:
		return "internal"
	}
}

// ListMyOrders lista os pedidos do cliente autenticado.
func (s *Service) ListMyOrders(ctx context.Context, claims domain.Claims) ([]domain.OrderSummary, error) {
	customer, err := s.customers.FindCustomerByUserID(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByCustomer(ctx, customer.ID)
}

// GetMyOrder devolve um pedido do cliente autenticado, com itens.
// Pedidos de outros clientes são tratados como inexistentes.
func (s *Service) GetMyOrder(ctx context.Context, claims domain.Claims, orderID int64) (domain.Order, error) {
	if orderID <= 0 {
		return domain.Order{}, apperror.NewValidationError("O ID do pedido deve ser um inteiro positivo.")
	}
	customer, err := s.customers.FindCustomerByUserID(ctx, claims.ID)
	if err != nil {
		return domain.Order{}, err
	}
	return s.repo.FindForCustomer(ctx, orderID, customer.ID)
}

// ListAllOrders lista todos os pedidos (administração).
func (s *Service) ListAllOrders(ctx context.Context) ([]domain.AdminOrderView, error) {
	return s.repo.ListAll(ctx)
}

// UpdateOrderStatus define o status logístico do pedido. Qualquer status conhecido é aceito,
// salvo no modo estrito; a escrita só vale se o status lido não mudou nesse meio tempo.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (domain.Order, error) {
	ctx, span := tracer.Start(ctx, "orderservice.UpdateOrderStatus", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("order.status.to", status),
	))
	defer span.End()

	to := domain.OrderStatus(strings.TrimSpace(status))
	if !to.Valid() {
		return domain.Order{}, apperror.WrapValidation(domain.ErrUnknownStatus)
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	from := order.Status
	if s.strictTransitions && !from.CanTransitionTo(to) {
		return domain.Order{}, apperror.WrapConflict(&domain.TransitionError{From: string(from), To: string(to)})
	}

	if err := s.repo.UpdateOrderStatus(ctx, orderID, from, to); err != nil {
		span.RecordError(err)
		return domain.Order{}, err
	}

	order.Status = to
	s.afterTransition(ctx, orderID, fieldOrderStatus, string(from), string(to))
	return order, nil
}

// UpdatePaymentStatus define o status de pagamento; no modo estrito segue unpaid -> paid -> refunded.
func (s *Service) UpdatePaymentStatus(ctx context.Context, orderID int64, status string) (domain.Order, error) {
	ctx, span := tracer.Start(ctx, "orderservice.UpdatePaymentStatus", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("payment.status.to", status),
	))
	defer span.End()

	to := domain.PaymentStatus(strings.TrimSpace(status))
	if !to.Valid() {
		return domain.Order{}, apperror.WrapValidation(domain.ErrUnknownStatus)
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	from := order.PaymentStatus
	if s.strictTransitions && !from.CanTransitionTo(to) {
		return domain.Order{}, apperror.WrapConflict(&domain.TransitionError{From: string(from), To: string(to)})
	}

	if err := s.repo.UpdatePaymentStatus(ctx, orderID, from, to); err != nil {
		span.RecordError(err)
		return domain.Order{}, err
	}

	order.PaymentStatus = to
	s.afterTransition(ctx, orderID, fieldPaymentStatus, string(from), string(to))
	return order, nil
}

func (s *Service) afterTransition(ctx context.Context, orderID int64, field, from, to string) {
	metrics.OrderStatusTransitionsTotal.WithLabelValues(field, from, to).Inc()
	s.logger.Info("Status do pedido alterado.", map[string]interface{}{
		"order_id": orderID,
		"field":    field,
		"from":     from,
		"to":       to,
	})
	if err := s.events.PublishStatusChanged(ctx, orderID, field, from, to); err != nil {
		s.logger.Warn("Falha ao publicar evento order.status_changed.", map[string]interface{}{"order_id": orderID, "error": err.Error()})
	}
}
