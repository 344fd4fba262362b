package orderrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"persol/internal/domain"
	apperror "persol/internal/errors"
	"persol/internal/pkg/logger"
)

const orderColumns = `o.id, o.order_code, o.customer_id, o.total_amount, o.shipping_address,
               o.recipient_name, o.recipient_phone, o.notes, o.payment_method,
               o.order_status, o.payment_status, o.created_at, o.updated_at`

// OrderRepository persiste pedidos e itens de pedido.
type OrderRepository struct {
	DB        *sqlx.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewOrderRepository cria e retorna uma nova instância do Repositório de Pedidos.
func NewOrderRepository(db *sqlx.DB, dbTimeout time.Duration, logger logger.Logger) *OrderRepository {
	return &OrderRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// WithinTx executa fn dentro de uma transação READ COMMITTED. Qualquer erro devolvido por fn
// (ou falha no commit) desfaz tudo o que foi gravado.
func (r *OrderRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, store domain.OrderStore) error) (err error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTxx(ctxTimeout, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de pedido.", err)
		return apperror.NewDBError("Falha ao iniciar transação", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.logger.Error("Falha ao desfazer transação de pedido.", rbErr)
			}
		}
	}()

	if err = fn(ctxTimeout, &txStore{tx: tx, logger: r.logger}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação de pedido.", err)
		return apperror.NewDBError("Falha ao commitar transação", err)
	}
	return nil
}

// txStore implementa domain.OrderStore sobre uma transação aberta.
type txStore struct {
	tx     *sqlx.Tx
	logger logger.Logger
}

type priceRow struct {
	ID    int64           `db:"id"`
	Price decimal.Decimal `db:"price"`
}

// LookupPrices lê os preços em uma única consulta, com FOR SHARE para que o preço
// não mude até o commit.
func (s *txStore) LookupPrices(ctx context.Context, productIDs []int64) (map[int64]decimal.Decimal, error) {
	prices := make(map[int64]decimal.Decimal, len(productIDs))
	if len(productIDs) == 0 {
		return prices, nil
	}

	query, args, err := sqlx.In(`SELECT id, price FROM products WHERE id IN (?) AND is_active FOR SHARE`, productIDs)
	if err != nil {
		return nil, apperror.NewInternalError("Falha ao montar consulta de preços", err)
	}

	var rows []priceRow
	if err := s.tx.SelectContext(ctx, &rows, s.tx.Rebind(query), args...); err != nil {
		s.logger.Error("Falha ao buscar preços dos produtos.", err)
		return nil, apperror.NewDBError("Falha ao buscar preços dos produtos", err)
	}

	for _, row := range rows {
		prices[row.ID] = row.Price
	}
	return prices, nil
}

// InsertOrder grava o cabeçalho do pedido. Colisão de order_code não aborta a transação.
func (s *txStore) InsertOrder(ctx context.Context, order *domain.Order) (bool, error) {
	query := `
        INSERT INTO orders (order_code, customer_id, total_amount, shipping_address, recipient_name,
                            recipient_phone, notes, payment_method, order_status, payment_status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (order_code) DO NOTHING
        RETURNING id, created_at, updated_at`

	err := s.tx.QueryRowxContext(ctx, query,
		order.Code,
		order.CustomerID,
		order.Total,
		order.ShippingAddress,
		order.RecipientName,
		order.RecipientPhone,
		order.Notes,
		order.PaymentMethod,
		order.Status,
		order.PaymentStatus,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("Código de pedido já existente.", map[string]interface{}{"order_code": order.Code})
		return false, nil
	}
	if err != nil {
		s.logger.Error("Falha ao inserir pedido.", err)
		return false, apperror.NewDBError("Falha ao inserir pedido", err)
	}
	return true, nil
}

// InsertItems grava um item por linha do carrinho.
func (s *txStore) InsertItems(ctx context.Context, orderID int64, items []domain.OrderItem) error {
	const itemSQL = `
        INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id`

	for i := range items {
		items[i].OrderID = orderID
		err := s.tx.QueryRowxContext(ctx, itemSQL,
			orderID,
			items[i].ProductID,
			items[i].Quantity,
			items[i].UnitPrice,
			items[i].Subtotal,
		).Scan(&items[i].ID)
		if err != nil {
			s.logger.Error("Falha ao inserir item do pedido.", err)
			return apperror.NewDBError("Falha ao inserir itens do pedido", err)
		}
	}
	return nil
}

// ListByCustomer devolve o resumo dos pedidos de um cliente, mais recentes primeiro.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.OrderSummary, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, order_code, order_status, total_amount, payment_status, created_at
        FROM orders
        WHERE customer_id = $1
        ORDER BY created_at DESC, id DESC`

	orders := []domain.OrderSummary{}
	if err := r.DB.SelectContext(ctxTimeout, &orders, query, customerID); err != nil {
		r.logger.Error("Falha ao listar pedidos do cliente.", err)
		return nil, apperror.NewDBError("Falha ao listar pedidos", err)
	}
	return orders, nil
}

// FindForCustomer busca um pedido com itens, desde que pertença ao cliente.
func (r *OrderRepository) FindForCustomer(ctx context.Context, orderID, customerID int64) (domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var order domain.Order
	err := r.DB.GetContext(ctxTimeout, &order,
		`SELECT `+orderColumns+` FROM orders o WHERE o.id = $1 AND o.customer_id = $2`, orderID, customerID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, apperror.WrapNotFound(domain.ErrOrderNotFound)
	}
	if err != nil {
		r.logger.Error("Falha ao buscar pedido.", err)
		return domain.Order{}, apperror.NewDBError("Falha ao buscar pedido", err)
	}

	itemsQuery := `
        SELECT oi.id, oi.order_id, oi.product_id, p.name AS product_name,
               oi.quantity, oi.unit_price, oi.subtotal
        FROM order_items oi
        JOIN products p ON p.id = oi.product_id
        WHERE oi.order_id = $1
        ORDER BY oi.id`

	order.Items = []domain.OrderItem{}
	if err := r.DB.SelectContext(ctxTimeout, &order.Items, itemsQuery, orderID); err != nil {
		r.logger.Error("Falha ao buscar itens do pedido.", err)
		return domain.Order{}, apperror.NewDBError("Falha ao buscar itens do pedido", err)
	}

	return order, nil
}

// FindByID busca apenas o cabeçalho do pedido (uso administrativo).
func (r *OrderRepository) FindByID(ctx context.Context, orderID int64) (domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var order domain.Order
	err := r.DB.GetContext(ctxTimeout, &order, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, apperror.WrapNotFound(domain.ErrOrderNotFound)
	}
	if err != nil {
		r.logger.Error("Falha ao buscar pedido.", err)
		return domain.Order{}, apperror.NewDBError("Falha ao buscar pedido", err)
	}
	return order, nil
}

// ListAll devolve todos os pedidos com o nome do cliente, mais recentes primeiro.
func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.AdminOrderView, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT ` + orderColumns + `, u.full_name AS customer_name
        FROM orders o
        JOIN customers c ON c.id = o.customer_id
        JOIN users u ON u.id = c.user_id
        ORDER BY o.created_at DESC, o.id DESC`

	orders := []domain.AdminOrderView{}
	if err := r.DB.SelectContext(ctxTimeout, &orders, query); err != nil {
		r.logger.Error("Falha ao listar todos os pedidos.", err)
		return nil, apperror.NewDBError("Falha ao listar pedidos", err)
	}
	return orders, nil
}

// UpdateOrderStatus aplica a transição somente se o status atual ainda for 'from'.
func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, orderID int64, from, to domain.OrderStatus) error {
	return r.guardedUpdate(ctx,
		`UPDATE orders SET order_status = $1, updated_at = now() WHERE id = $2 AND order_status = $3`,
		to, orderID, from)
}

// UpdatePaymentStatus aplica a transição de pagamento somente se o status atual ainda for 'from'.
func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, orderID int64, from, to domain.PaymentStatus) error {
	return r.guardedUpdate(ctx,
		`UPDATE orders SET payment_status = $1, updated_at = now() WHERE id = $2 AND payment_status = $3`,
		to, orderID, from)
}

func (r *OrderRepository) guardedUpdate(ctx context.Context, query string, args ...interface{}) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao atualizar status do pedido.", err)
		return apperror.NewDBError("Falha ao atualizar status do pedido", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		// O pedido existia na leitura anterior; alguém alterou o status nesse meio tempo.
		return apperror.WrapConflict(domain.ErrOrderStatusChanged)
	}
	return nil
}
