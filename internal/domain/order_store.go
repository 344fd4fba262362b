package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// OrderStore é a visão transacional usada na criação de pedidos.
// Todas as chamadas de uma mesma instância pertencem à mesma transação.
type OrderStore interface {
	// LookupPrices devolve o preço atual de cada produto ativo encontrado; IDs ausentes
	// simplesmente não aparecem no mapa.
	LookupPrices(ctx context.Context, productIDs []int64) (map[int64]decimal.Decimal, error)
	// InsertOrder grava o cabeçalho e preenche ID e timestamps. Devolve false, sem erro,
	// quando o código do pedido já existe.
	InsertOrder(ctx context.Context, order *Order) (bool, error)
	InsertItems(ctx context.Context, orderID int64, items []OrderItem) error
}
