package domain

import (
	"errors"
	"time"
)

// StockStatus é derivado da quantidade em estoque.
type StockStatus string

const (
	StockIn  StockStatus = "in_stock"
	StockLow StockStatus = "low_stock"
	StockOut StockStatus = "out_of_stock"

	LowStockThreshold = 5
)

// StatusForQuantity devolve o status de estoque para uma quantidade.
func StatusForQuantity(qty int) StockStatus {
	switch {
	case qty <= 0:
		return StockOut
	case qty <= LowStockThreshold:
		return StockLow
	default:
		return StockIn
	}
}

// StockLevel representa o estoque atual de um produto.
// Inclui 'version' para controle de concorrência otimista.
type StockLevel struct {
	ProductID int64       `json:"product_id" db:"id"`
	Quantity  int         `json:"quantity" db:"stock_quantity"`
	Status    StockStatus `json:"status" db:"stock_status"`
	Version   int         `json:"version" db:"version"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// StockAdjustment é o payload do ajuste de estoque feito pela equipe.
type StockAdjustment struct {
	ProductID int64  `json:"-"`
	Delta     int    `json:"delta"`
	Reason    string `json:"reason"`
}

var (
	ErrZeroDelta      = errors.New("O ajuste de estoque não pode ser zero.")
	ErrNegativeStock  = errors.New("O ajuste resultaria em estoque negativo.")
	ErrStockConflict  = errors.New("O estoque foi alterado por outra operação. Tente novamente.")
	ErrProductMissing = errors.New("Produto não encontrado.")
)
