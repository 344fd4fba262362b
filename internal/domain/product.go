package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Product representa uma armação/óculos do catálogo.
// O preço é a fonte de verdade usada no fechamento de pedidos.
type Product struct {
	ID            int64           `json:"id" db:"id"`
	BrandID       *int64          `json:"brand_id,omitempty" db:"brand_id"`
	BrandName     *string         `json:"brand_name,omitempty" db:"brand_name"`
	CategoryID    *int64          `json:"category_id,omitempty" db:"category_id"`
	CategoryName  *string         `json:"category_name,omitempty" db:"category_name"`
	Name          string          `json:"name" db:"name"`
	Description   string          `json:"description" db:"description"`
	Price         decimal.Decimal `json:"price" db:"price"`
	StockQuantity int             `json:"stock_quantity" db:"stock_quantity"`
	StockStatus   StockStatus     `json:"stock_status" db:"stock_status"`
	IsActive      bool            `json:"is_active" db:"is_active"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// ProductFilter define os parâmetros de busca e paginação do catálogo.
type ProductFilter struct {
	BrandID    int64
	CategoryID int64
	Search     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Page       int
	Limit      int
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Normalize aplica os limites de paginação.
func (f ProductFilter) Normalize() ProductFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	return f
}

// Offset calcula o deslocamento SQL da página.
func (f ProductFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Category agrupa produtos do catálogo (óculos de sol, armações, ...).
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// ProductInput é o payload de cadastro e edição de produto pela administração.
// StockQuantity só vale no cadastro; depois o estoque muda pelo ajuste de estoque.
type ProductInput struct {
	BrandID       *int64          `json:"brand_id"`
	CategoryID    *int64          `json:"category_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
}

const MaxProductNameLength = 200

var (
	ErrProductNameRequired = errors.New("O nome do produto é obrigatório.")
	ErrProductNameTooLong  = errors.New("O nome do produto não pode exceder 200 caracteres.")
	ErrInvalidPrice        = errors.New("O preço do produto deve ser positivo, com no máximo duas casas decimais.")
	ErrUnknownReference    = errors.New("Marca ou categoria informada não existe.")
)

// Normalize apara os textos e trata IDs de marca/categoria não positivos como ausentes.
func (in ProductInput) Normalize() ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.BrandID != nil && *in.BrandID <= 0 {
		in.BrandID = nil
	}
	if in.CategoryID != nil && *in.CategoryID <= 0 {
		in.CategoryID = nil
	}
	return in
}

// Validate aplica as regras de cadastro. Espera um input já normalizado.
func (in ProductInput) Validate() error {
	if in.Name == "" {
		return ErrProductNameRequired
	}
	if utf8.RuneCountInString(in.Name) > MaxProductNameLength {
		return ErrProductNameTooLong
	}
	if !in.Price.IsPositive() || !in.Price.Equal(in.Price.Round(2)) {
		return ErrInvalidPrice
	}
	if in.StockQuantity < 0 {
		return ErrNegativeStock
	}
	return nil
}
